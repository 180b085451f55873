package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// InputError reports a line that could not be turned into a Command. The runner answers it
// with a failed reply and keeps reading.
type InputError struct {
	Line string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %q: %v", e.Line, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

type lineResult struct {
	text string
	err  error
}

// linePump reads lines on its own goroutine so Input can honour context cancellation while
// a read is blocked. After stop, the goroutine exits as soon as its pending read returns.
type linePump struct {
	reader *bufio.Reader
	lines  chan lineResult
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
	halt   sync.Once
}

func newLinePump(r io.Reader) *linePump {
	return &linePump{
		reader: bufio.NewReader(r),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

func (p *linePump) start() {
	p.once.Do(func() {
		p.lines = make(chan lineResult)
		go p.run()
	})
}

// stop releases the read goroutine. The underlying reader is not closed.
func (p *linePump) stop() {
	p.halt.Do(func() { close(p.done) })
}

func (p *linePump) run() {
	defer close(p.exited)
	defer close(p.lines)
	for {
		text, err := p.reader.ReadString('\n')
		if text != "" && !p.send(lineResult{text: text}) {
			return
		}
		if err != nil {
			if err != io.EOF {
				p.send(lineResult{err: err})
			}
			return
		}
	}
}

func (p *linePump) send(res lineResult) bool {
	select {
	case p.lines <- res:
		return true
	case <-p.done:
		return false
	}
}

// next returns the next non-blank, sanitised line.
func (p *linePump) next(ctx context.Context) (string, error) {
	p.start()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-p.lines:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			raw := strings.TrimSpace(res.text)
			if raw == "" {
				continue
			}
			clean, err := SanitizeInput(raw)
			if err != nil {
				return "", &InputError{Line: truncate(raw), Err: err}
			}
			return clean, nil
		}
	}
}

func truncate(s string) string {
	const max = 64
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
