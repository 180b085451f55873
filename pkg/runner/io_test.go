package runner

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePump_StopAfterCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	h := NewJSONHandler(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Input(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.NoError(t, h.Close())
	// The pending read now completes with nobody left to receive the line.
	_, err = pw.Write([]byte(`{"command": "status"}` + "\n"))
	require.NoError(t, err)

	select {
	case <-h.pump.exited:
	case <-time.After(2 * time.Second):
		t.Fatal("line pump still blocked after close")
	}
	assert.NoError(t, h.Close())
}

func TestLinePump_ReadsUntilEOF(t *testing.T) {
	p := newLinePump(strings.NewReader("status\n\n   \nquit"))
	ctx := context.Background()

	line, err := p.next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "status", line)
	line, err = p.next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "quit", line)
	_, err = p.next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}
