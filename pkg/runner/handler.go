package runner

import "context"

// IOHandler defines the strategy for talking to the front end.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Input blocks until the next command arrives.
	// It returns io.EOF when the stream is exhausted.
	Input(ctx context.Context) (Command, error)

	// Output delivers the reply to one command.
	Output(ctx context.Context, reply Reply) error

	// SystemOutput presents a meta-message that is not a reply (e.g. a banner or a notice).
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms markdown before it is written, e.g. to ANSI for a terminal.
type ContentRenderer func(string) (string, error)
