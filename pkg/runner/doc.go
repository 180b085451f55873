/*
Package runner drives a subboxer Session from a line-oriented command stream.

It is the bridge between the annotation session and a front end that cannot hold the
session in-process: a terminal prompt, or a viewer speaking newline-delimited JSON over a
pipe. Every command is decoded into a Command, dispatched against the session and answered
with a Reply.

# Key Components

  - Runner: the read, dispatch, reply loop.
  - IOHandler: decouples how commands arrive and how replies leave.
  - TextHandler: whitespace-separated commands for interactive use.
  - JSONHandler: one JSON object per line in each direction.

# Usage

	r := runner.New(session,
		runner.WithLogger(logger),
		runner.WithInputHandler(runner.NewJSONHandler(os.Stdin, os.Stdout)),
	)
	if err := r.Run(ctx); err != nil {
		return err
	}

A JSON command names its verb in "command" and passes arguments as sibling fields:

	{"command": "press", "position": [40, 52, 0], "view_direction": [0, 0, 1], "modifiers": ["alt"]}
	{"command": "mode", "mode": "z"}
	{"command": "export", "path": "transforms.star"}
*/
package runner
