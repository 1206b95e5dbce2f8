package command

import (
	"context"
	"sync"
)

// Recorder implements Runner for testing. It records every command and
// never starts a process.
type Recorder struct {
	// Results maps a command's String form to the error Run returns for it.
	Results map[string]error

	// Hook, when set, runs before the scripted result is returned. Tests use
	// it to create the files a real command would have produced.
	Hook func(cmd Command) error

	mu       sync.Mutex
	commands []Command
}

// NewRecorder creates a Recorder where every command succeeds.
func NewRecorder() *Recorder {
	return &Recorder{Results: make(map[string]error)}
}

// FailWith makes the command whose text is cmdText exit with code.
func (r *Recorder) FailWith(cmdText string, code int) {
	r.Results[cmdText] = &ExitError{Command: cmdText, Code: code}
}

// Run records cmd and returns its scripted result.
func (r *Recorder) Run(ctx context.Context, cmd Command) error {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Hook != nil {
		if err := r.Hook(cmd); err != nil {
			return err
		}
	}
	return r.Results[cmd.String()]
}

// Commands returns a copy of the recorded commands in call order.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Strings returns the recorded commands rendered as text.
func (r *Recorder) Strings() []string {
	cmds := r.Commands()
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.String()
	}
	return out
}
