// Package command runs external programs from typed argument lists.
//
// Commands are never passed through a shell. Each Command carries the
// program name, its arguments and an optional working directory; its String
// form is the command text used in logs and errors.
//
// # Basic Usage
//
//	runner := command.NewExecRunner()
//	cmd := command.Command{
//	    Name: "python",
//	    Args: []string{"-m", "src.scripts.convert_scenewise_to_imagewise", "--nprocs", "10"},
//	}
//	if err := runner.Run(ctx, cmd); err != nil {
//	    var exitErr *command.ExitError
//	    if errors.As(err, &exitErr) {
//	        fmt.Println(exitErr.Code)
//	    }
//	}
//
// # Output
//
// The child's stdout and stderr are read concurrently, line by line, and
// handed to ExecRunner.OnOutput. Without a callback, lines are copied to the
// parent's stdout and stderr.
//
// # Testing
//
// Recorder implements Runner without starting processes. It records every
// command and returns scripted results.
package command
