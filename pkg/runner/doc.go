/*
Package runner implements an interactive editing loop over a form.

The runner renders the form, reads one command, applies it and renders
again until the input ends or a quit command arrives. Input and output go
through a pluggable IOHandler, so the same loop drives a human at a
terminal (TextHandler) and a host process speaking JSON lines (JSONHandler).

When configured with a session manager every command is applied through
session.Manager.Apply, so each step is persisted and serialized with other
writers of the same session.

# Usage

	r := runner.NewRunner(
		runner.WithForm(form),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
