package main

import (
	"fmt"
	"io"
	"os"

	"charm.land/huh/v2"

	"github.com/hylla/taskboard/internal/app"
)

// confirmPrompt asks one yes/no question; tests swap it out.
var confirmPrompt = func(in io.Reader, out io.Writer, prompt string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(prompt).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&ok),
	)).
		WithInput(in).
		WithOutput(out).
		WithAccessible(os.Getenv("ACCESSIBLE") != "")
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// confirm gates a destructive command. --yes skips the prompt; a declined
// prompt reports "cancelled" and is not an error.
func (c *cli) confirm(req app.DeleteRequest) (bool, error) {
	if c.yes {
		return true, nil
	}
	prompt := fmt.Sprintf("%s\n%s %q", req.Prompt(), req.Target, req.Name)
	ok, err := confirmPrompt(c.stdin, c.stderr, prompt)
	if err != nil {
		return false, fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		_, _ = fmt.Fprintln(c.stderr, "cancelled")
	}
	return ok, nil
}
