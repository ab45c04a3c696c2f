package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"

	"reblograffle/internal/raffle"
)

// Confirmer asks the operator whether to announce the drawn winners.
type Confirmer interface {
	Confirm(winners []raffle.Winner) (bool, error)
}

// PromptConfirmer asks on the terminal. Out receives the preview and the prompt;
// it must not be stdout, which carries the outcome record.
type PromptConfirmer struct {
	In  io.ReadCloser
	Out io.Writer
}

func (p PromptConfirmer) Confirm(winners []raffle.Winner) (bool, error) {
	fmt.Fprintf(p.Out, "Drawn %d winner(s):\n", len(winners))
	for i, w := range winners {
		fmt.Fprintf(p.Out, "  %2d. %s %s\n", i+1, w.Name, w.Value)
	}

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Announce these %d winner(s)", len(winners)),
		IsConfirm: true,
		Stdin:     p.In,
		Stdout:    nopWriteCloser{p.Out},
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
