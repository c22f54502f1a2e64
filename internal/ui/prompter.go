// Package ui provides the interactive prompts used by `envforge new`.
package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled")

// Prompter asks interactive questions on the terminal.
type Prompter struct{}

// NewPrompter creates a new prompter.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// AskText prompts for a line of text with an optional default.
func (p *Prompter) AskText(label, defaultValue string) (string, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: defaultValue,
	}

	value, err := prompt.Run()
	if err != nil {
		return "", cancelOr(err)
	}
	return strings.TrimSpace(value), nil
}

// AskSelect prompts for a single choice.
func (p *Prompter) AskSelect(label string, choices []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: choices,
	}

	_, value, err := prompt.Run()
	if err != nil {
		return "", cancelOr(err)
	}
	return value, nil
}

// AskConfirm prompts for yes/no confirmation.
func (p *Prompter) AskConfirm(label string, defaultYes bool) (bool, error) {
	def := "n"
	if defaultYes {
		def = "y"
	}
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Default:   def,
	}

	_, err := prompt.Run()
	if err != nil {
		// promptui reports a declined confirm as ErrAbort
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, cancelOr(err)
	}
	return true, nil
}

func cancelOr(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return ErrCancelled
	}
	return fmt.Errorf("prompt failed: %w", err)
}
