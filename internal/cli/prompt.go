package cli

import "github.com/charmbracelet/huh"

// Prompt shows an interactive yes/no confirmation.
func Prompt(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}
