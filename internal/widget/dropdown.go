// Package widget holds view models for interactive form controls. Widgets keep
// no hidden state: the parent owns every value and the widget only reports transitions.
package widget

import (
	"errors"
	"strings"

	"evently/internal/domain"
)

// DialogState is a state of the inline "create new option" dialog.
type DialogState int

const (
	DialogClosed DialogState = iota
	DialogOpen
	DialogApplied
	DialogCancelled
)

func (s DialogState) String() string {
	switch s {
	case DialogClosed:
		return "closed"
	case DialogOpen:
		return "open"
	case DialogApplied:
		return "applied"
	case DialogCancelled:
		return "cancelled"
	}
	return "unknown"
}

// ErrDialogNotOpen is returned when apply or cancel is attempted on a dialog that is not open.
var ErrDialogNotOpen = errors.New("dialog is not open")

// Dialog is the Closed -> Open -> {Applied, Cancelled} state machine of the
// create-option dialog. The zero value is a closed dialog.
type Dialog struct {
	State DialogState
	Input string
}

// Open shows the dialog with an empty input. Reopening after apply or cancel starts over.
func (d *Dialog) Open() {
	d.State = DialogOpen
	d.Input = ""
}

// Change forwards the text input. Ignored unless the dialog is open.
func (d *Dialog) Change(value string) {
	if d.State != DialogOpen {
		return
	}
	d.Input = value
}

// Apply closes the dialog as applied and returns the trimmed input.
func (d *Dialog) Apply() (string, error) {
	if d.State != DialogOpen {
		return "", ErrDialogNotOpen
	}
	d.State = DialogApplied
	return strings.TrimSpace(d.Input), nil
}

// Cancel closes the dialog and clears the input.
func (d *Dialog) Cancel() error {
	if d.State != DialogOpen {
		return ErrDialogNotOpen
	}
	d.State = DialogCancelled
	d.Input = ""
	return nil
}

// IsOpen reports whether the dialog is currently shown.
func (d Dialog) IsOpen() bool {
	return d.State == DialogOpen
}

// Option is one selectable entry of a Dropdown.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Dropdown is the view model of a select control with an optional create affordance.
type Dropdown struct {
	Name        string
	Value       string
	Placeholder string
	Options     []Option
	// AllowCreate gates the "create new" affordance and its dialog.
	AllowCreate bool
	DialogTitle string
	// DialogPlaceholder is the placeholder of the dialog text input.
	DialogPlaceholder string
	Dialog            Dialog
	Error             string
}

// NewCategoryDropdown builds the category select of the event form.
func NewCategoryDropdown(name, value string, categories []*domain.Category, dialog Dialog, errMsg string) Dropdown {
	opts := make([]Option, 0, len(categories))
	for _, c := range categories {
		opts = append(opts, Option{Value: c.ID, Label: c.Name, Selected: c.ID == value})
	}
	return Dropdown{
		Name:              name,
		Value:             value,
		Placeholder:       "Category",
		Options:           opts,
		AllowCreate:       true,
		DialogTitle:       "New Category",
		DialogPlaceholder: "Category name",
		Dialog:            dialog,
		Error:             errMsg,
	}
}

// HasSelection reports whether Value matches one of the options.
func (d Dropdown) HasSelection() bool {
	for _, o := range d.Options {
		if o.Value == d.Value {
			return true
		}
	}
	return false
}
