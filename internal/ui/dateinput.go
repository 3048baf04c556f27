package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const dateLayout = "2006-01-02"

// dateInput is a segmented YYYY-MM-DD editor
type dateInput struct {
	fields [3]textinput.Model // 0:YYYY, 1:MM, 2:DD
	focus  int
}

func newDateInput() dateInput {
	placeholders := [3]string{"YYYY", "MM", "DD"}
	charLimits := [3]int{4, 2, 2}

	var fields [3]textinput.Model
	for i := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = charLimits[i]
		ti.Width = charLimits[i] + 1
		ti.Validate = func(s string) error {
			for _, r := range s {
				if !unicode.IsDigit(r) {
					return fmt.Errorf("digits only")
				}
			}
			return nil
		}
		fields[i] = ti
	}

	return dateInput{fields: fields}
}

func (d *dateInput) Focus() tea.Cmd {
	return d.focusField(0)
}

func (d *dateInput) Blur() {
	for i := range d.fields {
		d.fields[i].Blur()
	}
}

func (d *dateInput) Reset() {
	for i := range d.fields {
		d.fields[i].Reset()
	}
	d.focus = 0
}

func (d *dateInput) SetValue(date string) {
	parts := strings.SplitN(date, "-", 3)
	for i := range d.fields {
		if i < len(parts) {
			d.fields[i].SetValue(parts[i])
		} else {
			d.fields[i].SetValue("")
		}
	}
}

// SetDate loads t, or clears the input when t is nil
func (d *dateInput) SetDate(t *time.Time) {
	if t == nil {
		d.Reset()
		return
	}
	d.SetValue(t.Format(dateLayout))
}

// Value returns the entered date as YYYY-MM-DD, or "" when every segment is
// blank. A missing year or month is taken from now; a missing day is an error.
func (d *dateInput) Value(now time.Time) (string, error) {
	if d.IsEmpty() {
		return "", nil
	}

	yyyy := strings.TrimSpace(d.fields[0].Value())
	mm := strings.TrimSpace(d.fields[1].Value())
	dd := strings.TrimSpace(d.fields[2].Value())

	if yyyy == "" {
		yyyy = fmt.Sprintf("%04d", now.Year())
	}
	if mm == "" {
		mm = fmt.Sprintf("%02d", int(now.Month()))
	}
	if dd == "" {
		return "", fmt.Errorf("day is required")
	}

	dateStr := fmt.Sprintf("%s-%s-%s", yyyy, padLeft(mm, 2), padLeft(dd, 2))

	if _, err := time.Parse(dateLayout, dateStr); err != nil {
		return "", fmt.Errorf("invalid date: %s", dateStr)
	}

	return dateStr, nil
}

func padLeft(s string, length int) string {
	for len(s) < length {
		s = "0" + s
	}
	return s
}

func (d *dateInput) IsEmpty() bool {
	return d.fields[0].Value() == "" && d.fields[1].Value() == "" && d.fields[2].Value() == ""
}

func (d *dateInput) focusField(idx int) tea.Cmd {
	d.focus = idx
	var cmd tea.Cmd
	for i := range d.fields {
		if i == idx {
			cmd = d.fields[i].Focus()
		} else {
			d.fields[i].Blur()
		}
	}
	return cmd
}

// Update edits the focused segment. left/right switch segments and a full
// segment advances to the next one.
func (d dateInput) Update(msg tea.Msg) (dateInput, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey {
		switch keyMsg.String() {
		case "right", "-":
			if d.focus < 2 {
				return d, d.focusField(d.focus + 1)
			}
			return d, nil
		case "left":
			if d.focus > 0 {
				return d, d.focusField(d.focus - 1)
			}
			return d, nil
		}
	}

	var cmd tea.Cmd
	d.fields[d.focus], cmd = d.fields[d.focus].Update(msg)

	if isKey && keyMsg.Type == tea.KeyRunes && d.focus < 2 &&
		len(d.fields[d.focus].Value()) == d.fields[d.focus].CharLimit {
		return d, tea.Batch(cmd, d.focusField(d.focus+1))
	}
	return d, cmd
}

func (d dateInput) View() string {
	return d.fields[0].View() + " - " + d.fields[1].View() + " - " + d.fields[2].View()
}
