package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nexuslabs/nexus/internal/agent"
	"github.com/nexuslabs/nexus/internal/style"
)

// errFormAborted is returned when the operator cancels the setup form.
var errFormAborted = errors.New("setup cancelled")

const (
	fieldID = iota
	fieldKind
	fieldDescription
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldID:          "Agent ID",
	fieldKind:        "Agent type",
	fieldDescription: "Description",
}

// setupForm collects the agent identity interactively. Enter advances,
// enter on the last field submits, esc aborts.
type setupForm struct {
	inputs  [fieldCount]textinput.Model
	focus   int
	done    bool
	aborted bool
}

func newSetupForm(defaults agent.Identity) setupForm {
	var f setupForm

	suggestion := defaults.ID
	if suggestion == "" {
		suggestion = agent.SuggestID()
	}

	for i := range f.inputs {
		ti := textinput.New()
		ti.CharLimit = 120
		ti.Width = 48
		f.inputs[i] = ti
	}
	f.inputs[fieldID].Placeholder = suggestion
	f.inputs[fieldID].SetValue(defaults.ID)
	f.inputs[fieldKind].Placeholder = "llm, coding, research"
	f.inputs[fieldKind].SetValue(defaults.Kind)
	f.inputs[fieldDescription].Placeholder = "What this agent works on"
	f.inputs[fieldDescription].SetValue(defaults.Description)

	f.inputs[fieldID].Focus()
	return f
}

func (f setupForm) Init() tea.Cmd {
	return textinput.Blink
}

func (f setupForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			f.aborted = true
			return f, tea.Quit
		case "enter":
			if f.focus == fieldCount-1 {
				f.done = true
				return f, tea.Quit
			}
			return f.moveFocus(1), nil
		case "tab", "down":
			return f.moveFocus(1), nil
		case "shift+tab", "up":
			return f.moveFocus(-1), nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f setupForm) moveFocus(delta int) setupForm {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
	return f
}

func (f setupForm) View() string {
	if f.done || f.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(style.Render(style.Header, "Configure your agent") + "\n\n")
	for i, ti := range f.inputs {
		b.WriteString(fmt.Sprintf("  %-12s %s\n", fieldLabels[i]+":", ti.View()))
	}
	b.WriteString("\n" + style.Render(style.Dim, "enter: next field · esc: cancel") + "\n")
	return b.String()
}

// identity builds the collected identity, falling back to the ID placeholder
// suggestion when the field was left empty.
func (f setupForm) identity() agent.Identity {
	id := strings.TrimSpace(f.inputs[fieldID].Value())
	if id == "" {
		id = f.inputs[fieldID].Placeholder
	}
	return withDefaults(agent.Identity{
		ID:          id,
		Kind:        strings.TrimSpace(f.inputs[fieldKind].Value()),
		Description: strings.TrimSpace(f.inputs[fieldDescription].Value()),
	})
}

// runSetupForm runs the interactive form and returns the collected identity.
func runSetupForm(defaults agent.Identity) (agent.Identity, error) {
	model, err := tea.NewProgram(newSetupForm(defaults)).Run()
	if err != nil {
		return agent.Identity{}, fmt.Errorf("running setup form: %w", err)
	}
	form := model.(setupForm)
	if form.aborted {
		return agent.Identity{}, errFormAborted
	}
	return form.identity(), nil
}
