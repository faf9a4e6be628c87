package cmd

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nexuslabs/nexus/internal/agent"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeString(t *testing.T, f setupForm, s string) setupForm {
	t.Helper()
	for _, r := range s {
		model, _ := f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		f = model.(setupForm)
	}
	return f
}

func TestFormCollectsAllFields(t *testing.T) {
	f := newSetupForm(agent.Identity{})

	f = typeString(t, f, "agent7")
	model, _ := f.Update(keyMsg("enter"))
	f = model.(setupForm)

	f = typeString(t, f, "coding")
	model, _ = f.Update(keyMsg("enter"))
	f = model.(setupForm)

	f = typeString(t, f, "builds the parser")
	model, cmd := f.Update(keyMsg("enter"))
	f = model.(setupForm)

	if !f.done {
		t.Fatal("enter on last field must submit")
	}
	if cmd == nil {
		t.Fatal("submit must quit the program")
	}

	id := f.identity()
	if id.ID != "agent7" || id.Kind != "coding" || id.Description != "builds the parser" {
		t.Errorf("identity = %+v", id)
	}
}

func TestFormEmptyIDFallsBackToSuggestion(t *testing.T) {
	f := newSetupForm(agent.Identity{})

	for i := 0; i < fieldCount; i++ {
		model, _ := f.Update(keyMsg("enter"))
		f = model.(setupForm)
	}

	id := f.identity()
	if !strings.HasPrefix(id.ID, "agent-") {
		t.Errorf("fallback ID = %q, want suggested agent- id", id.ID)
	}
	if err := id.Validate(); err != nil {
		t.Errorf("fallback identity invalid: %v", err)
	}
}

func TestFormEscAborts(t *testing.T) {
	f := newSetupForm(agent.Identity{})

	model, cmd := f.Update(keyMsg("esc"))
	f = model.(setupForm)
	if !f.aborted {
		t.Fatal("esc must abort")
	}
	if cmd == nil {
		t.Fatal("abort must quit the program")
	}
}

func TestFormFocusCycles(t *testing.T) {
	f := newSetupForm(agent.Identity{})

	model, _ := f.Update(keyMsg("tab"))
	f = model.(setupForm)
	if f.focus != fieldKind {
		t.Errorf("focus = %d, want kind field", f.focus)
	}

	model, _ = f.Update(keyMsg("shift+tab"))
	f = model.(setupForm)
	if f.focus != fieldID {
		t.Errorf("focus = %d, want back on id field", f.focus)
	}

	model, _ = f.Update(keyMsg("shift+tab"))
	f = model.(setupForm)
	if f.focus != fieldDescription {
		t.Errorf("focus = %d, want wrap to description", f.focus)
	}
}

func TestFormViewShowsLabels(t *testing.T) {
	view := newSetupForm(agent.Identity{Kind: "research"}).View()
	for _, label := range fieldLabels {
		if !strings.Contains(view, label) {
			t.Errorf("view missing label %q", label)
		}
	}
}

func TestFormDefaultsPrefill(t *testing.T) {
	f := newSetupForm(agent.Identity{ID: "agent9", Kind: "research", Description: "papers"})

	for i := 0; i < fieldCount; i++ {
		model, _ := f.Update(keyMsg("enter"))
		f = model.(setupForm)
	}

	id := f.identity()
	if id.ID != "agent9" || id.Kind != "research" || id.Description != "papers" {
		t.Errorf("identity = %+v, want prefilled defaults", id)
	}
}
