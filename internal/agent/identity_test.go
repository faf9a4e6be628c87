package agent

import (
	"errors"
	"strings"
	"testing"
)

func TestIdentityValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		wantErr error
	}{
		{"valid", Identity{ID: "agent1", Kind: "llm", Description: "test"}, nil},
		{"valid with dash and underscore", Identity{ID: "agent_7-b", Kind: "coding"}, nil},
		{"empty id", Identity{ID: "", Kind: "llm"}, ErrEmptyID},
		{"whitespace id", Identity{ID: "   ", Kind: "llm"}, ErrEmptyID},
		{"slash in id", Identity{ID: "a/b", Kind: "llm"}, ErrUnsafeID},
		{"dot in id", Identity{ID: "agent.1", Kind: "llm"}, ErrUnsafeID},
		{"space in id", Identity{ID: "agent 1", Kind: "llm"}, ErrUnsafeID},
		{"parent traversal", Identity{ID: "..", Kind: "llm"}, ErrUnsafeID},
		{"empty kind", Identity{ID: "agent1", Kind: ""}, ErrEmptyKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSuggestID(t *testing.T) {
	a := SuggestID()
	b := SuggestID()

	if !strings.HasPrefix(a, "agent-") {
		t.Errorf("SuggestID() = %q, want agent- prefix", a)
	}
	if a == b {
		t.Errorf("SuggestID() returned duplicate values: %q", a)
	}
	if err := (Identity{ID: a, Kind: "llm"}).Validate(); err != nil {
		t.Errorf("suggested id %q failed validation: %v", a, err)
	}
}
