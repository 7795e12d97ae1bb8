package tutor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gyansetu/core/internal/pkg/llm"
)

func makeHistory(n int) []ConversationTurn {
	turns := make([]ConversationTurn, 0, n)
	for i := 0; i < n; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		turns = append(turns, ConversationTurn{Role: role, Text: fmt.Sprintf("turn %d", i)})
	}
	return turns
}

func TestWindowHistory(t *testing.T) {
	tests := []struct {
		name      string
		histLen   int
		window    int
		wantLen   int
		wantFirst string
	}{
		{"shorter than window", 5, 15, 5, "turn 0"},
		{"exactly window", 15, 15, 15, "turn 0"},
		{"longer than window", 40, 15, 15, "turn 25"},
		{"zero window keeps all", 5, 0, 5, "turn 0"},
		{"empty", 0, 15, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindowHistory(makeHistory(tt.histLen), tt.window)
			if len(got) != tt.wantLen {
				t.Fatalf("got %d turns, want %d", len(got), tt.wantLen)
			}
			if tt.wantLen > 0 && got[0].Text != tt.wantFirst {
				t.Errorf("first turn %q, want %q", got[0].Text, tt.wantFirst)
			}
		})
	}
}

func TestBuildTurns(t *testing.T) {
	t.Run("roles mapped", func(t *testing.T) {
		history := []ConversationTurn{
			{Role: "user", Text: "hi"},
			{Role: "assistant", Text: "hello"},
		}
		turns := buildTurns(history, 15, "next question", "", nil)
		if len(turns) != 3 {
			t.Fatalf("got %d turns, want 3", len(turns))
		}
		if turns[0].Role != llm.RoleUser || turns[1].Role != llm.RoleModel {
			t.Errorf("roles = %v/%v, want user/model", turns[0].Role, turns[1].Role)
		}
		if turns[2].Text != "next question" {
			t.Errorf("final turn %q, want the new utterance", turns[2].Text)
		}
	})

	t.Run("doc text appended to utterance", func(t *testing.T) {
		turns := buildTurns(nil, 15, "summarize this", "chapter text here", nil)
		last := turns[len(turns)-1]
		if !strings.Contains(last.Text, "summarize this") || !strings.Contains(last.Text, "chapter text here") {
			t.Errorf("final turn should carry utterance and document, got %q", last.Text)
		}
	})

	t.Run("attachment rides final turn", func(t *testing.T) {
		img := &ImagePayload{Data: []byte{0xff, 0xd8}, MimeType: "image/jpeg"}
		turns := buildTurns(makeHistory(4), 15, "what is in this photo", "", img)
		for i, turn := range turns[:len(turns)-1] {
			if turn.Attachment != nil {
				t.Errorf("turn %d carries an attachment, only the final turn may", i)
			}
		}
		last := turns[len(turns)-1]
		if last.Attachment == nil || last.Attachment.MIMEType != "image/jpeg" {
			t.Errorf("final turn attachment = %+v, want image/jpeg", last.Attachment)
		}
	})

	t.Run("empty image ignored", func(t *testing.T) {
		turns := buildTurns(nil, 15, "q", "", &ImagePayload{})
		if turns[len(turns)-1].Attachment != nil {
			t.Error("empty image data must not produce an attachment")
		}
	})

	t.Run("window applied before conversion", func(t *testing.T) {
		turns := buildTurns(makeHistory(40), 15, "q", "", nil)
		if len(turns) != 16 {
			t.Errorf("got %d turns, want 15 history + 1 current", len(turns))
		}
	})
}

func TestGenerationTemperature(t *testing.T) {
	if generationTemperature(ComplexityEasy) == generationTemperature(ComplexityHard) {
		t.Error("easy and hard paths should not share a temperature")
	}
}
