package llm

import (
	"testing"

	appcfg "github.com/gyansetu/core/internal/config"
	jetapi "go.jetify.com/ai/api"
)

func providersFixture() appcfg.AIConfig {
	return appcfg.AIConfig{
		Providers: []appcfg.AIProvider{
			{ID: "disabled", Type: "gemini", DefaultModel: "gemini-2.0-flash", Enabled: false},
			{ID: "primary", Type: "gemini", DefaultModel: "gemini-2.0-flash", Enabled: true},
			{ID: "backup", Type: "openai", DefaultModel: "gpt-4o-mini", Enabled: true},
		},
	}
}

func TestSelectProvider(t *testing.T) {
	cfg := providersFixture()

	t.Run("nil assignment picks first enabled", func(t *testing.T) {
		got := SelectProvider(cfg, nil)
		if got == nil || got.ID != "primary" {
			t.Fatalf("got %+v, want primary", got)
		}
	})

	t.Run("pinned id wins", func(t *testing.T) {
		got := SelectProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "backup"})
		if got == nil || got.ID != "backup" {
			t.Fatalf("got %+v, want backup", got)
		}
	})

	t.Run("model override replaces default", func(t *testing.T) {
		got := SelectProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "primary", Model: "gemini-1.5-pro"})
		if got == nil || got.DefaultModel != "gemini-1.5-pro" {
			t.Fatalf("got %+v, want model override", got)
		}
	})

	t.Run("override does not mutate config", func(t *testing.T) {
		_ = SelectProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "primary", Model: "other"})
		if cfg.Providers[1].DefaultModel != "gemini-2.0-flash" {
			t.Error("selection must work on a copy of the provider")
		}
	})

	t.Run("unknown pin falls through to first enabled", func(t *testing.T) {
		got := SelectProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "missing"})
		if got == nil || got.ID != "primary" {
			t.Fatalf("got %+v, want primary", got)
		}
	})

	t.Run("no enabled providers", func(t *testing.T) {
		if got := SelectProvider(appcfg.AIConfig{}, nil); got != nil {
			t.Fatalf("got %+v, want nil", got)
		}
	})
}

func TestBuildJetifyOptions(t *testing.T) {
	t.Run("temperature forwarded when set", func(t *testing.T) {
		temp := float32(0.2)
		opts := buildJetifyOptions(nil, 300, &temp)
		if len(opts) != 3 {
			t.Errorf("got %d options, want model + max tokens + temperature", len(opts))
		}
	})

	t.Run("temperature omitted when unset", func(t *testing.T) {
		opts := buildJetifyOptions(nil, 300, nil)
		if len(opts) != 2 {
			t.Errorf("got %d options, want model + max tokens only", len(opts))
		}
	})
}

func TestJetifyTokens(t *testing.T) {
	tests := []struct {
		name string
		u    jetapi.Usage
		want int
	}{
		{"provider total wins", jetapi.Usage{InputTokens: 10, OutputTokens: 20, TotalTokens: 35}, 35},
		{"fallback to sum", jetapi.Usage{InputTokens: 10, OutputTokens: 20}, 30},
		{"empty", jetapi.Usage{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jetifyTokens(tt.u); got != tt.want {
				t.Errorf("jetifyTokens(%+v) = %d, want %d", tt.u, got, tt.want)
			}
		})
	}
}

func TestFlattenTranscript(t *testing.T) {
	t.Run("single turn passes through", func(t *testing.T) {
		got := flattenTranscript([]Turn{{Role: RoleUser, Text: "hello"}})
		if got != "hello" {
			t.Errorf("got %q, want %q", got, "hello")
		}
	})

	t.Run("multi turn labeled", func(t *testing.T) {
		got := flattenTranscript([]Turn{
			{Role: RoleUser, Text: "what is 2+2"},
			{Role: RoleModel, Text: "4"},
			{Role: RoleUser, Text: "and 3+3"},
		})
		want := "Student: what is 2+2\nTutor: 4\nStudent: and 3+3"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}

func TestNormalizeOpenAICompatibleEndpoint(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "https://api.openai.com"},
		{"https://api.openai.com", "https://api.openai.com"},
		{"https://api.openai.com/", "https://api.openai.com"},
		{"https://api.openai.com/v1", "https://api.openai.com"},
		{"https://proxy.example.com/openai/v1/", "https://proxy.example.com/openai"},
	}
	for _, tt := range tests {
		if got := normalizeOpenAICompatibleEndpoint(tt.in); got != tt.want {
			t.Errorf("normalizeOpenAICompatibleEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeOpenAIBaseURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"https://proxy.example.com", "https://proxy.example.com/v1"},
		{"https://proxy.example.com/v1", "https://proxy.example.com/v1"},
		{"https://proxy.example.com/v1/", "https://proxy.example.com/v1"},
	}
	for _, tt := range tests {
		if got := normalizeOpenAIBaseURL(tt.in); got != tt.want {
			t.Errorf("normalizeOpenAIBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
