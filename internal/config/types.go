package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int         `yaml:"port"`
	Env            string      `yaml:"env"` // "development" | "production"
	DSN            string      `yaml:"dsn"` // MySQL DSN
	RedisURL       string      `yaml:"redis_url"`
	AllowedOrigins []string    `yaml:"allowed_origins"`
	AI             AIConfig    `yaml:"ai"`
	Tutor          TutorConfig `yaml:"tutor"`
}

// AIConfig lists the configured upstream providers and which one serves
// each call role.
type AIConfig struct {
	Providers    []AIProvider       `yaml:"providers"`
	RouterModel  *AIModelAssignment `yaml:"router_model,omitempty"`
	TutorModel   *AIModelAssignment `yaml:"tutor_model,omitempty"`
	ProfileModel *AIModelAssignment `yaml:"profile_model,omitempty"`
}

// AIProvider describes one upstream model endpoint.
// Type is one of: gemini | openai | anthropic | openai-compatible.
type AIProvider struct {
	ID           string `yaml:"id"`
	Type         string `yaml:"type"`
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// AIModelAssignment pins a call role (router, tutor, profile) to a provider
// and optionally overrides its default model.
type AIModelAssignment struct {
	ProviderID string `yaml:"provider_id"`
	Model      string `yaml:"model"`
}

// TutorConfig tunes orchestration behavior.
type TutorConfig struct {
	// HistoryWindow is the number of trailing conversation turns forwarded
	// to the model.
	HistoryWindow int `yaml:"history_window"`
	// DefaultGrade is the grade label used in cache keys when the caller
	// does not supply one.
	DefaultGrade string `yaml:"default_grade"`
	// CacheTTLHours bounds the lifetime of cached generic answers.
	// 0 means no expiry.
	CacheTTLHours int `yaml:"cache_ttl_hours"`
}
