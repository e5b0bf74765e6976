package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notechat/internal/oracle"
	"github.com/starford/notechat/internal/usage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	LLM    LLMConfig         `yaml:"llm"`
	Chat   ChatConfig        `yaml:"chat"`
	Usage  UsageConfig       `yaml:"usage"`
	MCP    MCPConfig         `yaml:"mcp"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, section := range []validation.Validatable{
		&c.App, &c.SQLite, &c.Auth, &c.LLM, &c.Chat, &c.Usage, &c.MCP,
	} {
		if err := section.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// TokenConfig maps one bearer token to the owner it acts for.
type TokenConfig struct {
	Token string `yaml:"token"`
	Owner string `yaml:"owner"`
}

// Validate validates the token entry.
func (c TokenConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Token, validation.Required),
		validation.Field(&c.Owner, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): every request acts as DefaultOwner, suitable for local use.
//   - "token": Bearer token authentication; each token selects its owner.
type AuthConfig struct {
	Mode         string        `yaml:"mode"`
	DefaultOwner string        `yaml:"default_owner"`
	Tokens       []TokenConfig `yaml:"tokens"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
		validation.Field(&c.DefaultOwner, validation.When(c.Mode == AuthModeDisabled, validation.Required)),
		validation.Field(&c.Tokens),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && len(c.Tokens) == 0 {
		return fmt.Errorf("auth: mode is %q but no tokens are configured", AuthModeToken)
	}
	seen := make(map[string]struct{}, len(c.Tokens))
	for _, t := range c.Tokens {
		if _, dup := seen[t.Token]; dup {
			return fmt.Errorf("auth: duplicate token for owner %q", t.Owner)
		}
		seen[t.Token] = struct{}{}
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// TokenOwners returns the token to owner map.
func (c *AuthConfig) TokenOwners() map[string]string {
	out := make(map[string]string, len(c.Tokens))
	for _, t := range c.Tokens {
		out[t.Token] = t.Owner
	}
	return out
}

// LLMConfig selects and configures the language model backend.
type LLMConfig struct {
	Backend         string `yaml:"backend"`
	APIKey          string `yaml:"api_key"`
	Project         string `yaml:"project"`
	Location        string `yaml:"location"`
	Model           string `yaml:"model"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

// Validate validates the LLM configuration. The API key is checked when the
// client is built so that commands without a model can still start.
func (c *LLMConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(oracle.BackendGemini, oracle.BackendVertex)),
		validation.Field(&c.Project, validation.When(c.Backend == oracle.BackendVertex, validation.Required)),
		validation.Field(&c.Location, validation.When(c.Backend == oracle.BackendVertex, validation.Required)),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.MaxOutputTokens, validation.Min(1)),
	)
}

// OracleConfig converts the section into an oracle.Config.
func (c *LLMConfig) OracleConfig() oracle.Config {
	return oracle.Config{
		Backend:         c.Backend,
		APIKey:          c.APIKey,
		Project:         c.Project,
		Location:        c.Location,
		Model:           c.Model,
		MaxOutputTokens: c.MaxOutputTokens,
	}
}

// ChatConfig tunes the conversational pipeline.
type ChatConfig struct {
	HistoryLimit int `yaml:"history_limit"`
	SearchLimit  int `yaml:"search_limit"`
	// PromptFile overrides the built-in system prompt and is reloaded on change.
	PromptFile string `yaml:"prompt_file"`
}

// Validate validates the chat configuration.
func (c *ChatConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HistoryLimit, validation.Min(1)),
		validation.Field(&c.SearchLimit, validation.Min(1)),
	)
}

// UsageConfig holds the daily per-owner quotas. Zero means unlimited.
type UsageConfig struct {
	MessageLimit int `yaml:"message_limit"`
	TokenLimit   int `yaml:"token_limit"`
}

// Validate validates the usage configuration.
func (c *UsageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MessageLimit, validation.Min(0)),
		validation.Field(&c.TokenLimit, validation.Min(0)),
	)
}

// Limits converts the section into usage.Limits.
func (c *UsageConfig) Limits() usage.Limits {
	return usage.Limits{Messages: c.MessageLimit, Tokens: c.TokenLimit}
}

// MCPConfig holds the MCP server configuration.
type MCPConfig struct {
	Owner string `yaml:"owner"`
}

// Validate validates the MCP configuration.
func (c *MCPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Owner, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./notechat.db",
		},
		Auth: AuthConfig{
			Mode:         AuthModeDisabled,
			DefaultOwner: "local",
		},
		LLM: LLMConfig{
			Backend:         oracle.BackendGemini,
			Model:           oracle.DefaultModel,
			MaxOutputTokens: 512,
		},
		Chat: ChatConfig{
			HistoryLimit: 50,
			SearchLimit:  10,
		},
		Usage: UsageConfig{
			MessageLimit: 100,
			TokenLimit:   100000,
		},
		MCP: MCPConfig{
			Owner: "local",
		},
	}
}
