package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", DefaultOwner: "local"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_DisabledModeNeedsOwner(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("disabled mode without default_owner should fail")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{DefaultOwner: "local"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Tokens: []TokenConfig{{Token: "a", Owner: "alice"}, {Token: "b", Owner: "bob"}}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with tokens should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
	owners := cfg.TokenOwners()
	if owners["a"] != "alice" || owners["b"] != "bob" {
		t.Errorf("owners = %v", owners)
	}
}

func TestAuthConfig_TokenModeNoTokens(t *testing.T) {
	cfg := AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode without tokens should fail")
	}
	if !strings.Contains(err.Error(), "no tokens") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_TokenWithoutOwner(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Tokens: []TokenConfig{{Token: "a"}}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("token without owner should fail")
	}
}

func TestAuthConfig_DuplicateToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Tokens: []TokenConfig{{Token: "a", Owner: "x"}, {Token: "a", Owner: "y"}}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("duplicate token should fail")
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", DefaultOwner: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestLLMConfig_VertexNeedsProject(t *testing.T) {
	cfg := NewDefaultConfig().LLM
	cfg.Backend = "vertex"
	if err := cfg.Validate(); err == nil {
		t.Fatal("vertex without project should fail")
	}
	cfg.Project, cfg.Location = "p", "us-central1"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("vertex with project should pass: %v", err)
	}
}

func TestLLMConfig_UnknownBackend(t *testing.T) {
	cfg := NewDefaultConfig().LLM
	cfg.Backend = "openai"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown backend should fail")
	}
}

func TestUsageConfig_Negative(t *testing.T) {
	cfg := UsageConfig{MessageLimit: -1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative limit should fail")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Chat.HistoryLimit != 50 || cfg.Usage.MessageLimit != 100 || cfg.LLM.MaxOutputTokens != 512 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Config.Validate should propagate auth validation error")
	}
}
