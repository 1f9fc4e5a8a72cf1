package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SAVE_DIR", "")
	t.Setenv("RUNTIME_COMMAND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Game.SaveDir != "sessions" {
		t.Fatalf("expected default save dir, got %q", cfg.Game.SaveDir)
	}
	if cfg.Game.RuntimeCommand != "" {
		t.Fatalf("runtime management should be off by default, got %q", cfg.Game.RuntimeCommand)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SAVE_DIR", "/tmp/campaign")
	t.Setenv("RUNTIME_COMMAND", "ollama")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("Model", "doubao-pro")
	t.Setenv("ARK_TEMPERATURE", "0.8")
	t.Setenv("ARK_MAX_TOKENS", "512")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Game.SaveDir != "/tmp/campaign" || cfg.Game.RuntimeCommand != "ollama" {
		t.Fatalf("game config not read: %+v", cfg.Game)
	}
	if !cfg.AI.Enabled() {
		t.Fatalf("API key plus model should enable the narrator")
	}
	if cfg.AI.Temperature == nil || *cfg.AI.Temperature != 0.8 {
		t.Fatalf("temperature not parsed: %v", cfg.AI.Temperature)
	}
	if cfg.AI.MaxTokens == nil || *cfg.AI.MaxTokens != 512 {
		t.Fatalf("max tokens not parsed: %v", cfg.AI.MaxTokens)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("ARK_TEMPERATURE", "warm")
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for a malformed temperature")
	}
}

func TestEnabledRequiresModelAndCredentials(t *testing.T) {
	cases := []struct {
		cfg  AIConfig
		want bool
	}{
		{AIConfig{}, false},
		{AIConfig{Model: "m"}, false},
		{AIConfig{APIKey: "k"}, false},
		{AIConfig{Model: "m", APIKey: "k"}, true},
		{AIConfig{Model: "m", AccessKey: "a"}, false},
		{AIConfig{Model: "m", AccessKey: "a", SecretKey: "s"}, true},
	}
	for i, c := range cases {
		if got := c.cfg.Enabled(); got != c.want {
			t.Fatalf("case %d: Enabled() = %v, want %v", i, got, c.want)
		}
	}
}
