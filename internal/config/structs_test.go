package config

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestConfigYAMLMarshaling tests marshaling Config to YAML.
func TestConfigYAMLMarshaling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	cfg.Server.Port = 9090

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("yaml.Marshal() error: %v", err)
	}
	if len(data) == 0 {
		t.Error("Marshaled YAML is empty")
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(data, &result); err != nil {
		t.Fatalf("yaml.Unmarshal() error: %v", err)
	}

	if result["log_level"] != "warn" {
		t.Errorf("Expected log_level 'warn', got %v", result["log_level"])
	}
}

// TestConfigYAMLUnmarshaling tests unmarshaling Config from YAML.
func TestConfigYAMLUnmarshaling(t *testing.T) {
	yamlData := `
log_level: error
verbose: true
detection:
  min_frame_dim: 75
sheetset:
  gap_factor: 0.25
server:
  host: 127.0.0.1
  port: 7070
`
	var cfg Config
	if err := yaml.Unmarshal([]byte(yamlData), &cfg); err != nil {
		t.Fatalf("yaml.Unmarshal() error: %v", err)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("Expected log_level 'error', got %s", cfg.LogLevel)
	}
	if !cfg.Verbose {
		t.Error("Expected verbose true")
	}
	if cfg.Detection.MinFrameDim != 75 {
		t.Errorf("Expected min_frame_dim 75, got %f", cfg.Detection.MinFrameDim)
	}
	if cfg.SheetSet.GapFactor != 0.25 {
		t.Errorf("Expected gap_factor 0.25, got %f", cfg.SheetSet.GapFactor)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Expected port 7070, got %d", cfg.Server.Port)
	}
}

// TestConfigJSONRoundTrip verifies the JSON tags stay consistent with the
// YAML ones used by the loader.
func TestConfigJSONRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Detection.Anchor.SecondaryText = "ACME"

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}

	var back Config
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}

	if back.Detection.Anchor.SecondaryText != "ACME" {
		t.Errorf("Expected secondary_text 'ACME', got %s", back.Detection.Anchor.SecondaryText)
	}
	if len(back.Detection.Papers) != len(cfg.Detection.Papers) {
		t.Errorf("Paper catalog changed size across round trip")
	}
}
