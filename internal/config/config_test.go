package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	c := Default()

	if c.Detector.Thresholds.Enemy != 0.7 {
		t.Errorf("enemy threshold = %v, want 0.7", c.Detector.Thresholds.Enemy)
	}
	if c.Detector.Thresholds.Rope != 0.8 || c.Detector.Thresholds.Platform != 0.8 {
		t.Errorf("rope/platform thresholds = %v/%v, want 0.8/0.8", c.Detector.Thresholds.Rope, c.Detector.Thresholds.Platform)
	}
	if len(c.Detector.Scales) != 5 {
		t.Errorf("scales = %v, want 5 entries", c.Detector.Scales)
	}
	if c.Agent.AttackRange != 150 || c.Agent.PlatformTolerance != 50 {
		t.Errorf("attack range/tolerance = %v/%v", c.Agent.AttackRange, c.Agent.PlatformTolerance)
	}
	if c.Agent.CycleDelay != 200*time.Millisecond {
		t.Errorf("cycle delay = %v, want 200ms", c.Agent.CycleDelay)
	}
	if c.Verifier.SettleDelay != 1500*time.Millisecond {
		t.Errorf("settle delay = %v, want 1.5s", c.Verifier.SettleDelay)
	}
	if c.Cluster.Radius != 100 {
		t.Errorf("cluster radius = %v, want 100", c.Cluster.Radius)
	}
	if len(c.Color.Ranges) != 5 {
		t.Errorf("color ranges = %d, want 5", len(c.Color.Ranges))
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestInitConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	c, err := InitConfig(path)
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("err = %v, want ErrConfigNotFound", err)
	}
	if c.Agent.Strategy != StrategySimple {
		t.Errorf("strategy = %q, want defaults", c.Agent.Strategy)
	}
}

func TestInitConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
agent:
  attack_range: 220
  strategy: smart
  cycle_delay: 350ms
cluster:
  radius: 140
keys:
  attack: [x, c]
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if c.Agent.AttackRange != 220 {
		t.Errorf("attack range = %v, want 220", c.Agent.AttackRange)
	}
	if c.Agent.Strategy != StrategySmart {
		t.Errorf("strategy = %q, want smart", c.Agent.Strategy)
	}
	if c.Agent.CycleDelay != 350*time.Millisecond {
		t.Errorf("cycle delay = %v", c.Agent.CycleDelay)
	}
	if c.Cluster.Radius != 140 {
		t.Errorf("radius = %v", c.Cluster.Radius)
	}
	if len(c.Keys.Attack) != 2 || c.Keys.Attack[1] != "c" {
		t.Errorf("attack keys = %v", c.Keys.Attack)
	}
	// не заданные ключи остаются по умолчанию
	if c.Agent.PlatformTolerance != 50 {
		t.Errorf("platform tolerance = %v, want default 50", c.Agent.PlatformTolerance)
	}
}

func TestInitConfigRejectsUnknownStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("agent:\n  strategy: teleport\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := InitConfig(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSaveStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("agent:\n  attack_range: 180\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := SaveStrategy(path, StrategySmart); err != nil {
		t.Fatalf("SaveStrategy: %v", err)
	}

	c, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if c.Agent.Strategy != StrategySmart {
		t.Errorf("strategy = %q, want smart", c.Agent.Strategy)
	}
	if c.Agent.AttackRange != 180 {
		t.Errorf("attack range = %v, existing keys must survive", c.Agent.AttackRange)
	}

	if err := SaveStrategy(path, "bogus"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestValidateRejectsBadDistances(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero pixels per second", func(c *Config) { c.Agent.PixelsPerSecond = 0 }},
		{"negative pixels per second", func(c *Config) { c.Agent.PixelsPerSecond = -50 }},
		{"negative attack range", func(c *Config) { c.Agent.AttackRange = -1 }},
		{"negative platform tolerance", func(c *Config) { c.Agent.PlatformTolerance = -5 }},
		{"negative dedupe distance", func(c *Config) { c.Detector.DedupeMinDistance = -10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	c := Default()
	c.Agent.AttackRange = 0
	c.Detector.DedupeMinDistance = 0
	if err := c.Validate(); err != nil {
		t.Errorf("zero distances must be accepted: %v", err)
	}
}
