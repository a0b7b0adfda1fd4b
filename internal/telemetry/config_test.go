package telemetry

import "testing"

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.ServiceName != "plansched" {
		t.Errorf("ServiceName = %q, want %q", config.ServiceName, "plansched")
	}
	if config.Enabled {
		t.Error("Enabled should be false by default")
	}
	if config.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v, want 1.0", config.SampleRate)
	}
}

func TestDevelopmentConfig(t *testing.T) {
	config := DevelopmentConfig()

	if !config.Enabled {
		t.Error("Enabled should be true in development")
	}
	if config.Environment != "development" {
		t.Errorf("Environment = %q, want %q", config.Environment, "development")
	}
}
