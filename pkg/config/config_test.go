package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8087" {
		t.Errorf("Expected Port to be 8087, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Simulation.RiskFreeRate != 0.03 {
		t.Errorf("Expected RiskFreeRate to be 0.03, got %f", cfg.Simulation.RiskFreeRate)
	}

	if cfg.Provider.Timeout != 10*time.Second {
		t.Errorf("Expected Provider.Timeout to be 10s, got %v", cfg.Provider.Timeout)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("PROVIDER_RPS", "2.5")
	os.Setenv("SIM_COMMISSION_RATE", "0.001")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("PROVIDER_RPS")
		os.Unsetenv("SIM_COMMISSION_RATE")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.Provider.RequestsPerSec != 2.5 {
		t.Errorf("Expected Provider.RequestsPerSec to be 2.5, got %f", cfg.Provider.RequestsPerSec)
	}

	if cfg.Simulation.CommissionRate != 0.001 {
		t.Errorf("Expected CommissionRate to be 0.001, got %f", cfg.Simulation.CommissionRate)
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	os.Setenv("ENV", "invalid")
	defer os.Unsetenv("ENV")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidateMailRequiresHost(t *testing.T) {
	os.Setenv("MAIL_ENABLED", "true")
	defer os.Unsetenv("MAIL_ENABLED")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when MAIL_ENABLED=true without MAIL_HOST, got nil")
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "2h")
	defer os.Unsetenv("TEST_DURATION")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	expected := 2 * time.Hour

	if duration != expected {
		t.Errorf("Expected duration to be %v, got %v", expected, duration)
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	os.Setenv("TEST_FLOAT", "0.05")
	defer os.Unsetenv("TEST_FLOAT")

	value := getEnvAsFloat("TEST_FLOAT", 0.03)
	if value != 0.05 {
		t.Errorf("Expected value to be 0.05, got %f", value)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_BOOL")

	value := getEnvAsBool("TEST_BOOL", false)
	if value != true {
		t.Errorf("Expected value to be true, got %v", value)
	}
}
