package config

import (
	"strings"
	"testing"
	"time"
)

func validBaseConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Env:            "development",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      "8000",
			Namespace: "inkwell",
			Database:  "main",
		},
		JWT: JWTConfig{
			PrivateKeyPath: "./keys/private.pem",
			PublicKeyPath:  "./keys/public.pem",
			ExpirationMins: 15,
			Issuer:         "inkwell.forgo.software",
		},
		Recovery: RecoveryConfig{
			TokenTTL: 48 * time.Hour,
			BaseURL:  "http://localhost:3000",
		},
		Mail: MailConfig{
			Enabled: false,
			From:    "no-reply@inkwell.local",
		},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	cfg := validBaseConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_InvalidServerEnv(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Env = "invalid"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid SERVER_ENV")
	}
	if !strings.Contains(err.Error(), "SERVER_ENV") {
		t.Errorf("expected error to mention SERVER_ENV, got: %v", err)
	}
}

func TestConfig_Validate_MissingPort(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Port = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing SERVER_PORT")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("expected error to mention SERVER_PORT, got: %v", err)
	}
}

func TestConfig_Validate_MissingDatabaseHost(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Database.Host = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing DB_HOST")
	}
	if !strings.Contains(err.Error(), "DB_HOST") {
		t.Errorf("expected error to mention DB_HOST, got: %v", err)
	}
}

func TestConfig_Validate_InvalidJWTExpiration(t *testing.T) {
	cfg := validBaseConfig()
	cfg.JWT.ExpirationMins = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for zero JWT_EXPIRATION_MINS")
	}
	if !strings.Contains(err.Error(), "JWT_EXPIRATION_MINS") {
		t.Errorf("expected error to mention JWT_EXPIRATION_MINS, got: %v", err)
	}
}

func TestConfig_Validate_RecoveryTTL(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Recovery.TokenTTL = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for zero RECOVERY_TOKEN_TTL")
	}
	if !strings.Contains(err.Error(), "RECOVERY_TOKEN_TTL") {
		t.Errorf("expected error to mention RECOVERY_TOKEN_TTL, got: %v", err)
	}
}

func TestConfig_Validate_MailFromRequiredWhenEnabled(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Mail.Enabled = true
	cfg.Mail.From = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing MAIL_FROM")
	}
	if !strings.Contains(err.Error(), "MAIL_FROM") {
		t.Errorf("expected error to mention MAIL_FROM, got: %v", err)
	}
}

func TestConfig_Validate_ProductionRequiresKeys(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Env = "production"
	cfg.JWT.PrivateKeyPath = ""
	cfg.JWT.PublicKeyPath = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing JWT keys in production")
	}
	if !strings.Contains(err.Error(), "JWT_PRIVATE_KEY_PATH") {
		t.Errorf("expected error to mention JWT_PRIVATE_KEY_PATH, got: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port == "" {
		t.Error("expected default server port")
	}
	if cfg.Recovery.TokenTTL != 48*time.Hour {
		t.Errorf("expected default recovery TTL of 48h, got %v", cfg.Recovery.TokenTTL)
	}
	if cfg.Database.Namespace != "inkwell" {
		t.Errorf("expected default namespace 'inkwell', got %q", cfg.Database.Namespace)
	}
}
