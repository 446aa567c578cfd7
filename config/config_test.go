package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// devAuth lets a test config start without a signing secret.
const devAuth = "auth:\n  allow_anonymous: true\n"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"+devAuth))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Gateway.Mode != GatewayERP {
		t.Errorf("unexpected defaults: port=%d mode=%s", cfg.Server.Port, cfg.Gateway.Mode)
	}
	if cfg.Editing.SessionTTL != 30*time.Minute || !cfg.Editing.EnforceConflicts {
		t.Errorf("unexpected editing defaults %+v", cfg.Editing)
	}
	if cfg.ERP.Timeout != 15*time.Second {
		t.Errorf("expected 15s erp timeout, got %s", cfg.ERP.Timeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("file value should override the default, got %s", cfg.Log.Level)
	}
	if cfg.Auth.Enabled() || cfg.Redis.Enabled() {
		t.Error("auth and redis are off without a secret and an address")
	}
}

func TestLoad_SecretRequired(t *testing.T) {
	if _, err := Load(writeConfig(t, "log:\n  level: info\n")); err == nil {
		t.Fatal("expected an empty jwt secret to be refused")
	}

	path := writeConfig(t, "log:\n  level: info\n")
	t.Setenv("EDUSYNC_AUTH_JWT_SECRET", "0123456789abcdef")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Auth.Enabled() || cfg.Auth.AllowAnonymous {
		t.Errorf("expected auth on, got %+v", cfg.Auth)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "gateway:\n  mode: erp\n"+devAuth)
	t.Setenv("EDUSYNC_GATEWAY_MODE", "store")
	t.Setenv("EDUSYNC_EDITING_SESSION_TTL", "5m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gateway.Mode != GatewayStore {
		t.Errorf("expected store mode from env, got %s", cfg.Gateway.Mode)
	}
	if cfg.Editing.SessionTTL != 5*time.Minute {
		t.Errorf("expected 5m session ttl, got %s", cfg.Editing.SessionTTL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown mode":  "gateway:\n  mode: ftp\n" + devAuth,
		"short secret":  "auth:\n  jwt_secret: short\n",
		"bad port":      "server:\n  port: 70000\n" + devAuth,
		"bad timezone":  "server:\n  timezone: Mars/Olympus\n" + devAuth,
		"zero ttl":      "editing:\n  session_ttl: 0s\n" + devAuth,
		"no erp target": "erp:\n  base_url: \"\"\n" + devAuth,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable", Timezone: "UTC"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable TimeZone=UTC"
	if got := c.DSN(); got != want {
		t.Errorf("got %q", got)
	}
}
