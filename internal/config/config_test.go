package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rate, err := cfg.Policy.InterestRate()
	if err != nil {
		t.Fatal(err)
	}
	if rate.String() != "8.5" {
		t.Errorf("default rate = %s, want 8.5", rate)
	}
	if cfg.Policy.AccountNumberLength != 12 {
		t.Errorf("account number length = %d, want 12", cfg.Policy.AccountNumberLength)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoreDriver != DriverPostgres {
		t.Errorf("store driver = %q, want %q", cfg.StoreDriver, DriverPostgres)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
store_driver = "sqlite"
sqlite_path = "/tmp/ledger-test.db"

[policy]
loan_interest_rate = "7.25"
recent_transactions = 10
default_address = "Unknown"
`)
	t.Setenv("PORT", "9999")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("NODE_ID", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoreDriver != DriverSQLite || cfg.SQLitePath != "/tmp/ledger-test.db" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Port != "9999" || cfg.NodeID != 7 {
		t.Errorf("env values not applied: port=%s node=%d", cfg.Port, cfg.NodeID)
	}
	if cfg.RedisEnabled() {
		t.Error("empty REDIS_ADDR should disable redis")
	}
	if cfg.Policy.RecentTransactions != 10 || cfg.Policy.DefaultAddress != "Unknown" {
		t.Errorf("policy not applied: %+v", cfg.Policy)
	}
	if cfg.Policy.DefaultPhoneNumber != "Not provided" {
		t.Errorf("unset policy keys must keep defaults, got %q", cfg.Policy.DefaultPhoneNumber)
	}
	rate, _ := cfg.Policy.InterestRate()
	if rate.String() != "7.25" {
		t.Errorf("rate = %s, want 7.25", rate)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown driver", body: `store_driver = "mongo"`},
		{name: "bad rate", body: "[policy]\nloan_interest_rate = \"eight\""},
		{name: "negative rate", body: "[policy]\nloan_interest_rate = \"-1\""},
		{name: "short account number", body: "[policy]\naccount_number_length = 4"},
		{name: "bad account kind", body: "[policy]\ndefault_account_kind = \"crypto\""},
		{name: "bad date of birth", body: "[policy]\ndefault_date_of_birth = \"01/01/2000\""},
		{name: "malformed toml", body: "store_driver = "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestLoadRejectsNonNumericNodeID(t *testing.T) {
	t.Setenv("NODE_ID", "abc")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric NODE_ID")
	}
}
