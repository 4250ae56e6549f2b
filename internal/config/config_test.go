package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GRPC.Addr != ":50051" {
		t.Fatalf("addr=%s", cfg.GRPC.Addr)
	}
	if cfg.Ledger.AccountNumberMin != 100000 || cfg.Ledger.AccountNumberMax != 999999 {
		t.Fatalf("range=[%d,%d]", cfg.Ledger.AccountNumberMin, cfg.Ledger.AccountNumberMax)
	}
	if cfg.Storage.Backend != BackendFile || cfg.Storage.Key != "bank_accounts" || cfg.Storage.File.Dir != "data" {
		t.Fatalf("storage=%+v", cfg.Storage)
	}
	if cfg.Ledger.DeadlockTimeout != 30*time.Second {
		t.Fatalf("deadlock timeout=%v", cfg.Ledger.DeadlockTimeout)
	}
}

func TestParseOverrides(t *testing.T) {
	data := []byte(`
grpc:
  addr: ":6000"
ledger:
  account_number_min: 10
  account_number_max: 20
  deadlock_timeout: 5s
storage:
  backend: mysql
  key: other
  mysql:
    host: db
    db_name: bank
    conn_max_lifetime: 1m
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GRPC.Addr != ":6000" || cfg.Ledger.AccountNumberMin != 10 || cfg.Ledger.AccountNumberMax != 20 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Ledger.DeadlockTimeout != 5*time.Second {
		t.Fatalf("deadlock timeout=%v", cfg.Ledger.DeadlockTimeout)
	}
	if cfg.Storage.MySQL.Host != "db" || cfg.Storage.MySQL.Port != 3306 || cfg.Storage.MySQL.ConnMaxLifetime != time.Minute {
		t.Fatalf("mysql=%+v", cfg.Storage.MySQL)
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"backend", "storage: {backend: redis}", "unknown storage backend"},
		{"range", "ledger: {account_number_min: 50, account_number_max: 10}", "invalid account number range"},
		{"zero min", "ledger: {account_number_min: 0, account_number_max: 10}", "invalid account number range"},
		{"postgres dsn", "storage: {backend: postgres}", "dsn is required"},
		{"mysql host", "storage: {backend: mysql}", "host and storage.mysql.db_name are required"},
		{"syntax", "grpc: [", "parse config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v want substring %q", err, tc.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage: {backend: memory}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Fatalf("backend=%s", cfg.Storage.Backend)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Fatalf("cfg=%+v want defaults", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	// 目錄無法當成檔案讀取
	if _, err := Load(t.TempDir()); err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("err=%v", err)
	}
}
