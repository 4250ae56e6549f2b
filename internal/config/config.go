// Package config 載入服務設定 (YAML)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-mem-bank/pkg/mysql"
)

// 儲存後端
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
)

type Config struct {
	GRPC    GRPCConfig    `yaml:"grpc"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Storage StorageConfig `yaml:"storage"`
}

type GRPCConfig struct {
	Addr string `yaml:"addr"`
}

type LedgerConfig struct {
	AccountNumberMin int64 `yaml:"account_number_min"`
	AccountNumberMax int64 `yaml:"account_number_max"`
	// DeadlockTimeout 等鎖超過此時間輸出診斷 (只記錄)，0 代表使用預設
	DeadlockTimeout time.Duration `yaml:"deadlock_timeout"`
}

type StorageConfig struct {
	Backend  string         `yaml:"backend"`
	Key      string         `yaml:"key"`
	File     FileConfig     `yaml:"file"`
	MySQL    mysql.Config   `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type FileConfig struct {
	Dir string `yaml:"dir"`
}

type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"max_conns"`
	Migrate  bool   `yaml:"migrate"`
}

// Load 讀取 YAML 設定檔並補全預設值，檔案不存在時使用 Default()
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("config %s not found, using defaults", path)
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 內容
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default 不讀檔時使用的設定
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":50051"
	}
	if c.Ledger.AccountNumberMin == 0 && c.Ledger.AccountNumberMax == 0 {
		c.Ledger.AccountNumberMin = 100000
		c.Ledger.AccountNumberMax = 999999
	}
	if c.Ledger.DeadlockTimeout == 0 {
		c.Ledger.DeadlockTimeout = 30 * time.Second
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Key == "" {
		c.Storage.Key = "bank_accounts"
	}
	if c.Storage.File.Dir == "" {
		c.Storage.File.Dir = "data"
	}
	if c.Storage.Backend == BackendMySQL {
		c.Storage.MySQL.ApplyDefaults()
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 4
	}
}

// Validate 檢查設定是否合理
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendMySQL, BackendPostgres:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	// 0 保留給「沒有對方帳號」
	if c.Ledger.AccountNumberMin <= 0 || c.Ledger.AccountNumberMax < c.Ledger.AccountNumberMin {
		return fmt.Errorf("invalid account number range [%d, %d]", c.Ledger.AccountNumberMin, c.Ledger.AccountNumberMax)
	}
	if c.Storage.Backend == BackendPostgres && c.Storage.Postgres.DSN == "" {
		return fmt.Errorf("storage.postgres.dsn is required")
	}
	if c.Storage.Backend == BackendMySQL && (c.Storage.MySQL.Host == "" || c.Storage.MySQL.DBName == "") {
		return fmt.Errorf("storage.mysql.host and storage.mysql.db_name are required")
	}
	return nil
}
