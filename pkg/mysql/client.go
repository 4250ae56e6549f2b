package mysql

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Client 封裝 GORM DB 實例
type Client struct {
	db *gorm.DB
}

// NewClient 連線 MySQL，失敗時依 cfg.MaxRetries 重試，ctx 取消時立即放棄
//
// 參數:
//
//	ctx: context.Context - 控制整個重試流程
//	cfg: Config - MySQL 連線配置，未設定的欄位套用預設值
//
// 回傳值:
//
//	*Client: 已通過 ping 的客戶端
//	error: 重試耗盡或 ctx 結束
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cfg.ApplyDefaults()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		client, err := open(ctx, cfg)
		if err == nil {
			return client, nil
		}
		lastErr = err
		if attempt == cfg.MaxRetries {
			break
		}

		// 資料庫可能比服務晚啟動 (docker compose)
		log.Printf("[mysql] connect attempt %d/%d failed: %v, retrying in %v", attempt, cfg.MaxRetries, err, cfg.RetryInterval)
		timer := time.NewTimer(cfg.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("mysql connect canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("failed to connect to mysql after %d attempts: %w", cfg.MaxRetries, lastErr)
}

// open 建立單次連線並設定連線池
func open(ctx context.Context, cfg Config) (*Client, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		// 快照寫入是單列 upsert，不需要預設事務
		SkipDefaultTransaction: true,
		Logger:                 newLogger(cfg.LogLevel),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.db: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	client := &Client{db: db}
	if err := client.Ping(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return client, nil
}

// DB 回傳底層的 *gorm.DB 實例
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Ping 確認連線仍可用
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("mysql ping failed: %w", err)
	}
	return nil
}

// Close 關閉資料庫連線
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// newLogger 根據配置建立 GORM Logger，未知等級只記錄錯誤
func newLogger(level string) logger.Interface {
	levels := map[string]logger.LogLevel{
		"info":   logger.Info,
		"warn":   logger.Warn,
		"error":  logger.Error,
		"silent": logger.Silent,
	}
	lv, ok := levels[level]
	if !ok {
		lv = logger.Error
	}
	return logger.Default.LogMode(lv)
}
