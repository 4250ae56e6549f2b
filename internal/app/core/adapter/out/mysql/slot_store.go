package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/mysql"
)

// sqlSlot 對應資料庫的 ledger_slots 表
type sqlSlot struct {
	SlotKey   string `gorm:"column:slot_key;primaryKey;size:191"`
	Value     []byte `gorm:"column:value;type:longblob"`
	UpdatedAt int64  `gorm:"autoUpdateTime:milli"` // 自動更新時間
}

func (*sqlSlot) TableName() string {
	return "ledger_slots"
}

// SlotStore 以 MySQL 單表保存快照
type SlotStore struct {
	client *mysql.Client
}

func NewSlotStore(client *mysql.Client) *SlotStore {
	return &SlotStore{
		client: client,
	}
}

// Migrate 建立 ledger_slots 表
func (s *SlotStore) Migrate(ctx context.Context) error {
	return s.client.DB().WithContext(ctx).AutoMigrate(&sqlSlot{})
}

func (s *SlotStore) Get(ctx context.Context, key string) ([]byte, error) {
	var slot sqlSlot
	err := s.client.DB().WithContext(ctx).Where("slot_key = ?", key).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("mysql slot get: %w", err)
	}
	return slot.Value, nil
}

// Put 以 upsert 覆寫
func (s *SlotStore) Put(ctx context.Context, key string, value []byte) error {
	slot := sqlSlot{SlotKey: key, Value: value}
	err := s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slot_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&slot).Error
	if err != nil {
		return fmt.Errorf("mysql slot put: %w", err)
	}
	return nil
}

func (s *SlotStore) Delete(ctx context.Context, key string) error {
	if err := s.client.DB().WithContext(ctx).Where("slot_key = ?", key).Delete(&sqlSlot{}).Error; err != nil {
		return fmt.Errorf("mysql slot delete: %w", err)
	}
	return nil
}

var _ usecase.SlotStore = (*SlotStore)(nil)
