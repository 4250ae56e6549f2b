package persistence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

const (
	// DefaultKey 快照存放的 key
	DefaultKey = "bank_accounts"
	// DefaultWriteTimeout OnCommit 單次寫入的上限
	DefaultWriteTimeout = 10 * time.Second
)

// Mirror 把帳本狀態鏡像到外部 key-value 儲存
//
// 結構:
//
//	store: 實際儲存 (memory / file / mysql / postgres)
//	key: 快照所在的唯一 key
//	writeTimeout: OnCommit 寫入的逾時
type Mirror struct {
	store        usecase.SlotStore
	key          string
	writeTimeout time.Duration
}

// MirrorOption 設定 Mirror
type MirrorOption func(*Mirror)

// WithWriteTimeout 覆寫 OnCommit 的寫入逾時
func WithWriteTimeout(d time.Duration) MirrorOption {
	return func(m *Mirror) {
		m.writeTimeout = d
	}
}

// NewMirror 建立 Mirror，key 為空時使用 DefaultKey
func NewMirror(store usecase.SlotStore, key string, opts ...MirrorOption) *Mirror {
	if key == "" {
		key = DefaultKey
	}
	m := &Mirror{store: store, key: key, writeTimeout: DefaultWriteTimeout}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Save 序列化整個帳本並覆寫舊快照
func (m *Mirror) Save(ctx context.Context, snap domain.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := m.store.Put(ctx, m.key, data); err != nil {
		return fmt.Errorf("put %s: %w", m.key, err)
	}
	return nil
}

// Load 讀取快照並重建帳戶
// 沒有快照或快照損毀時回傳空帳本，不會失敗
func (m *Mirror) Load(ctx context.Context) []*domain.Account {
	data, err := m.store.Get(ctx, m.key)
	if err != nil {
		if !errors.Is(err, domain.ErrSlotEmpty) {
			log.Printf("[persistence] read %s failed, starting empty: %v", m.key, err)
		}
		return nil
	}
	accounts, err := Decode(data)
	if err != nil {
		log.Printf("[persistence] snapshot %s unusable, starting empty: %v", m.key, err)
		return nil
	}
	return accounts
}

// Clear 刪除快照
func (m *Mirror) Clear(ctx context.Context) error {
	if err := m.store.Delete(ctx, m.key); err != nil {
		return fmt.Errorf("delete %s: %w", m.key, err)
	}
	return nil
}

// OnCommit 帳本提交後的掛勾，失敗只記錄 log，不影響記憶體中的帳本
//
// 變更已在記憶體生效，請求的取消不能中斷寫入，只保留 ctx 的值並另設逾時
func (m *Mirror) OnCommit(ctx context.Context, event domain.CommitEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.writeTimeout)
	defer cancel()

	var err error
	switch event.Kind {
	case domain.CommitKindMutation:
		if event.Snapshot == nil {
			return
		}
		err = m.Save(ctx, *event.Snapshot)
	case domain.CommitKindReset:
		err = m.Clear(ctx)
	}
	if err != nil {
		log.Printf("[persistence] best-effort write failed: %v", err)
	}
}

var _ usecase.CommitObserver = (*Mirror)(nil)
