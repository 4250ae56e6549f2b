package file

import (
	"context"
	"errors"
	"io/fs"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/slotfile"
)

// SlotStore 以本機檔案保存快照，一個 key 一個檔案
type SlotStore struct {
	dir *slotfile.Dir
}

// NewSlotStore 開啟資料目錄
func NewSlotStore(root string) (*SlotStore, error) {
	dir, err := slotfile.Open(root, slotfile.FileModePrivate)
	if err != nil {
		return nil, err
	}
	return &SlotStore{dir: dir}, nil
}

func (s *SlotStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.dir.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrSlotEmpty
	}
	return data, err
}

func (s *SlotStore) Put(ctx context.Context, key string, value []byte) error {
	return s.dir.Write(key, value)
}

func (s *SlotStore) Delete(ctx context.Context, key string) error {
	return s.dir.Remove(key)
}

var _ usecase.SlotStore = (*SlotStore)(nil)
