package slotfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// 自己定義常用的權限常量
const (
	// rw-r--r-- (擁有者讀寫，其他人唯讀) - 適用於大多數檔案
	FileModeReadOnly fs.FileMode = 0644

	// rwxr-xr-x - 資料目錄
	FileModeDir fs.FileMode = 0755

	// rw------- (只有擁有者可讀寫) - 適用於私鑰、機密檔
	FileModePrivate fs.FileMode = 0600
)

// ErrInvalidKey key 不可為空，也不可包含路徑分隔符號
var ErrInvalidKey = errors.New("invalid slot key")

// Dir 每個 key 對應目錄中的一個檔案
type Dir struct {
	root string
	mode fs.FileMode
	mu   sync.Mutex
}

// Open 開啟或建立資料目錄
func Open(root string, mode fs.FileMode) (*Dir, error) {
	if err := os.MkdirAll(root, FileModeDir); err != nil {
		return nil, err
	}
	if mode == 0 {
		mode = FileModeReadOnly
	}
	return &Dir{root: root, mode: mode}, nil
}

// Read 讀取 key 的內容，不存在時回傳 fs.ErrNotExist
func (d *Dir) Read(key string) ([]byte, error) {
	path, err := d.path(key)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return os.ReadFile(path)
}

// Write 原子寫入
// 先寫入暫存檔並 Sync 刷入硬碟，再 rename 取代正式檔案，
// 中途失敗時舊內容保持完整
func (d *Dir) Write(key string, data []byte) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	tmp, err := os.CreateTemp(d.root, "."+key+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // rename 成功後為 no-op

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, d.mode); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Remove 刪除 key，不存在不視為錯誤
func (d *Dir) Remove(key string) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (d *Dir) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(d.root, key+".json"), nil
}
