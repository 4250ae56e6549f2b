package slotfile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRemove(t *testing.T) {
	dir := t.TempDir()
	d, err := Open(filepath.Join(dir, "nested", "data"), FileModePrivate)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := d.Read("bank"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("want ErrNotExist, got %v", err)
	}
	if err := d.Write("bank", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := d.Write("bank", []byte("two")); err != nil {
		t.Fatal(err)
	}
	got, err := d.Read("bank")
	if err != nil || string(got) != "two" {
		t.Fatalf("got %q err=%v", got, err)
	}

	// 寫入完成後不應殘留暫存檔
	entries, err := os.ReadDir(filepath.Join(dir, "nested", "data"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "bank.json" {
		t.Fatalf("unexpected files: %v", entries)
	}

	if err := d.Remove("bank"); err != nil {
		t.Fatal(err)
	}
	if err := d.Remove("bank"); err != nil {
		t.Fatalf("removing missing key should succeed: %v", err)
	}
}

func TestInvalidKeys(t *testing.T) {
	d, err := Open(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"", ".", "..", "a/b", `a\b`} {
		if err := d.Write(key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: want ErrInvalidKey, got %v", key, err)
		}
	}
}
