package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

func TestSlotStore(t *testing.T) {
	ctx := context.Background()
	s := NewSlotStore()

	if _, err := s.Get(ctx, "k"); !errors.Is(err, domain.ErrSlotEmpty) {
		t.Fatalf("want ErrSlotEmpty, got %v", err)
	}

	value := []byte("v1")
	if err := s.Put(ctx, "k", value); err != nil {
		t.Fatal(err)
	}
	value[0] = 'x' // 呼叫端之後修改不應影響已存的資料

	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v1" {
		t.Fatalf("got %q err=%v", got, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("deleting a missing key should succeed: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, domain.ErrSlotEmpty) {
		t.Fatalf("want ErrSlotEmpty after delete, got %v", err)
	}
}
