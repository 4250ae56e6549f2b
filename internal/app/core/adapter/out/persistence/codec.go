package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// Encode 快照轉為 RFC 8785 (JCS) 正規化 JSON，同樣的帳本永遠得到同樣的位元組
func Encode(snap domain.Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize snapshot: %w", err)
	}
	return canon, nil
}

// Decode 解析快照並透過 domain.RestoreAccounts 重建帳戶
func Decode(data []byte) ([]*domain.Account, error) {
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSnapshotInvalid, err)
	}
	return domain.RestoreAccounts(snap)
}
