package domain

import (
	"errors"
	"testing"
	"time"
)

func sampleAccounts(t *testing.T) []*Account {
	t.Helper()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	alice, err := NewAccount(111111, "Alice", dec("100"), at)
	if err != nil {
		t.Fatal(err)
	}
	bob, err := NewAccount(222222, "Bob", dec("0"), at)
	if err != nil {
		t.Fatal(err)
	}
	_ = alice.Deposit(dec("50"))
	alice.Record(NewTransaction(TransactionTypeDeposit, dec("50"), 0, at.Add(time.Minute)))
	_ = alice.Withdraw(dec("100"))
	_ = bob.Deposit(dec("100"))
	alice.Record(NewTransaction(TransactionTypeTransferOut, dec("100"), bob.Number, at.Add(2*time.Minute)))
	bob.Record(NewTransaction(TransactionTypeTransferIn, dec("100"), alice.Number, at.Add(2*time.Minute)))
	return []*Account{alice, bob}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	orig := sampleAccounts(t)
	snap := NewSnapshot(orig, time.Now())

	restored, err := RestoreAccounts(snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(restored) != len(orig) {
		t.Fatalf("len=%d want %d", len(restored), len(orig))
	}
	for i := range orig {
		a, b := orig[i], restored[i]
		if a.Number != b.Number || a.Holder != b.Holder || !a.Balance.Equal(b.Balance) || !a.CreatedAt.Equal(b.CreatedAt) {
			t.Fatalf("account %d mismatch: %+v vs %+v", i, a, b)
		}
		if len(a.Transactions) != len(b.Transactions) {
			t.Fatalf("account %d tx count %d vs %d", i, len(a.Transactions), len(b.Transactions))
		}
		for j := range a.Transactions {
			x, y := a.Transactions[j], b.Transactions[j]
			if x.ID != y.ID || x.Type != y.Type || !x.Amount.Equal(y.Amount) || x.Counterparty != y.Counterparty || !x.CreatedAt.Equal(y.CreatedAt) {
				t.Fatalf("tx %d/%d mismatch: %+v vs %+v", i, j, x, y)
			}
		}
	}
}

func TestRestoreAccountsRejectsInvalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"version", func(s *Snapshot) { s.Version = 99 }},
		{"key mismatch", func(s *Snapshot) { s.Accounts[0].Number = 5 }},
		{"duplicate", func(s *Snapshot) { s.Accounts[1] = s.Accounts[0] }},
		{"empty holder", func(s *Snapshot) { s.Accounts[0].Account.Holder = " " }},
		{"bad balance", func(s *Snapshot) { s.Accounts[0].Account.Balance = "lots" }},
		{"negative balance", func(s *Snapshot) { s.Accounts[0].Account.Balance = "-1.00" }},
		{"bad created_at", func(s *Snapshot) { s.Accounts[0].Account.CreatedAt = "yesterday" }},
		{"bad tx id", func(s *Snapshot) { s.Accounts[0].Account.Transactions[0].ID = "x" }},
		{"bad tx type", func(s *Snapshot) { s.Accounts[0].Account.Transactions[0].Type = "refund" }},
		{"zero amount", func(s *Snapshot) { s.Accounts[0].Account.Transactions[0].Amount = "0" }},
		{"deposit with counterparty", func(s *Snapshot) { s.Accounts[0].Account.Transactions[0].Counterparty = 7 }},
		{"transfer without counterparty", func(s *Snapshot) { s.Accounts[0].Account.Transactions[1].Counterparty = 0 }},
		{"bad timestamp", func(s *Snapshot) { s.Accounts[1].Account.Transactions[0].Timestamp = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := NewSnapshot(sampleAccounts(t), time.Now())
			tc.mutate(&snap)
			if _, err := RestoreAccounts(snap); !errors.Is(err, ErrSnapshotInvalid) {
				t.Fatalf("want ErrSnapshotInvalid, got %v", err)
			}
		})
	}
}

func TestRestoreEmptySnapshot(t *testing.T) {
	accounts, err := RestoreAccounts(NewSnapshot(nil, time.Now()))
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 0 {
		t.Fatalf("want no accounts, got %d", len(accounts))
	}
}
