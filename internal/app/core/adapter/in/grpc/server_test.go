package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

// newTestClient 以 bufconn 在行程內啟動服務
func newTestClient(t *testing.T) *LedgerClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterLedgerServiceServer(s, NewGrpcServer(usecase.NewCoreUseCase(memory.NewMutexLedger(nil))))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewLedgerClient(conn)
}

func call(t *testing.T, c *LedgerClient, method string, fields map[string]any) *structpb.Struct {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := c.Call(ctx, method, fields)
	if err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	return resp
}

func statusOf(resp *structpb.Struct) string {
	return resp.GetFields()["status"].GetStringValue()
}

func createAccount(t *testing.T, c *LedgerClient, holder string, initial any) int64 {
	t.Helper()
	resp := call(t, c, MethodCreateAccount, map[string]any{"account_holder": holder, "initial_balance": initial})
	if statusOf(resp) != "OK" {
		t.Fatalf("create %s: %v", holder, resp)
	}
	acc := resp.GetFields()["account"].GetStructValue().GetFields()
	return int64(acc["account_number"].GetNumberValue())
}

func TestAliceBobOverGRPC(t *testing.T) {
	c := newTestClient(t)

	alice := createAccount(t, c, "Alice", "100")
	if resp := call(t, c, MethodDeposit, map[string]any{"account_number": alice, "amount": "50"}); statusOf(resp) != "OK" {
		t.Fatalf("deposit: %v", resp)
	}
	resp := call(t, c, MethodWithdraw, map[string]any{"account_number": alice, "amount": 200})
	if statusOf(resp) != "INSUFFICIENT_FUNDS" {
		t.Fatalf("withdraw: %v", resp)
	}

	bob := createAccount(t, c, "Bob", 0)
	resp = call(t, c, MethodTransfer, map[string]any{
		"from_account_number": alice,
		"to_account_number":   bob,
		"amount":              "100",
	})
	if statusOf(resp) != "OK" {
		t.Fatalf("transfer: %v", resp)
	}

	resp = call(t, c, MethodGetBalance, map[string]any{"account_number": alice})
	if got := resp.GetFields()["message"].GetStringValue(); got != "Account balance for Alice: $50.00" {
		t.Fatalf("alice balance message=%q", got)
	}

	resp = call(t, c, MethodGetHistory, map[string]any{"account_number": bob})
	txs := resp.GetFields()["transactions"].GetListValue().GetValues()
	if len(txs) != 1 {
		t.Fatalf("bob history len=%d", len(txs))
	}
	tx := txs[0].GetStructValue().GetFields()
	if tx["type"].GetStringValue() != "transfer_in" || tx["amount"].GetStringValue() != "100.00" ||
		int64(tx["counterparty"].GetNumberValue()) != alice {
		t.Fatalf("bob tx=%v", tx)
	}

	resp = call(t, c, MethodListAccounts, nil)
	accounts := resp.GetFields()["accounts"].GetListValue().GetValues()
	if len(accounts) != 2 {
		t.Fatalf("accounts len=%d", len(accounts))
	}
	first := accounts[0].GetStructValue().GetFields()
	if first["account_holder"].GetStringValue() != "Alice" || first["balance"].GetStringValue() != "50.00" {
		t.Fatalf("first account=%v", first)
	}
}

func TestRequestValidation(t *testing.T) {
	c := newTestClient(t)
	acc := createAccount(t, c, "A", "10")

	cases := []struct {
		name   string
		method string
		fields map[string]any
		want   string
	}{
		{"missing number", MethodDeposit, map[string]any{"amount": "1"}, "VALIDATION_ERROR"},
		{"fractional number", MethodDeposit, map[string]any{"account_number": 1.5, "amount": "1"}, "VALIDATION_ERROR"},
		{"number beyond int64", MethodDeposit, map[string]any{"account_number": 1e20, "amount": "1"}, "VALIDATION_ERROR"},
		{"number below int64", MethodGetBalance, map[string]any{"account_number": -1e20}, "VALIDATION_ERROR"},
		{"bad amount", MethodWithdraw, map[string]any{"account_number": acc, "amount": "abc"}, "VALIDATION_ERROR"},
		{"negative amount", MethodDeposit, map[string]any{"account_number": acc, "amount": "-5"}, "VALIDATION_ERROR"},
		{"unknown account", MethodGetBalance, map[string]any{"account_number": "1"}, "NOT_FOUND"},
		{"transfer missing to", MethodTransfer, map[string]any{"from_account_number": acc, "amount": "1"}, "VALIDATION_ERROR"},
		{"empty holder", MethodCreateAccount, map[string]any{"account_holder": "  "}, "VALIDATION_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusOf(call(t, c, tc.method, tc.fields)); got != tc.want {
				t.Fatalf("status=%s want %s", got, tc.want)
			}
		})
	}
}

func TestCreateAccountClampsUnparsableBalance(t *testing.T) {
	c := newTestClient(t)
	resp := call(t, c, MethodCreateAccount, map[string]any{"account_holder": "A", "initial_balance": "lots"})
	acc := resp.GetFields()["account"].GetStructValue().GetFields()
	if acc["balance"].GetStringValue() != "0.00" {
		t.Fatalf("balance=%v", acc["balance"])
	}
}

func TestClearAll(t *testing.T) {
	c := newTestClient(t)
	createAccount(t, c, "A", "1")
	if got := statusOf(call(t, c, MethodClearAll, nil)); got != "OK" {
		t.Fatalf("clear status=%s", got)
	}
	resp := call(t, c, MethodListAccounts, nil)
	if n := len(resp.GetFields()["accounts"].GetListValue().GetValues()); n != 0 {
		t.Fatalf("accounts after clear=%d", n)
	}
}

func TestNumberFieldBounds(t *testing.T) {
	cases := []struct {
		name string
		v    any
		want int64
		ok   bool
	}{
		{"integral float", float64(123456), 123456, true},
		{"largest exact float", float64(1 << 53), 1 << 53, true},
		{"two to the 63", float64(1 << 63), 0, false},
		{"minus two to the 63", -float64(1 << 63), -1 << 63, true},
		{"far below", -1e20, 0, false},
		{"numeric string", " 42 ", 42, true},
		{"fraction", 1.5, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := structpb.NewStruct(map[string]any{"n": tc.v})
			if err != nil {
				t.Fatal(err)
			}
			got, ok := numberField(req, "n")
			if ok != tc.ok || (ok && got != tc.want) {
				t.Fatalf("numberField(%v)=(%d,%v) want (%d,%v)", tc.v, got, ok, tc.want, tc.ok)
			}
		})
	}
}
