// bankctl 是帳本服務的命令列介面，取代原本網頁上的表單與輸出面板
//
//	bankctl [-addr host:port] <command> [flags]
//
// command: create, deposit, withdraw, transfer, balance, history, list, clear
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	grpc_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/pkg/grpc"
)

const usage = `usage: bankctl [-addr host:port] [-timeout 5s] <command> [flags]

commands:
  create   -name NAME [-balance AMOUNT]
  deposit  -account NUMBER -amount AMOUNT
  withdraw -account NUMBER -amount AMOUNT
  transfer -from NUMBER -to NUMBER -amount AMOUNT
  balance  -account NUMBER
  history  -account NUMBER
  list
  clear
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("bankctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	addr := global.String("addr", "localhost:50051", "ledger server address")
	timeout := global.Duration("timeout", 5*time.Second, "request timeout")
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	method, fields, err := parseCommand(global.Arg(0), global.Args()[1:], stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	pool := grpc.NewPool()
	defer pool.Close()
	conn, err := pool.GetConnection(*addr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	resp, err := grpc_adapter.NewLedgerClient(conn).Call(ctx, method, fields)
	if err != nil {
		fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}
	return render(stdout, stderr, resp)
}

// parseCommand 將子命令與旗標轉成 RPC 方法與請求欄位
func parseCommand(name string, args []string, stderr io.Writer) (string, map[string]any, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	holder := fs.String("name", "", "account holder")
	balance := fs.String("balance", "0", "initial balance")
	account := fs.String("account", "", "account number")
	from := fs.String("from", "", "source account number")
	to := fs.String("to", "", "destination account number")
	amount := fs.String("amount", "", "amount")
	if err := fs.Parse(args); err != nil {
		return "", nil, err
	}

	switch name {
	case "create":
		return grpc_adapter.MethodCreateAccount, map[string]any{"account_holder": *holder, "initial_balance": *balance}, nil
	case "deposit":
		return grpc_adapter.MethodDeposit, map[string]any{"account_number": *account, "amount": *amount}, nil
	case "withdraw":
		return grpc_adapter.MethodWithdraw, map[string]any{"account_number": *account, "amount": *amount}, nil
	case "transfer":
		return grpc_adapter.MethodTransfer, map[string]any{
			"from_account_number": *from,
			"to_account_number":   *to,
			"amount":              *amount,
		}, nil
	case "balance":
		return grpc_adapter.MethodGetBalance, map[string]any{"account_number": *account}, nil
	case "history":
		return grpc_adapter.MethodGetHistory, map[string]any{"account_number": *account}, nil
	case "list":
		return grpc_adapter.MethodListAccounts, map[string]any{}, nil
	case "clear":
		return grpc_adapter.MethodClearAll, map[string]any{}, nil
	default:
		return "", nil, fmt.Errorf("unknown command %q\n%s", name, usage)
	}
}

// render 依 status 標籤決定輸出位置與結束碼，不比對訊息內容
func render(stdout, stderr io.Writer, resp *structpb.Struct) int {
	fields := resp.GetFields()
	raw := fields["status"].GetStringValue()
	st, ok := domain.ParseStatus(raw)
	message := fields["message"].GetStringValue()

	if !ok {
		fmt.Fprintf(stderr, "unrecognized response status %q: %s\n", raw, message)
		return 1
	}
	if st != domain.StatusOK {
		fmt.Fprintf(stderr, "[%s] %s\n", st, message)
		return 1
	}
	if message != "" {
		fmt.Fprintln(stdout, message)
	}
	if v, ok := fields["transactions"]; ok {
		renderTransactions(stdout, v.GetListValue().GetValues())
	}
	if v, ok := fields["accounts"]; ok {
		renderAccounts(stdout, v.GetListValue().GetValues())
	}
	return 0
}

func renderTransactions(w io.Writer, rows []*structpb.Value) {
	if len(rows) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tAMOUNT\tCOUNTERPARTY\tTIMESTAMP")
	for _, row := range rows {
		f := row.GetStructValue().GetFields()
		counterparty := "-"
		if v, ok := f["counterparty"]; ok {
			counterparty = fmt.Sprintf("%d", int64(v.GetNumberValue()))
		}
		fmt.Fprintf(tw, "%s\t$%s\t%s\t%s\n",
			f["type"].GetStringValue(),
			f["amount"].GetStringValue(),
			counterparty,
			f["timestamp"].GetStringValue(),
		)
	}
	tw.Flush()
}

func renderAccounts(w io.Writer, rows []*structpb.Value) {
	if len(rows) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tHOLDER\tBALANCE\tTRANSACTIONS")
	for _, row := range rows {
		f := row.GetStructValue().GetFields()
		fmt.Fprintf(tw, "%d\t%s\t$%s\t%d\n",
			int64(f["account_number"].GetNumberValue()),
			f["account_holder"].GetStringValue(),
			f["balance"].GetStringValue(),
			int64(f["transaction_count"].GetNumberValue()),
		)
	}
	tw.Flush()
}
