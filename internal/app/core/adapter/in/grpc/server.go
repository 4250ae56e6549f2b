package grpc

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

type GrpcServer struct {
	core *usecase.CoreUseCase
}

func NewGrpcServer(core *usecase.CoreUseCase) *GrpcServer {
	return &GrpcServer{
		core: core,
	}
}

func (s *GrpcServer) CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	holder := req.GetFields()["account_holder"].GetStringValue()
	// 初始餘額無法解析時視為 0
	initial, ok := amountField(req, "initial_balance")
	if !ok {
		initial = decimal.Zero
	}
	acc, res, err := s.core.CreateAccount(ctx, holder, initial)
	if err != nil {
		return nil, internalError(err)
	}
	if !res.Succeeded() {
		return respond(res, nil)
	}
	return respond(res, map[string]any{"account": accountFields(acc)})
}

func (s *GrpcServer) Deposit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	number, amount, bad := numberAndAmount(req, "account_number", "deposit")
	if bad != nil {
		return respond(*bad, nil)
	}
	res, err := s.core.Deposit(ctx, number, amount)
	if err != nil {
		return nil, internalError(err)
	}
	return respond(res, nil)
}

func (s *GrpcServer) Withdraw(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	number, amount, bad := numberAndAmount(req, "account_number", "withdrawal")
	if bad != nil {
		return respond(*bad, nil)
	}
	res, err := s.core.Withdraw(ctx, number, amount)
	if err != nil {
		return nil, internalError(err)
	}
	return respond(res, nil)
}

func (s *GrpcServer) Transfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	from, amount, bad := numberAndAmount(req, "from_account_number", "transfer")
	if bad != nil {
		return respond(*bad, nil)
	}
	to, ok := numberField(req, "to_account_number")
	if !ok {
		return respond(invalidNumber(), nil)
	}
	res, err := s.core.TransferTo(ctx, from, to, amount)
	if err != nil {
		return nil, internalError(err)
	}
	return respond(res, nil)
}

func (s *GrpcServer) GetBalance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	number, ok := numberField(req, "account_number")
	if !ok {
		return respond(invalidNumber(), nil)
	}
	res, err := s.core.BalanceSummary(ctx, number)
	if err != nil {
		return nil, internalError(err)
	}
	return respond(res, nil)
}

func (s *GrpcServer) GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	number, ok := numberField(req, "account_number")
	if !ok {
		return respond(invalidNumber(), nil)
	}
	history, res, err := s.core.TransactionHistory(ctx, number)
	if err != nil {
		return nil, internalError(err)
	}
	if !res.Succeeded() {
		return respond(res, nil)
	}
	txs := make([]any, 0, len(history))
	for _, tx := range history {
		txs = append(txs, transactionFields(tx))
	}
	return respond(res, map[string]any{"transactions": txs})
}

func (s *GrpcServer) ListAccounts(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	accounts, res, err := s.core.ListAccounts(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	list := make([]any, 0, len(accounts))
	for _, acc := range accounts {
		list = append(list, accountFields(acc))
	}
	return respond(res, map[string]any{"accounts": list})
}

func (s *GrpcServer) ClearAll(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.core.ClearAll(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return respond(res, nil)
}

// respond 組裝回應：所有回應都帶 status 與 message
func respond(res domain.Result, extra map[string]any) (*structpb.Struct, error) {
	fields := map[string]any{
		"status":  res.Status.String(),
		"message": res.Message,
	}
	for k, v := range extra {
		fields[k] = v
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func internalError(err error) error {
	return status.Error(codes.Internal, err.Error())
}

func invalidNumber() domain.Result {
	return domain.Result{Status: domain.StatusValidationError, Message: "please enter a valid account number"}
}

// numberAndAmount 解析帳號與金額，失敗時回傳對應的 Result
func numberAndAmount(req *structpb.Struct, numberKey, action string) (int64, decimal.Decimal, *domain.Result) {
	number, ok := numberField(req, numberKey)
	if !ok {
		res := invalidNumber()
		return 0, decimal.Zero, &res
	}
	amount, ok := amountField(req, "amount")
	if !ok {
		res := domain.Result{Status: domain.StatusValidationError, Message: "please enter a " + action + " amount greater than 0"}
		return 0, decimal.Zero, &res
	}
	return number, amount, nil
}

// numberField 接受數字或數字字串
func numberField(req *structpb.Struct, key string) (int64, bool) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, false
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		f := kind.NumberValue
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
		// 超出 int64 的浮點數轉型結果未定義
		if f < -(1<<63) || f >= 1<<63 {
			return 0, false
		}
		return int64(f), true
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(kind.StringValue), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// amountField 金額以十進位字串傳遞，也接受數字
func amountField(req *structpb.Struct, key string) (decimal.Decimal, bool) {
	v, ok := req.GetFields()[key]
	if !ok {
		return decimal.Zero, false
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		f := kind.NumberValue
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(f), true
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(strings.TrimSpace(kind.StringValue))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

func accountFields(acc domain.Account) map[string]any {
	return map[string]any{
		"account_number":    acc.Number,
		"account_holder":    acc.Holder,
		"balance":           acc.Balance.StringFixed(domain.CurrencyPlaces),
		"created_at":        acc.CreatedAt.UTC().Format(time.RFC3339),
		"transaction_count": len(acc.Transactions),
	}
}

func transactionFields(tx domain.Transaction) map[string]any {
	fields := map[string]any{
		"id":        tx.ID.String(),
		"type":      tx.Type.String(),
		"amount":    tx.Amount.StringFixed(domain.CurrencyPlaces),
		"timestamp": tx.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if tx.Type.IsTransfer() {
		fields["counterparty"] = tx.Counterparty
	}
	return fields
}

var _ LedgerServiceServer = (*GrpcServer)(nil)
