package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName gRPC 服務名稱
const ServiceName = "bank.v1.LedgerService"

// 方法名稱
const (
	MethodCreateAccount = "CreateAccount"
	MethodDeposit       = "Deposit"
	MethodWithdraw      = "Withdraw"
	MethodTransfer      = "Transfer"
	MethodGetBalance    = "GetBalance"
	MethodGetHistory    = "GetHistory"
	MethodListAccounts  = "ListAccounts"
	MethodClearAll      = "ClearAll"
)

// LedgerServiceServer 請求與回應都是 structpb.Struct，不需要 protoc 產生程式碼
type LedgerServiceServer interface {
	CreateAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Deposit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Withdraw(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Transfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAccounts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearAll(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(LedgerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodDesc(name string, fn unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(LedgerServiceServer)
			if interceptor == nil {
				return fn(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return fn(s, ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// LedgerServiceDesc 手寫的服務描述
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc(MethodCreateAccount, LedgerServiceServer.CreateAccount),
		methodDesc(MethodDeposit, LedgerServiceServer.Deposit),
		methodDesc(MethodWithdraw, LedgerServiceServer.Withdraw),
		methodDesc(MethodTransfer, LedgerServiceServer.Transfer),
		methodDesc(MethodGetBalance, LedgerServiceServer.GetBalance),
		methodDesc(MethodGetHistory, LedgerServiceServer.GetHistory),
		methodDesc(MethodListAccounts, LedgerServiceServer.ListAccounts),
		methodDesc(MethodClearAll, LedgerServiceServer.ClearAll),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bank/v1/ledger_service",
}

// RegisterLedgerServiceServer 註冊服務
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

// FullMethod 回傳 /bank.v1.LedgerService/<name>
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// LedgerClient 呼叫 LedgerService 的客戶端
type LedgerClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerClient(cc grpc.ClientConnInterface) *LedgerClient {
	return &LedgerClient{cc: cc}
}

// Call 以 map 組成請求並呼叫指定方法
//
// 參數:
//
//	ctx: 上下文
//	method: 方法名稱 (MethodDeposit ...)
//	fields: 請求欄位，值須為 structpb.NewValue 支援的型別
//
// 回傳:
//
//	*structpb.Struct: 回應
//	error: 請求組裝或傳輸錯誤
func (c *LedgerClient) Call(ctx context.Context, method string, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
