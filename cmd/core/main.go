package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	grpc_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/in/grpc"
	file_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/file"
	memory_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/mysql"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/persistence"
	postgres_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/postgres"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/internal/config"
	"github.com/JoeShih716/go-mem-bank/pkg/mysql"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// 1. 載入設定
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	memory_adapter.ConfigureLockDiagnostics(cfg.Ledger.DeadlockTimeout, log.Printf)

	// 2. 初始化儲存後端
	ctx := context.Background()
	store, closeStore, err := openSlotStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Storage.Backend, err)
	}
	defer closeStore()
	log.Printf("Using %s storage", cfg.Storage.Backend)

	// 3. 從快照還原帳本
	mirror := persistence.NewMirror(store, cfg.Storage.Key)
	accounts := mirror.Load(ctx)
	log.Printf("Loaded %d accounts", len(accounts))

	ledger := memory_adapter.NewMutexLedger(accounts,
		memory_adapter.WithNumberRange(cfg.Ledger.AccountNumberMin, cfg.Ledger.AccountNumberMax),
		memory_adapter.WithObserver(mirror),
	)

	// 4. 初始化 UseCase
	coreUseCase := usecase.NewCoreUseCase(ledger)

	// 5. 初始化 gRPC Adapter (Driving Adapter)
	grpcServer := grpc_adapter.NewGrpcServer(coreUseCase)

	// 6. 啟動 gRPC Server
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	s := grpc.NewServer()
	grpc_adapter.RegisterLedgerServiceServer(s, grpcServer)

	// Graceful Shutdown
	go func() {
		log.Printf("Starting gRPC server on %s", cfg.GRPC.Addr)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("failed to serve: %v", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	s.GracefulStop()
	log.Println("Server exited")
}

// openSlotStore 依設定建立 SlotStore，回傳的 close 函式負責釋放連線
func openSlotStore(ctx context.Context, cfg config.StorageConfig) (usecase.SlotStore, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case config.BackendMemory:
		return memory_adapter.NewSlotStore(), noop, nil
	case config.BackendFile:
		store, err := file_adapter.NewSlotStore(cfg.File.Dir)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	case config.BackendMySQL:
		client, err := mysql.NewClient(ctx, cfg.MySQL)
		if err != nil {
			return nil, noop, err
		}
		store := mysql_adapter.NewSlotStore(client)
		if err := store.Migrate(ctx); err != nil {
			client.Close()
			return nil, noop, err
		}
		return store, func() { client.Close() }, nil
	case config.BackendPostgres:
		pool, err := postgres_adapter.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, noop, err
		}
		if cfg.Postgres.Migrate {
			if err := postgres_adapter.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, noop, err
			}
		}
		return postgres_adapter.NewSlotStore(pool), pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
