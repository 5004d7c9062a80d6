package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-pos-ledger/internal/audit"
	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/handler"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/service"
	"go-pos-ledger/internal/snapshot"
	"go-pos-ledger/internal/ws"
	"go-pos-ledger/pkg/database"
	"go-pos-ledger/pkg/jwt"
	"go-pos-ledger/pkg/logger"
	"go-pos-ledger/pkg/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Tracing (no-op without OTEL_ENDPOINT)
	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.Config{
		ServiceName:    config.ServiceName,
		ServiceVersion: config.ServiceVersion,
		Endpoint:       cfg.OtelEndpoint,
		AuthHeader:     cfg.OtelAuthHeader,
	})
	if err != nil {
		zlog.Fatal("failed to set up tracing", zap.Error(err))
	}

	// 3. Snapshot store and initial state
	store, db, err := openStore(cfg)
	if err != nil {
		zlog.Fatal("failed to open snapshot store", zap.String("driver", cfg.SnapshotDriver), zap.Error(err))
	}

	doc, err := store.Load(ctx)
	switch {
	case errors.Is(err, snapshot.ErrNoSnapshot):
		zlog.Info("no snapshot found, starting empty")
		doc = snapshot.Empty(cfg.ShopName)
	case err != nil:
		zlog.Fatal("failed to load snapshot", zap.Error(err))
	}
	if doc.ShopName == "" {
		doc.ShopName = cfg.ShopName
	}
	zlog.Info("state loaded",
		zap.String("driver", cfg.SnapshotDriver),
		zap.Int("products", len(doc.Products)),
		zap.Int("sales", len(doc.Sales)),
	)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(zlog)
	go wsHub.Run()

	// 5. Audit sinks
	memory := audit.NewMemorySink(cfg.AuditMemorySize)
	memory.Seed(doc.Logs)
	sinks := []audit.Sink{audit.NewLogSink(zlog), memory, audit.NewHubSink(wsHub)}

	var kafkaSink *audit.KafkaSink
	if cfg.KafkaBroker != "" {
		kafkaSink = audit.NewKafkaSink(audit.NewKafkaWriter(cfg.KafkaBroker, cfg.KafkaAuditTopic))
		sinks = append(sinks, kafkaSink)
	}
	if db != nil {
		gormSink, err := audit.NewGormSink(db)
		if err != nil {
			zlog.Fatal("failed to set up audit table", zap.Error(err))
		}
		sinks = append(sinks, gormSink)
	}
	dispatcher := audit.NewDispatcher(zlog, cfg.AuditBuffer, sinks...)

	// 6. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(doc.Products)
	saleRepo := repository.NewSaleRepo(doc.Sales)
	clientRepo := repository.NewClientRepo(doc.Clients)

	ledger := service.NewLedgerService(productRepo, saleRepo, clientRepo, dispatcher, zlog, service.LedgerOptions{
		ShopName:       doc.ShopName,
		PaymentMethods: doc.PaymentMethods,
		Logs:           memory,
		Extras:         doc.Extras,
	})

	// Expenses only feed the financial report; a bad list is kept as is on disk
	expenses, err := doc.DecodeExpenses()
	if err != nil {
		zlog.Warn("expenses unreadable, financial report will omit them", zap.Error(err))
	}
	invService := service.NewInventoryService(productRepo, saleRepo, expenses)

	autosaver := snapshot.NewAutosaver(store, ledger, cfg.SnapshotInterval, zlog)
	autosaveCtx, stopAutosave := context.WithCancel(ctx)
	autosaveDone := make(chan struct{})
	go func() {
		autosaver.Run(autosaveCtx)
		close(autosaveDone)
	}()

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "POS Ledger v" + config.ServiceVersion,
	})

	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	handler.SetupRoutes(app, handler.Deps{
		Ledger:    ledger,
		Inventory: invService,
		Logs:      memory,
		Hub:       wsHub,
		Issuer:    jwt.NewIssuer(cfg.JWTSecret, cfg.JWTTTL),
		Logger:    zlog,
	})

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Panic("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	stopAutosave()
	<-autosaveDone

	finalCtx, cancelFinal := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelFinal()

	// drain audit first so the final snapshot carries the last entries
	if err := dispatcher.Close(finalCtx); err != nil {
		zlog.Error("audit queue not drained", zap.Error(err))
	}
	if err := autosaver.SaveNow(finalCtx); err != nil {
		zlog.Error("final snapshot save failed", zap.Error(err))
	}
	if kafkaSink != nil {
		if err := kafkaSink.Close(); err != nil {
			zlog.Error("kafka writer close", zap.Error(err))
		}
	}
	if err := shutdownTracing(finalCtx); err != nil {
		zlog.Error("tracing shutdown", zap.Error(err))
	}

	zlog.Info("server exited")
}

// openStore picks the snapshot backend. The gorm handle is returned for the
// postgres driver so the audit trail can share it.
func openStore(cfg *config.Config) (snapshot.Store, *gorm.DB, error) {
	switch cfg.SnapshotDriver {
	case config.DriverPostgres:
		db, err := database.ConnectPostgres(cfg.DatabaseURL, cfg.Env != "production")
		if err != nil {
			return nil, nil, err
		}
		store, err := snapshot.NewPostgresStore(db)
		return store, db, err
	case config.DriverSQLite:
		db, err := database.ConnectSQLite(cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		store, err := snapshot.NewSQLiteStore(db)
		return store, nil, err
	default:
		return snapshot.NewFileStore(cfg.SnapshotPath), nil, nil
	}
}
