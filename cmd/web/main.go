package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"labrent/cmd/web/handlers"
	"labrent/cmd/web/validator"
	"labrent/internal/audit"
	"labrent/internal/borrow"
	"labrent/internal/completion"
	"labrent/internal/config"
	"labrent/internal/events"
	"labrent/internal/health"
	"labrent/internal/intent"
	"labrent/internal/ledger"
	"labrent/internal/live"
	"labrent/internal/notification"
	"labrent/internal/readmodels"
	"labrent/internal/reconcile"
	"labrent/internal/recovery"
	"labrent/kit/backend"
	"labrent/kit/broker"
	"labrent/kit/observability"
	"labrent/kit/push"
	"labrent/kit/sessionstore"
)

func main() {
	logger := observability.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config error", "error", err.Error())
		return
	}

	registry := prometheus.NewRegistry()
	metricsKit := observability.NewMetrics(registry)

	store, closeStore, err := buildSessionStore(cfg, logger)
	if err != nil {
		logger.Error("session store init error", "error", err.Error())
		return
	}
	defer closeStore()

	auditSvc, err := audit.NewServiceWithFile(logger, cfg.AuditFile)
	if err != nil {
		logger.Error("audit init error", "error", err.Error())
		return
	}
	defer func() { _ = auditSvc.Close() }()

	apiClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout)
	puller := backend.NewCircuitBreakerPuller(apiClient, backend.CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      2 * time.Second,
	})

	bus := broker.New()
	projector := readmodels.NewProjector(metricsKit)
	ledgerSvc := ledger.New(store)
	intents := intent.New(store)
	notifier := notification.NewService(logger)
	recoverySvc := recovery.NewService(puller, projector, cfg.UserID, logger, metricsKit)
	reconciler := reconcile.NewService(puller, projector, intents, recoverySvc, metricsKit)
	completionSvc := completion.NewService(apiClient, ledgerSvc, intents, reconciler, notifier, auditSvc, metricsKit, cfg.UserID, cfg.SettleDelay, cfg.MarkerCooldown)

	// merge path: every push event flows through the projector
	for _, name := range []string{
		events.NotificationCreated{}.Name(),
		events.TransactionCreated{}.Name(),
		events.BalanceUpdated{}.Name(),
		events.PenaltyUpserted{}.Name(),
		events.BorrowRequestUpserted{}.Name(),
		events.GroupMemberUpserted{}.Name(),
	} {
		bus.Subscribe(name, projector.Apply)
	}
	liveHandlers := live.NewHandlers(logger, reconciler)
	bus.Subscribe(events.BalanceUpdated{}.Name(), liveHandlers.HandleBalanceUpdated)

	transport, err := push.NewNATSTransport(push.NATSConfig{
		URL:      cfg.NATSUrl,
		Name:     "labrent-" + uuid.NewString(),
		Username: cfg.NATSUsername,
		Password: cfg.NATSPassword,
	})
	if err != nil {
		logger.Error("push transport init error", "error", err.Error())
		return
	}
	defer transport.Close()

	channel := live.NewChannel(transport, bus, logger, cfg.UserID, cfg.GroupID)
	if err := channel.Open(context.Background()); err != nil {
		logger.Error("push channel open error", "error", err.Error())
		return
	}
	defer channel.Close()

	// initial pull: the push channel does not replay, so the view starts
	// from an authoritative resync
	if err := recoverySvc.Resync(context.Background()); err != nil {
		logger.Error("initial resync incomplete", "error", err.Error())
	}

	auditSvc.Record(context.Background(), "session.started", map[string]any{"user_id": cfg.UserID})

	healthSvc := health.NewService(2*time.Second, map[string]health.CheckFunc{
		"backend": func(ctx context.Context) error { return apiClient.Ping(ctx) },
		"session_store": func(ctx context.Context) error {
			_, err := store.SetNX(ctx, "healthcheck", []byte(`{"ok":true}`))
			if err != nil {
				return err
			}
			return store.Delete(ctx, "healthcheck")
		},
	})

	jsonV := validator.NewJSON()
	// the duplicate guard's pre-write pull goes straight to the client: a
	// tripped read breaker must not block creating a rental
	borrowSvc := borrow.NewService(apiClient, projector, cfg.UserID)

	walletH := handlers.NewWallet(jsonV, apiClient, intents, completionSvc, projector, healthSvc,
		"http://localhost"+cfg.HTTPAddr+"/wallet/return",
		"http://localhost"+cfg.HTTPAddr+"/wallet/cancel",
	)
	notificationsH := handlers.NewNotifications(apiClient, projector)
	borrowH := handlers.NewBorrow(jsonV, borrowSvc, projector)
	healthH := handlers.NewHealth(healthSvc)

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.HandleFunc("/healthz", healthH.Check).Methods(http.MethodGet)

	r.HandleFunc("/wallet", walletH.Get).Methods(http.MethodGet)
	r.HandleFunc("/wallet/transactions", walletH.Transactions).Methods(http.MethodGet)
	r.HandleFunc("/wallet/topup", walletH.TopUp).Methods(http.MethodPost)
	r.HandleFunc("/wallet/return", walletH.GatewayReturn).Methods(http.MethodGet)
	r.HandleFunc("/wallet/cancel", walletH.GatewayReturn).Methods(http.MethodGet)

	r.HandleFunc("/notifications", notificationsH.List).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}/read", notificationsH.MarkRead).Methods(http.MethodPost)

	r.HandleFunc("/borrow-requests", borrowH.List).Methods(http.MethodGet)
	r.HandleFunc("/borrow-requests", borrowH.Create).Methods(http.MethodPost)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	go func() {
		logger.Info("server starting", "addr", cfg.HTTPAddr, "user_id", cfg.UserID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err.Error())
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	// logout: release subscriptions first, then the connection
	channel.Close()
	auditSvc.Record(context.Background(), "session.ended", map[string]any{"user_id": cfg.UserID})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err.Error())
	}
}

func buildSessionStore(cfg *config.Config, logger *observability.Logger) (sessionstore.Store, func(), error) {
	if cfg.RedisAddr != "" {
		s, err := sessionstore.NewRedis(sessionstore.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			SessionID: cfg.SessionID,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("session store", "backend", "redis", "addr", cfg.RedisAddr)
		return s, func() { _ = s.Close() }, nil
	}
	if cfg.SessionFile != "" {
		s, err := sessionstore.NewFile(cfg.SessionFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("session store", "backend", "file", "path", cfg.SessionFile)
		return s, func() { _ = s.Close() }, nil
	}
	logger.Info("session store", "backend", "memory")
	return sessionstore.NewMemory(), func() {}, nil
}
