package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/teamboard/teamboard/internal/auth"
	"github.com/teamboard/teamboard/internal/broadcast"
	"github.com/teamboard/teamboard/internal/metrics"
	"github.com/teamboard/teamboard/internal/notify"
	"github.com/teamboard/teamboard/internal/registry"
	"github.com/teamboard/teamboard/internal/server"
	"github.com/teamboard/teamboard/internal/task/mongodb"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

type App struct {
	logger          *zap.Logger
	settings        Settings
	store           *mongodb.Store
	websocketServer *server.WebSocketServer
	restServer      *server.RESTServer
	promRegistry    *prometheus.Registry
}

func NewApp(logger *zap.Logger, settings Settings, mongoClient *mongo.Client) *App {
	originChecker := server.NewOriginChecker(settings.AllowedOrigins)
	websocketUpgrader := &websocket.Upgrader{
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		CheckOrigin:       originChecker.Check,
		EnableCompression: true,
	}

	promRegistry := prometheus.NewRegistry()
	m := metrics.New(promRegistry)

	connectionRegistry := registry.NewRegistry(logger, m)
	broadcaster := broadcast.NewBroadcaster(logger, connectionRegistry, m)
	notifier := notify.NewTaskNotifier(logger, broadcaster)

	authenticator := auth.NewAuthenticator(settings.JWTSecret, settings.APIKeys)
	store := mongodb.NewStore(mongoClient)

	websocketServer := server.NewWebSocketServer(
		logger,
		websocketUpgrader,
		connectionRegistry,
		m,
	)
	restServer := server.NewRESTServer(
		logger,
		store,
		notifier,
		authenticator,
	)

	return &App{
		logger,
		settings,
		store,
		websocketServer,
		restServer,
		promRegistry,
	}
}

func (a *App) setup(ctx context.Context) error {
	err := a.store.Setup(ctx)
	if err != nil {
		return fmt.Errorf("setup task store: %w", err)
	}

	a.startHttpServer(ctx)

	return nil
}

func (a *App) startHttpServer(ctx context.Context) {
	notifyCtx, notifyCtxCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer notifyCtxCancel()

	address := fmt.Sprintf("0.0.0.0:%d", a.settings.Port)

	router := mux.NewRouter()
	if a.settings.BasePath != "" {
		router = router.PathPrefix(a.settings.BasePath).Subrouter()
	}

	a.websocketServer.Register(router)
	a.restServer.Register(router)
	router.Handle("/metrics", promhttp.HandlerFor(a.promRegistry, promhttp.HandlerOpts{}))

	httpServer := &http.Server{
		Addr:    address,
		Handler: router,
	}

	a.logger.Info("starting http server",
		zap.String("address", address))

	go func() {
		err := httpServer.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("failed to start http server",
				zap.Error(err))
		}
	}()

	<-notifyCtx.Done()

	a.logger.Info("stopping http server")

	shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCtxCancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Fatal("http server shutdown failed",
			zap.Error(err))
	}

	a.logger.Info("http server stopped")
}

func main() {
	ctx := context.Background()

	var settings Settings
	_, err := env.UnmarshalFromEnviron(&settings)
	if err != nil {
		panic(fmt.Sprintf("failed to parse settings from environment: %v", err))
	}

	logger, err := buildZapLogger(settings.LogEncoding)
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	defer logger.Sync()

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(settings.MongoDBURI))
	if err != nil {
		logger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer mongoClient.Disconnect(context.Background())

	app := NewApp(logger, settings, mongoClient)

	err = app.setup(ctx)
	if err != nil {
		logger.Fatal("failed to setup", zap.Error(err))
	}
}
