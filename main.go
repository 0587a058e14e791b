package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vibin_chat/config"
	"vibin_chat/controllers"
	"vibin_chat/logger"
	"vibin_chat/routes"
	"vibin_chat/services"
	"vibin_chat/socket"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer log.Sync()

	ctx := context.Background()

	store, closeStore, err := initStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("❌ failed to initialize store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeStore()
	log.Info("✅ store initialized", zap.String("backend", cfg.Store.Backend))

	// Shared state: one cache and one presence router per process
	cache := services.NewIdentityCache(store, log)
	presence := socket.NewRouter(log, cfg.Socket.MailboxSize)

	chatService := services.NewChatService(store, cache, presence, log)
	matchService := services.NewMatchService(store, cache, log)

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal("❌ invalid REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("⚠️ redis unreachable, unread counters may fail", zap.Error(err))
		}
		chatService.Unread = services.NewRedisUnreadCounter(rdb)
		log.Info("✅ unread counters enabled")
	}

	if cfg.Nats.URL != "" {
		publisher, err := services.NewNatsPublisher(cfg.Nats.URL, cfg.Nats.Stream, log)
		if err != nil {
			log.Warn("⚠️ message events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			chatService.Publisher = publisher
			log.Info("✅ message events enabled", zap.String("stream", cfg.Nats.Stream))
		}
	}

	socketServer := socket.NewSocketServer(presence, log)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Error("❌ socket server stopped", zap.Error(err))
		}
	}()
	defer socketServer.Close()

	r := mux.NewRouter()
	r.PathPrefix("/socket.io/").Handler(socketServer)

	timeout := cfg.Server.RequestTimeout
	routes.RegisterRoutes(r)
	routes.RegisterChatRoutes(r, controllers.NewChatController(chatService, log, timeout))
	routes.RegisterMatchRoutes(r, controllers.NewMatchController(matchService, log, timeout))
	routes.RegisterAdminRoutes(r, controllers.NewAdminController(cache, log))

	if cfg.AWS.S3Bucket != "" {
		s3Client, err := services.InitializeS3Client(ctx, cfg.AWS.Region)
		if err != nil {
			log.Fatal("❌ failed to initialize S3 client", zap.Error(err))
		}
		mediaService := services.NewMediaService(s3Client, cfg.AWS.S3Bucket, store)
		routes.RegisterMediaRoutes(r, controllers.NewMediaController(mediaService, log, timeout))
		log.Info("✅ chat media enabled", zap.String("bucket", cfg.AWS.S3Bucket))
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("🚀 starting server", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("🛑 shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("❌ graceful shutdown failed", zap.Error(err))
	}
}

// initStore builds the Persistence Gateway selected by STORE_BACKEND
func initStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.ChatStore, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		store := services.NewPostgresStore(db)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case config.BackendMemory:
		log.Warn("⚠️ using in-memory store, data is lost on restart")
		return services.NewMemoryStore(), func() {}, nil

	default:
		client, err := services.InitializeDynamoDBClient(ctx, cfg.AWS.Region, cfg.AWS.DynamoEndpoint)
		if err != nil {
			return nil, nil, err
		}
		dynamo := &services.DynamoService{Client: client, Logger: log}
		return services.NewDynamoStore(dynamo), func() {}, nil
	}
}
