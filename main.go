package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"lingochat/access"
	"lingochat/auth"
	"lingochat/autocomplete"
	"lingochat/blob"
	"lingochat/chat"
	"lingochat/config"
	"lingochat/database"
	"lingochat/handlers"
	"lingochat/message"
	"lingochat/presence"
	"lingochat/routes"
	"lingochat/store"
	"lingochat/translate"
	"lingochat/ws"
)

func main() {
	log.Println("Starting LingoChat server...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// ===== MONGODB =====
	var dbErr error
	for i := 1; i <= 3; i++ {
		if dbErr = database.ConnectDB(cfg.MongoURI); dbErr == nil {
			break
		}
		log.Printf("MongoDB connection attempt %d failed: %v", i, dbErr)
		time.Sleep(2 * time.Second)
	}
	if dbErr != nil {
		log.Fatal("Failed to connect to MongoDB: ", dbErr)
	}
	defer database.DisconnectDB()

	db := database.Client.Database(cfg.MongoDatabase)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		cancel()
		log.Fatal("Failed to create indexes: ", err)
	}
	cancel()

	// ===== REDIS =====
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(ctx).Err(); err != nil {
		cancel()
		log.Fatal("Failed to connect to Redis: ", err)
	}
	cancel()
	defer rdb.Close()

	// ===== EXTERNAL SERVICES =====
	startupCtx := context.Background()

	translator, err := translate.NewGoogleTranslator(startupCtx, cfg.GoogleProjectID, cfg.GoogleLocation)
	if err != nil {
		log.Fatal("Failed to initialize translator: ", err)
	}

	speech, err := translate.NewSpeech(startupCtx, cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.WhisperModel)
	if err != nil {
		log.Fatal("Failed to initialize speech services: ", err)
	}

	blobs, err := blob.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	if err != nil {
		log.Fatal("Failed to initialize blob store: ", err)
	}

	// ===== SERVICES =====
	st := store.New(db)
	tokens := auth.New(cfg.JWTSecret, cfg.TokenTTL)
	accessCtl := access.New(st)
	chats := chat.NewService(st)
	contextCache := autocomplete.NewCache(rdb)
	predictor := autocomplete.NewPredictor(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.PredictModel)
	completer := autocomplete.NewService(contextCache, st, predictor)
	messages := message.NewService(st, translator, speech, blobs, contextCache)
	presenceStore := presence.New(rdb)

	gateway := ws.NewGateway(ws.NewHub(), tokens, st, accessCtl, messages, presenceStore, completer)

	fanoutCtx, stopFanout := context.WithCancel(context.Background())
	defer stopFanout()
	go gateway.RunPresenceFanout(fanoutCtx, presenceStore.Subscribe(fanoutCtx))

	handlers.Init(handlers.Services{
		Store:  st,
		Auth:   tokens,
		Chats:  chats,
		Access: accessCtl,
	})

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(tokens, gateway, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}

	log.Println("Server stopped gracefully")
}
