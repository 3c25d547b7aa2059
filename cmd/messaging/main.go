package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rental-chat/auth"
	"rental-chat/contract"
	"rental-chat/fanout"
	"rental-chat/infrastructure/grpc/client"
	"rental-chat/infrastructure/grpc/server"
	"rental-chat/infrastructure/notifier"
	"rental-chat/infrastructure/presence"
	"rental-chat/infrastructure/storage"
	"rental-chat/internal"
	"rental-chat/runtime"
	"rental-chat/runtime/workers"
	"rental-chat/services"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/valkey-io/valkey-go"
	"google.golang.org/grpc"

	grpc3 "github.com/mama165/sdk-go/grpc"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Messaging server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run keeps every defer (badger, bluge, valkey) on the exit path.
func run() (int, error) {
	// A .env file is optional, the process environment wins.
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	tokens, err := auth.NewTokenManager(config.JwtSecret)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		database.StartDebugServer(db, config.DebugPort, endpoint, RecordMapper)
	}

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	chatRepository := storage.NewChatRepository(db, logger)
	messageRepository := storage.NewMessageRepository(db, storage.NewMessageIndex(blugeWriter, logger), logger, config.LimitMessages)
	blockRepository := storage.NewBlockRepository(db, logger)
	notificationRepository := storage.NewNotificationRepository(db, logger)
	deliveryRepository := storage.NewDeliveryRepository(db, logger)
	inboxRepository := storage.NewInboxRepository(db, logger)

	var presenceStore contract.PresenceStore = presence.NewMemoryStore()
	if config.ValkeyAddr != "" {
		valkeyClient, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{config.ValkeyAddr}})
		if err != nil {
			return exitRuntime, fmt.Errorf("valkey connection failed: %w", err)
		}
		defer valkeyClient.Close()
		presenceStore = presence.NewValkeyStore(valkeyClient, config.TypingTTL, logger)
		logger.Info("Typing indicators stored in valkey", "addr", config.ValkeyAddr)
	}

	directoryConn, err := client.Dial(config.DirectoryAddr)
	if err != nil {
		return exitRuntime, fmt.Errorf("directory connection failed: %w", err)
	}
	defer func() { _ = directoryConn.Close() }()
	directory := client.NewDirectoryClient(directoryConn, config.AttemptTimeout, logger)

	// Notification fan-out
	moderator, err := runtime.LoadModerator(logger, charReplacement)
	if err != nil {
		return exitRuntime, err
	}
	catalogue, err := fanout.DefaultCatalogue(config.DefaultLocale)
	if err != nil {
		return exitRuntime, err
	}
	senders := []contract.Sender{notifier.NewInAppSender(inboxRepository, logger)}
	if config.MailgunDomain != "" {
		mailer := notifier.NewMailgunMailer(config.MailgunDomain, config.MailgunApiKey)
		senders = append(senders, notifier.NewEmailSender(mailer, config.EmailFrom, logger))
	}
	if config.FirebaseCredentialsFile != "" {
		pushClient, err := notifier.NewFirebaseClient(ctx, config.FirebaseCredentialsFile)
		if err != nil {
			return exitRuntime, err
		}
		senders = append(senders, notifier.NewPushSender(pushClient, logger))
	}
	enricher := fanout.NewChatEnricher(logger, chatRepository, directory, directory,
		fanout.NewPreviewBuilder(moderator, config.PreviewLength))
	engine := fanout.NewEngine(logger, chatRepository, notificationRepository, deliveryRepository, directory,
		enricher, catalogue, fanout.Config{
			AttemptTimeout:  config.AttemptTimeout,
			DispatchTimeout: config.DispatchTimeout,
			DefaultLocale:   config.DefaultLocale,
		}, senders...)

	queue := workers.NewEventQueue(config.NotificationBufferSize, logger)
	orchestrator := runtime.NewOrchestrator(logger, workers.NewSupervisor(logger, config.RestartInterval),
		queue, engine, presenceStore, notificationRepository, deliveryRepository, runtime.Config{
			NumberOfDispatchers:   config.NumberOfDispatchers,
			TypingTTL:             config.TypingTTL,
			PresencePurgeInterval: config.PresencePurgeInterval,
			HealthInterval:        config.HealthInterval,
			Retry: workers.RetryConfig{
				Interval:    config.RetryInterval,
				Window:      config.RetryWindow,
				Settle:      config.DispatchTimeout,
				MaxAttempts: config.MaxDeliveryAttempts,
			},
		})

	// Services
	blockService := services.NewBlockService(blockRepository, logger)
	chatService := services.NewChatService(chatRepository, blockService, directory, queue, logger)
	messageService := services.NewMessageService(chatRepository, messageRepository, blockService, queue,
		services.MessageConfig{
			MaxContentLength: config.MaxContentLength,
			PreviewLength:    config.PreviewLength,
			PageSize:         config.LimitMessages,
		}, logger)
	presenceService := services.NewPresenceService(chatRepository, presenceStore, config.TypingTTL, logger)
	deliveryService := services.NewDeliveryService(notificationRepository, deliveryRepository, inboxRepository,
		config.LimitMessages, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	go func() {
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc3.UnaryLoggingInterceptor(logger),
			auth.UnaryInterceptor(tokens, server.PublicMethods...),
		))
	server.RegisterMessagingServer(s, server.NewMessagingServer(logger, chatService, messageService,
		blockService, presenceService, deliveryService))

	go func() {
		logger.Info("Starting gRPC server", "address", address, "at", time.Now().UTC())
		for serviceName := range s.GetServiceInfo() {
			logger.Debug("gRPC exposed service", "name", serviceName)
		}
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	logger.Info("Shutting down gracefully...")
	s.GracefulStop()
	orchestrator.Stop()
	if dropped := queue.Len(); dropped > 0 {
		logger.Warn("Notification events discarded at shutdown", "count", dropped)
	}
	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG).WithBypassLockGuard(true)
	}
	return options.WithLoggingLevel(badger.INFO)
}

// RecordMapper labels badger keys by their prefix and shows the JSON body.
// Index keys hold no value worth printing.
func RecordMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	prefix, _, _ := strings.Cut(key, ":")
	row.Type = strings.ToUpper(prefix)
	if json.Valid(val) {
		row.Detail = string(val)
	}
	return row
}
