package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"care-chat/contract"
	"care-chat/moderation"
	"care-chat/repositories"
	"care-chat/runtime"
	"care-chat/runtime/workers"
	"care-chat/search"
	"care-chat/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so deferred cleanup always executes before
// the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. History store: in-memory by default, badger when a path is set.
	// Protocol semantics are identical; only durability changes.
	var store contract.HistoryStore = repositories.NewMemoryHistory()
	if config.BadgerFilepath != "" {
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return fmt.Errorf("database opening failed: %w", err)
		}
		defer func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}()
		store = repositories.NewBadgerHistory(db, log)
	}

	// 3. Optional moderation
	var moderator *moderation.Moderator
	if config.CensoredWordsFile != "" {
		words, err := loadCensoredWords(config.CensoredWordsFile)
		if err != nil {
			return fmt.Errorf("censored words: %w", err)
		}
		replacement, err := CharacterRune(config.ModerationCharReplacement)
		if err != nil {
			return fmt.Errorf("moderator: %w", err)
		}
		m, err := moderation.NewModerator(words, replacement)
		if err != nil {
			return fmt.Errorf("moderator: %w", err)
		}
		moderator = &m
	}

	// 4. Relay engine
	relay := runtime.NewRelay(log, config.DoctorID, store, moderator, config.BufferSize)

	// 5. Optional search index, fed as a permanent sink
	var indexer *search.Indexer
	if config.BlugeFilepath != "" {
		writer, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
		if err != nil {
			return fmt.Errorf("failed to open bluge writer: %w", err)
		}
		defer func() {
			log.Info("Closing search index...")
			_ = writer.Close()
		}()
		indexer = search.NewIndexer(writer, log)
		relay.Add(indexer)
	}

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Supervised workers: the relay loop and telemetry
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(relay, workers.NewTelemetryWorker(log, config.TelemetryInterval))
	go sup.Run(ctx)

	// 8. HTTP server with the websocket endpoint
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := ws.NewServer(log, relay, indexer, config.ConnectionBufferSize)
	httpServer := &http.Server{Addr: address, Handler: server.Routes()}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting relay server", "address", address, "doctor_id", config.DoctorID)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 10. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

// loadCensoredWords reads one word per line, skipping blanks.
func loadCensoredWords(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var words []string
	for _, line := range strings.Split(string(raw), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			words = append(words, trimmed)
		}
	}
	return words, nil
}
