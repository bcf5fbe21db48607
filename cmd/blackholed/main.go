package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nxzone/blackholed/internal/dns/common/clock"
	"github.com/nxzone/blackholed/internal/dns/common/log"
	"github.com/nxzone/blackholed/internal/dns/config"
	"github.com/nxzone/blackholed/internal/dns/domain"
	"github.com/nxzone/blackholed/internal/dns/gateways/transport"
	"github.com/nxzone/blackholed/internal/dns/gateways/wire"
	"github.com/nxzone/blackholed/internal/dns/repos/journal"
	"github.com/nxzone/blackholed/internal/dns/repos/journal/bloom"
	"github.com/nxzone/blackholed/internal/dns/repos/journal/bolt"
	"github.com/nxzone/blackholed/internal/dns/repos/journal/lru"
	"github.com/nxzone/blackholed/internal/dns/services/resolver"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "blackholed"

	// Default timeouts
	defaultShutdownTimeout = 10 * time.Second

	// Journal seen-filter sizing. A sinkhole zone attracts scanner noise,
	// so the filter is dimensioned well above the expected distinct names.
	journalBloomCapacity = 1_000_000
	journalBloomFPRate   = 0.01
)

// Application holds all the components of the DNS server
type Application struct {
	config     *config.AppConfig
	transports []transport.ServerTransport
	resolver   *resolver.Resolver
	journal    resolver.Journal
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Configure global logging
	err = log.Configure(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":    version,
		"env":        cfg.Env,
		"log_level":  cfg.LogLevel,
		"bind":       cfg.Bind,
		"port":       cfg.Port,
		"zone":       cfg.Zone,
		"udp":        cfg.EnableUDP,
		"tcp":        cfg.EnableTCP,
		"journal_db": cfg.JournalDB,
	}, "Starting blackhole DNS server")

	// Build application with all dependencies
	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
		cancel()
	}()

	// Start the DNS server
	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Server failed")
	}

	log.Info(nil, "Blackhole DNS server stopped gracefully")
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	// Create shared clock for consistent time across all components
	clk := &clock.RealClock{}

	// Initialize logger (already configured globally)
	logger := log.GetLogger()

	// Build the authoritative zone from configuration
	zone, err := domain.NewZone(cfg.Zone, domain.SOA{
		Primary: cfg.SOAPrimary,
		Mailbox: cfg.SOAMailbox,
		Serial:  cfg.SOASerial,
		Refresh: cfg.SOARefresh,
		Retry:   cfg.SOARetry,
		Expire:  cfg.SOAExpire,
		Minimum: cfg.SOAMinimum,
	}, cfg.NameServers, cfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to build zone: %w", err)
	}

	// Build the query journal
	jrnl, err := buildJournal(cfg, clk, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build journal: %w", err)
	}

	// Create DNS wire codec
	codec := wire.NewMsgCodec(logger)

	// Build service layer
	resolverService := resolver.NewResolver(resolver.ResolverOptions{
		Zone:    zone,
		Journal: jrnl,
		Logger:  logger,
	})

	// Build transport layer
	transports, err := buildTransports(cfg, codec, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build transports: %w", err)
	}

	return &Application{
		config:     cfg,
		transports: transports,
		resolver:   resolverService,
		journal:    jrnl,
	}, nil
}

// buildJournal creates the query journal, or a no-op journal when no
// database path is configured.
func buildJournal(cfg *config.AppConfig, clk clock.Clock, logger log.Logger) (resolver.Journal, error) {
	if cfg.JournalDB == "" {
		log.Info(map[string]any{"enabled": false}, "Query journal disabled")
		return &journal.NopJournal{}, nil
	}

	store, err := bolt.New(cfg.JournalDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal store: %w", err)
	}

	cache, err := lru.New(cfg.JournalCacheSize)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create journal cache: %w", err)
	}

	repo, err := journal.New(journal.Options{
		Store:  store,
		Cache:  cache,
		Seen:   bloom.New(journalBloomCapacity, journalBloomFPRate),
		Clock:  clk,
		Logger: logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create journal: %w", err)
	}

	log.Info(map[string]any{
		"db":         cfg.JournalDB,
		"cache_size": cfg.JournalCacheSize,
	}, "Query journal configured")

	return repo, nil
}

// buildTransports creates one transport per enabled protocol.
func buildTransports(cfg *config.AppConfig, codec wire.DNSCodec, logger log.Logger) ([]transport.ServerTransport, error) {
	addr := net.JoinHostPort(cfg.Bind, strconv.Itoa(cfg.Port))

	var types []transport.TransportType
	if cfg.EnableUDP {
		types = append(types, transport.TransportUDP)
	}
	if cfg.EnableTCP {
		types = append(types, transport.TransportTCP)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("no transports enabled")
	}

	transports := make([]transport.ServerTransport, 0, len(types))
	for _, t := range types {
		srv, err := transport.NewTransport(t, addr, codec, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s transport: %w", t, err)
		}
		transports = append(transports, srv)
	}
	return transports, nil
}

// Run starts the DNS server and blocks until context is cancelled
func (app *Application) Run(ctx context.Context) error {
	started := make([]transport.ServerTransport, 0, len(app.transports))
	for _, srv := range app.transports {
		if err := srv.Start(ctx, app.resolver); err != nil {
			for _, s := range started {
				_ = s.Stop()
			}
			return fmt.Errorf("failed to start transport: %w", err)
		}
		started = append(started, srv)

		log.Info(map[string]any{
			"address": srv.Address(),
		}, "DNS listener started")
	}

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info(nil, "Shutdown initiated")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	// Stop transports gracefully, then close the journal
	done := make(chan struct{})
	go func() {
		for _, srv := range app.transports {
			if err := srv.Stop(); err != nil {
				log.Warn(map[string]any{"error": err}, "Error during transport shutdown")
			}
		}
		app.closeJournal()
		close(done)
	}()

	select {
	case <-done:
		log.Info(nil, "Graceful shutdown completed")
		return nil
	case <-shutdownCtx.Done():
		log.Warn(map[string]any{"timeout": defaultShutdownTimeout}, "Shutdown timeout exceeded")
		return fmt.Errorf("shutdown timeout")
	}
}

// closeJournal closes the journal and, when it is a real repository, logs a
// final summary of what the sinkhole observed.
func (app *Application) closeJournal() {
	if repo, ok := app.journal.(journal.Repository); ok {
		stats := repo.Stats()
		log.Info(map[string]any{
			"names":           stats.Store.Names,
			"rcodes":          stats.Store.RCodes,
			"cache_hits":      stats.CacheHits,
			"cache_misses":    stats.CacheMisses,
			"cache_evictions": stats.CacheEvictions,
		}, "Query journal summary")
	}
	if err := app.journal.Close(); err != nil {
		log.Warn(map[string]any{"error": err}, "Error closing query journal")
	}
}
