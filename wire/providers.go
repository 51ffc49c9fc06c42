package wire

import (
	"fmt"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/lotto-ledger/config"
	"github.com/Digital-Creators-Team/lotto-ledger/db/redis"
	"github.com/Digital-Creators-Team/lotto-ledger/events/kafka"
	"github.com/Digital-Creators-Team/lotto-ledger/logging"
	"github.com/Digital-Creators-Team/lotto-ledger/lotto"
	"github.com/Digital-Creators-Team/lotto-ledger/metrics"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/jackpot"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/providers"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/treasury"
	"github.com/Digital-Creators-Team/lotto-ledger/provider"
	"github.com/Digital-Creators-Team/lotto-ledger/scheduler"
	"github.com/Digital-Creators-Team/lotto-ledger/server"
)

// Runtime is everything `lottod serve` needs. Optional parts are nil when
// their section of the config is empty.
type Runtime struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Ledger    *lotto.Ledger
	Treasury  *treasury.Budget
	Reports   *provider.ReportStore
	App       *server.App
	Scheduler *scheduler.Scheduler
}

// Treasury is the tax authority together with its local tally.
type Treasury struct {
	Authority providers.TaxAuthority
	Budget    *treasury.Budget
}

// ProvideLogger provides a zerolog.Logger
func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Logging)
}

// ProvideRedisClient connects to Redis, or returns nil when no address is configured.
func ProvideRedisClient(cfg *config.Config, logger zerolog.Logger) (*redis.Client, func(), error) {
	if cfg.Redis.Addr == "" {
		logger.Info().Msg("Redis not configured, wallets and reports stay in memory")
		return nil, func() {}, nil
	}
	client, err := redis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing Redis client")
		}
	}, nil
}

// ProvideTreasury forwards to the remote tax service when one is
// configured, and keeps the tally in process otherwise.
func ProvideTreasury(cfg *config.Config, logger zerolog.Logger) (Treasury, func()) {
	if cfg.ExternalServices.TaxService.BaseURL == "" {
		budget := treasury.NewBudget()
		return Treasury{Authority: budget, Budget: budget}, func() {}
	}
	client := provider.NewTaxAuthorityClient(cfg.ExternalServices.TaxService, logger)
	return Treasury{Authority: client, Budget: client.Budget()}, client.Close
}

// ProvideKafkaProducer returns nil when no brokers are configured.
func ProvideKafkaProducer(cfg *config.Config, logger zerolog.Logger) (*kafka.Producer, func()) {
	producer := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers, Logger: logger})
	if producer == nil {
		return nil, func() {}
	}
	return producer, func() {
		_ = producer.Close()
	}
}

// ProvideReportStore returns nil without Redis.
func ProvideReportStore(client *redis.Client, cfg *config.Config, logger zerolog.Logger) *provider.ReportStore {
	if client == nil {
		return nil
	}
	return provider.NewReportStore(client, cfg.Redis.ReportTTL, logger)
}

// ProvideWalletProvider opens player wallets with the configured balance.
func ProvideWalletProvider(client *redis.Client, cfg *config.Config, logger zerolog.Logger) (*provider.WalletProvider, error) {
	balance, err := cfg.Lottery.PlayerBalanceMinor()
	if err != nil {
		return nil, err
	}
	return provider.NewWalletProvider(client, balance, logger), nil
}

// ProvideJackpotService starts the pool feed, seeded from the report store when present.
func ProvideJackpotService(reports *provider.ReportStore, logger zerolog.Logger) (*jackpot.Service, func()) {
	cfg := jackpot.ServiceConfig{Logger: logger}
	if reports != nil {
		cfg.Provider = reports
	}
	svc := jackpot.NewService(cfg)
	return svc, svc.Stop
}

// ProvideEventPublisher fans ledger events out to every configured sink.
func ProvideEventPublisher(cfg *config.Config, producer *kafka.Producer, reports *provider.ReportStore, js *jackpot.Service) providers.EventPublisher {
	sinks := providers.MultiPublisher{js, metrics.Recorder{}}
	if reports != nil {
		sinks = append(sinks, reports)
	}
	if producer != nil {
		sinks = append(sinks, kafka.NewPublisher(producer, kafka.Topics{
			TicketIssued:   cfg.Kafka.Topic(config.TopicTicketIssued),
			TicketRedeemed: cfg.Kafka.Topic(config.TopicTicketRedeemed),
			DrawConducted:  cfg.Kafka.Topic(config.TopicDrawConducted),
		}))
	}
	return sinks
}

// ProvideLedger builds the ledger and opens the configured offices, numbered from 1.
func ProvideLedger(cfg *config.Config, logger zerolog.Logger, tax Treasury, publisher providers.EventPublisher) (*lotto.Ledger, error) {
	funds, err := cfg.Lottery.InitialFundsMinor()
	if err != nil {
		return nil, err
	}
	ledger := lotto.NewLedger(lotto.Config{
		TaxAuthority: tax.Authority,
		Source:       lotto.NewSource(cfg.Lottery.Seed),
		Logger:       logger,
		Publisher:    publisher,
		InitialFunds: funds,
	})
	for i := 1; i <= cfg.Lottery.Offices; i++ {
		if _, err := ledger.RegisterOffice(i); err != nil {
			return nil, fmt.Errorf("failed to open office %d: %w", i, err)
		}
	}
	return ledger, nil
}

// ProvideScheduler returns nil when draws are only triggered over HTTP.
func ProvideScheduler(cfg *config.Config, ledger *lotto.Ledger, logger zerolog.Logger) (*scheduler.Scheduler, error) {
	if cfg.Lottery.DrawSchedule == "" {
		return nil, nil
	}
	return scheduler.New(cfg.Lottery.DrawSchedule, ledger, logger)
}

// ProvideServerOptions provides server options
func ProvideServerOptions(cfg *config.Config, logger zerolog.Logger, ledger *lotto.Ledger, wallets *provider.WalletProvider, reports *provider.ReportStore, js *jackpot.Service) server.Options {
	opts := server.Options{
		Config:  cfg,
		Logger:  logger,
		Ledger:  ledger,
		Wallets: wallets,
		Jackpot: js,
	}
	// A nil *ReportStore must not become a non-nil interface.
	if reports != nil {
		opts.Reports = reports
	}
	return opts
}

// ProvideApp provides the main application
func ProvideApp(opts server.Options) *server.App {
	app := server.New(opts)
	app.UseCommonMiddlewares()
	app.RegisterHealthCheck()
	app.RegisterSwagger()
	app.RegisterRoutes()
	return app
}

// ProvideRuntime assembles the process.
func ProvideRuntime(cfg *config.Config, logger zerolog.Logger, ledger *lotto.Ledger, tax Treasury, reports *provider.ReportStore, app *server.App, sched *scheduler.Scheduler) *Runtime {
	return &Runtime{
		Config:    cfg,
		Logger:    logger,
		Ledger:    ledger,
		Treasury:  tax.Budget,
		Reports:   reports,
		App:       app,
		Scheduler: sched,
	}
}

// LoggingSet is the wire provider set for logging
var LoggingSet = wire.NewSet(
	ProvideLogger,
)

// StorageSet is the wire provider set for Redis-backed stores
var StorageSet = wire.NewSet(
	ProvideRedisClient,
	ProvideReportStore,
	ProvideWalletProvider,
)

// EventSet is the wire provider set for event sinks
var EventSet = wire.NewSet(
	ProvideKafkaProducer,
	ProvideJackpotService,
	ProvideEventPublisher,
)

// LedgerSet is the wire provider set for the ledger and its collaborators
var LedgerSet = wire.NewSet(
	ProvideTreasury,
	ProvideLedger,
	ProvideScheduler,
)

// ServerSet is the wire provider set for server
var ServerSet = wire.NewSet(
	ProvideServerOptions,
	ProvideApp,
)

// FullSet includes every provider needed by Runtime
var FullSet = wire.NewSet(
	LoggingSet,
	StorageSet,
	EventSet,
	LedgerSet,
	ServerSet,
	ProvideRuntime,
)
