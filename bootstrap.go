package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/amirphl/mailwright/app/queue"
	"github.com/amirphl/mailwright/app/router"
	"github.com/amirphl/mailwright/app/services"
	"github.com/amirphl/mailwright/app/worker"
	businessflow "github.com/amirphl/mailwright/business_flow"
	"github.com/amirphl/mailwright/config"
	"github.com/amirphl/mailwright/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Application holds the long-lived dependencies shared by the commands
type Application struct {
	cfg    *config.ProductionConfig
	logger *zap.Logger
	db     *gorm.DB
	redis  *redis.Client
	queue  queue.Queue

	jobRepo      repository.GenerationJobRepository
	campaignRepo repository.CampaignRepository
	templateRepo repository.EmailTemplateRepository
	profileRepo  repository.CompanyProfileRepository
	auditRepo    repository.AuditLogRepository

	stopFuncs []func()
}

// bootstrap loads configuration and connects to Postgres and Redis
func bootstrap() (*Application, error) {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := initializeDatabase(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	app := &Application{
		cfg:          cfg,
		logger:       logger,
		db:           db,
		jobRepo:      repository.NewGenerationJobRepository(db),
		campaignRepo: repository.NewCampaignRepository(db),
		templateRepo: repository.NewEmailTemplateRepository(db),
		profileRepo:  repository.NewCompanyProfileRepository(db),
		auditRepo:    repository.NewAuditLogRepository(db),
	}

	if cfg.Cache.Enabled {
		rc, err := initializeCache(cfg.Cache, logger)
		if err != nil {
			return nil, err
		}
		app.redis = rc
		app.queue = queue.NewRedisQueue(rc, cfg.Cache.RedisPrefix, cfg.Worker.QueueName, logger)
		app.stopFuncs = append(app.stopFuncs, startCacheHealthMonitor(context.Background(), rc, cfg.Cache.HealthInterval, logger))
	} else {
		logger.Warn("Redis disabled; using the in-process queue, jobs are only picked up by an embedded worker")
		app.queue = queue.NewMemoryQueue(1024)
	}

	return app, nil
}

// Close stops background monitors and releases connections
func (a *Application) Close() {
	for _, fn := range a.stopFuncs {
		fn()
	}
	_ = a.queue.Close()
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}

func (a *Application) sampling() businessflow.SamplingConfig {
	return businessflow.SamplingConfig{
		MaxTokens:              a.cfg.AI.MaxTokens,
		SubjectLineMaxTokens:   a.cfg.AI.SubjectLineMaxTokens,
		DefaultTemperature:     a.cfg.AI.DefaultTemperature,
		SubjectLineTemperature: a.cfg.AI.SubjectLineTemperature,
	}
}

func (a *Application) generationFlow() businessflow.GenerationFlow {
	assembler := businessflow.NewContextAssembler(a.campaignRepo, a.profileRepo, a.templateRepo)
	return businessflow.NewGenerationFlow(
		assembler,
		a.campaignRepo,
		a.templateRepo,
		a.jobRepo,
		a.auditRepo,
		repository.NewTransactor(a.db),
		a.queue,
		a.sampling(),
		a.cfg.Generation,
		a.logger.Named("generation_flow"),
	)
}

func (a *Application) textGenerator() (services.TextGenerator, error) {
	var gen services.TextGenerator
	switch a.cfg.AI.Provider {
	case "mock":
		gen = services.NewMockTextGenerator(a.cfg.AI.Model)
	default:
		g, err := services.NewOpenAITextGenerator(a.cfg.AI.APIKey, a.cfg.AI.BaseURL, a.cfg.AI.Model, a.logger.Named("text_generator"))
		if err != nil {
			return nil, err
		}
		gen = g
	}
	return worker.NewRateLimitedGenerator(gen, a.cfg.AI.RequestsPerSecond, a.cfg.AI.Burst), nil
}

// startWorkers starts the generation pool and the reconcile loop. The returned
// func stops both and waits for in-flight jobs.
func (a *Application) startWorkers(ctx context.Context, concurrency int) (func(), error) {
	gen, err := a.textGenerator()
	if err != nil {
		return nil, err
	}

	processor := businessflow.NewGenerationProcessor(
		a.jobRepo,
		gen,
		businessflow.NewPromptBuilder(a.cfg.Generation),
		businessflow.NewConfiguredResponseParser(a.cfg.Generation),
		a.sampling(),
		a.cfg.Worker.SoftTimeLimit,
		a.logger.Named("generation_processor"),
	)

	pool := worker.NewPool(a.queue, processor, worker.Config{
		Concurrency:    concurrency,
		DequeueTimeout: a.cfg.Worker.DequeueTimeout,
		HardTimeLimit:  a.cfg.Worker.HardTimeLimit,
		RetryBackoff:   time.Second,
	}, a.logger.Named("worker"))

	reconciler := businessflow.NewJobReconciler(a.jobRepo, a.queue, businessflow.ReconcilerConfig{
		HardTimeLimit:     a.cfg.Worker.HardTimeLimit,
		ReconcileInterval: a.cfg.Worker.ReconcileInterval,
		StalePendingAge:   a.cfg.Worker.StalePendingAge,
		Batch:             a.cfg.Worker.ReconcileBatch,
	}, a.logger.Named("reconciler"))
	loop := worker.NewReconcileLoop(reconciler, a.cfg.Worker.ReconcileInterval, a.logger.Named("reconciler"))

	stopPool := pool.Start(ctx)
	stopLoop := loop.Start(ctx)

	return func() {
		stopLoop()
		stopPool()
	}, nil
}

func (a *Application) probes() map[string]router.HealthProbe {
	probes := map[string]router.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if a.redis != nil {
		probes["queue"] = func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}
	}
	return probes
}

// newLogger builds the root logger; file output rotates through lumberjack
func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	var sinks []zapcore.WriteSyncer
	if cfg.Output == "stdout" || cfg.Output == "both" {
		sinks = append(sinks, zapcore.Lock(os.Stdout))
	}
	if cfg.Output == "file" || cfg.Output == "both" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}))
	}
	if len(sinks) == 0 {
		sinks = append(sinks, zapcore.Lock(os.Stdout))
	}

	opts := []zap.Option{}
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	return zap.New(core, opts...).Named("mailwright"), nil
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	if cfg.SlowQueryLog {
		gormCfg.Logger = gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig, logger *zap.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connection established", zap.Int("db", cfg.RedisDB))
	return rc, nil
}

// startCacheHealthMonitor periodically pings Redis so a lost queue connection
// shows up in the logs before jobs start piling up. The returned func stops it.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration, logger *zap.Logger) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					logger.Warn("Redis healthcheck failed", zap.Error(err))
				}
				c()
			}
		}
	}()
	return cancel
}
