package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/serviceops/fleet-autoscaler/api"
	"github.com/serviceops/fleet-autoscaler/internal/actuator"
	"github.com/serviceops/fleet-autoscaler/internal/events"
	"github.com/serviceops/fleet-autoscaler/internal/fleet"
	"github.com/serviceops/fleet-autoscaler/internal/logger"
	"github.com/serviceops/fleet-autoscaler/internal/metrics"
	"github.com/serviceops/fleet-autoscaler/internal/monitor"
	"github.com/serviceops/fleet-autoscaler/internal/notify"
	"github.com/serviceops/fleet-autoscaler/internal/optimizer"
	"github.com/serviceops/fleet-autoscaler/internal/policy"
	"github.com/serviceops/fleet-autoscaler/internal/predictor"
	"github.com/serviceops/fleet-autoscaler/internal/resilience"
	"github.com/serviceops/fleet-autoscaler/pkg/config"
	"github.com/serviceops/fleet-autoscaler/pkg/database"
	"github.com/serviceops/fleet-autoscaler/pkg/database/queries"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// @title Fleet Autoscaler API
// @version 1.0
// @description Control-loop autoscaler for service instance fleets
// @BasePath /

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		logger.Info("Database connection established")
	}

	if *migrate {
		if db == nil {
			return fmt.Errorf("migrations require the database to be enabled")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		logger.Info("Running database migrations")
		if err := database.NewMigrator(db).Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Migrations completed successfully")
		return nil
	}

	bus := events.NewBus(cfg.Events.BufferSize)
	publisher := events.NewPublisher(bus)

	var audit *events.AuditLogger
	var eventStore *queries.ScalingEventRepository
	if db != nil {
		eventStore = queries.NewScalingEventRepository(db.DB)
		audit = events.NewAuditLogger(eventStore, bus.SubscribeAll())
		audit.Start()
	}

	fleetMgr := fleet.NewManager(fleet.ManagerConfig{
		StartupDelay:  cfg.Health.StartupDelay,
		DrainDelay:    cfg.Health.DrainDelay,
		RecoveryDelay: cfg.Health.RecoveryDelay,
		Publisher:     publisher,
	})
	seedFleet(fleetMgr, cfg.Fleet)

	source := metrics.NewSimulatedSource(metrics.SimulatedSourceConfig{})
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		MaxFailures: cfg.Metrics.CircuitBreaker.MaxFailures,
		Timeout:     cfg.Metrics.CircuitBreaker.Timeout,
	})
	sampler := metrics.NewSampler(metrics.SamplerConfig{
		Source:    metrics.NewResilientSource(source, breaker),
		Retention: cfg.Metrics.Retention,
		Publisher: publisher,
		Context: map[string]string{
			"deployment": cfg.App.Name,
			"mode":       cfg.App.Mode,
		},
	})

	store := policy.NewStoreWithDefaults()
	evaluator := policy.NewEvaluator(store)

	notifier := notify.NewResilient(
		notify.NewLogNotifier(),
		resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{}),
	)

	act := actuator.New(actuator.Config{
		Fleet:     fleetMgr,
		Notifier:  notifier,
		Publisher: publisher,
		Template: actuator.ProvisionTemplate{
			Type:         models.InstanceTypeAPI,
			Region:       cfg.Fleet.Region,
			Zone:         cfg.Fleet.Zone,
			EndpointBase: cfg.Fleet.EndpointBase,
		},
	})

	healthChecker := fleet.NewHealthChecker(fleetMgr, fleet.HealthCheckerConfig{
		MaxInFlight: cfg.Health.MaxInFlight,
		Timeout:     cfg.Health.ProbeTimeout,
	})

	runner := predictor.NewRunner(predictor.RunnerConfig{
		History:      sampler.History(),
		Fleet:        fleetMgr,
		Scaler:       act,
		Publisher:    publisher,
		MinInstances: cfg.Fleet.MinInstances,
		MaxInstances: cfg.Fleet.MaxInstances,
	})
	if cfg.Predictor.Enabled {
		runner.RegisterModel(
			"seasonal-cpu", "seasonal_average",
			[]string{models.MetricCPU, models.MetricRPS},
			predictor.NewSeasonalForecaster(cfg.Predictor.TargetUtilization, fleetMgr.TotalCapacity),
		)
	}

	opt := optimizer.New(optimizer.Config{
		Fleet:            fleetMgr,
		CacheHitRatio:    source.CacheHitRatio,
		CompressionRatio: source.CompressionRatio,
	})

	mon := monitor.New(monitor.Config{
		Interval:  cfg.Monitor.Interval,
		Sampler:   sampler,
		Store:     store,
		Evaluator: evaluator,
		Actuator:  act,
		Fleet:     fleetMgr,
		Health:    healthChecker,
		Predictor: runner,
		Optimizer: opt,
		Publisher: publisher,
	})

	if err := mon.Start(); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}

	deps := api.Deps{
		Monitor:   mon,
		History:   sampler.History(),
		Predictor: runner,
		Events:    bus.SubscribeAll(),
	}
	if db != nil {
		deps.EventStore = eventStore
		deps.DB = db.DB
	}
	server := api.NewServer(cfg.API, cfg.WebSocket, cfg.App.Mode, deps)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownTimeout := cfg.App.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	mon.Stop()
	bus.Close()
	if audit != nil {
		audit.Stop()
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// seedFleet registers the configured baseline instances as healthy.
func seedFleet(mgr *fleet.Manager, cfg config.FleetConfig) {
	for _, seed := range cfg.Seed {
		count := seed.Count
		if count <= 0 {
			count = 1
		}
		region := seed.Region
		if region == "" {
			region = cfg.Region
		}
		zone := seed.Zone
		if zone == "" {
			zone = cfg.Zone
		}

		for i := 0; i < count; i++ {
			instance := models.NewInstance(models.InstanceType(seed.Type), region, zone, seed.Endpoint)
			instance.Status = models.InstanceHealthy
			if seed.Endpoint == "" && cfg.EndpointBase != "" {
				instance.Endpoint = cfg.EndpointBase + "/" + instance.ID
			}
			mgr.Add(instance)
		}
	}

	if mgr.Size() > 0 {
		logger.Infof("Fleet seeded with %d instances", mgr.Size())
	}
}
