package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AlexKimmel/BusGate/internal/admission"
	"github.com/AlexKimmel/BusGate/internal/bus"
	"github.com/AlexKimmel/BusGate/internal/config"
	"github.com/AlexKimmel/BusGate/internal/gateway"
	"github.com/AlexKimmel/BusGate/internal/obs"
	"github.com/AlexKimmel/BusGate/internal/payload"
	"github.com/AlexKimmel/BusGate/internal/policy"
	"github.com/AlexKimmel/BusGate/internal/sender"
)

func main() {
	cfgPath := flag.String("config", "./config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := obs.SetupLogger(cfg.Observability.LogLevel)

	table, validators, err := buildPolicy(cfg)
	if err != nil {
		log.Fatalf("build policy: %v", err)
	}
	engine := admission.NewEngine(table, validators, cfg.Gateway.Window())

	reg := prometheus.NewRegistry()
	metrics := obs.NewMetrics(reg)
	if cfg.Observability.MetricsAddr != "" {
		go func() {
			if err := obs.Serve(cfg.Observability.MetricsAddr, cfg.Observability.PrometheusPath, reg); err != nil {
				logger.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	// hostile segment in front of the gateway, protected segment behind it
	rear := bus.NewVirtual()
	front := bus.NewVirtual()
	gwRx := rear.Attach()
	gwTx := front.Attach()

	loop := gateway.NewLoop(engine, gwRx, gwTx, cfg.Gateway.RecvTimeout(), logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.Gateway.RunSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Gateway.RunSeconds)*time.Second)
		defer cancel()
	}

	legit := &sender.Periodic{
		ID:       cfg.Senders.Legit.ID,
		Payload:  payload.PackEngineData(2500, 90, 70),
		Interval: cfg.Senders.Legit.Interval(),
		Duration: cfg.Senders.Legit.Duration(),
		Logger:   logger.With().Str("role", "legit").Logger(),
	}
	flood := &sender.Periodic{
		ID:       cfg.Senders.Flood.ID,
		Payload:  []byte{0xDE, 0xAD, 0xBE, 0xEF},
		Interval: cfg.Senders.Flood.Interval(),
		Duration: cfg.Senders.Flood.Duration(),
		Logger:   logger.With().Str("role", "flood").Logger(),
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		legit.Run(ctx, rear.Attach())
	}()
	go func() {
		defer wg.Done()
		flood.Run(ctx, rear.Attach())
	}()

	// once both senders are done, close the hostile segment so the loop
	// drains and exits
	go func() {
		wg.Wait()
		rear.Close()
	}()

	if err := loop.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("gateway loop failed")
	}
	gwRx.Shutdown()
	gwTx.Shutdown()
	logger.Info().Msg("bye")
}

func buildPolicy(cfg *config.Root) (*policy.Table, *payload.Registry, error) {
	def := policy.Entry{
		MaxRate: cfg.Default.MaxRate,
		Label:   cfg.Default.Label,
	}
	entries := make([]policy.Entry, 0, len(cfg.Policies))
	validators := payload.NewRegistry()
	for _, p := range cfg.Policies {
		entries = append(entries, policy.Entry{
			ID:      p.ID,
			MaxRate: p.MaxRate,
			Label:   p.Label,
			Trusted: p.Trusted,
		})
		switch p.Schema {
		case "":
		case "engine_telemetry":
			validators.Register(p.ID, payload.EngineTelemetry{})
		default:
			return nil, nil, fmt.Errorf("policy 0x%X: unknown schema %q", p.ID, p.Schema)
		}
	}
	table, err := policy.NewTable(def, entries)
	if err != nil {
		return nil, nil, err
	}
	return table, validators, nil
}
