package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"basesignals/internal/api"
	"basesignals/internal/attest"
	"basesignals/internal/chain"
	"basesignals/internal/config"
	"basesignals/internal/dispatch"
	"basesignals/internal/logging"
	"basesignals/internal/scanner"
	signalengine "basesignals/internal/signal"
	"basesignals/internal/sink"
	"basesignals/internal/store"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (yaml or json)")
	flag.Parse()

	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.Load(config.ResolvePath(configPath))
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := logging.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := chain.NewClient(cfg.Chain.RPCURL, cfg.Chain.RequestTimeout.Std())

	var ckpt scanner.Checkpoint
	if cfg.Chain.CheckpointPath != "" {
		fc, err := scanner.NewFileCheckpoint(config.ResolvePath(cfg.Chain.CheckpointPath))
		if err != nil {
			logger.Error("open checkpoint", "err", err)
			os.Exit(1)
		}
		ckpt = fc
	}

	sc := scanner.New(client, scanner.DefaultClassifier(), ckpt, logging.Component(logger, "scanner"))

	engine, err := signalengine.NewEngine(config.ResolvePath(cfg.Signals.DefinitionsPath), logging.Component(logger, "signal"))
	if err != nil {
		logger.Error("construct signal engine", "err", err)
		os.Exit(1)
	}

	signalStore, err := store.NewStore(cfg.Storage)
	if err != nil {
		logger.Error("open signal store", "err", err)
		os.Exit(1)
	}
	if err := signalStore.Init(ctx); err != nil {
		logger.Error("init signal store", "err", err)
		os.Exit(1)
	}
	defer signalStore.Close()

	sinks := []sink.Sink{sink.NewStoreSink(signalStore)}
	if cfg.Sink.APIURL != "" {
		sinks = append(sinks, sink.NewAPISink(cfg.Sink.APIURL, cfg.Sink.Timeout.Std()))
	}
	if cfg.Kafka.Enabled {
		kafkaSink := sink.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
	}

	var attestor dispatch.Attestor
	if cfg.Attestation.Enabled {
		attestor = attest.New(client,
			cfg.Attestation.RegistryAddress,
			cfg.Attestation.FromAddress,
			cfg.Attestation.ConfirmTimeout.Std(),
			logging.Component(logger, "attest"))
		logger.Info("on-chain attestation enabled", "registry", cfg.Attestation.RegistryAddress)
	} else {
		logger.Info("on-chain attestation disabled")
	}

	if cfg.API.Enabled {
		api.Start(ctx, cfg.API.Addr, signalStore, logging.Component(logger, "api"))
	}

	if err := sc.Start(ctx, cfg.Chain.StartBlock); err != nil {
		logger.Error("start scanner", "err", err)
		os.Exit(1)
	}
	defer sc.Stop()

	d := dispatch.New(sc, engine, sinks, attestor, cfg.Dispatch.PollInterval.Std(), logging.Component(logger, "dispatch"))

	logger.Info("indexer running",
		"rpc_url", cfg.Chain.RPCURL,
		"poll_interval", cfg.Dispatch.PollInterval.String(),
		"cursor", sc.Cursor(),
	)
	d.Run(ctx)
	logger.Info("shutdown complete")
}
