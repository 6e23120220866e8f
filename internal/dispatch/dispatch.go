package dispatch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"basesignals/internal/activity"
	"basesignals/internal/model"
	"basesignals/internal/sink"
)

type Poller interface {
	Poll(ctx context.Context) ([]model.NormalizedEvent, error)
}

type SignalGenerator interface {
	GenerateSignals(a *model.UserActivity) model.UserSignals
}

type Attestor interface {
	Attest(ctx context.Context, address string, sig model.SignalScore) error
}

// Dispatcher runs the poll-aggregate-score cycle on a fixed interval. One
// cycle at a time: a tick that fires while the previous cycle is still doing
// I/O simply waits its turn.
type Dispatcher struct {
	scanner  Poller
	engine   SignalGenerator
	sinks    []sink.Sink
	attestor Attestor // nil disables on-chain attestation
	interval time.Duration
	logger   *slog.Logger
}

func New(scanner Poller, engine SignalGenerator, sinks []sink.Sink, attestor Attestor, interval time.Duration, logger *slog.Logger) *Dispatcher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Dispatcher{
		scanner:  scanner,
		engine:   engine,
		sinks:    sinks,
		attestor: attestor,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is done. An in-flight cycle always finishes before
// Run returns; cancellation is only observed between cycles and at the I/O
// boundaries inside a cycle.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.RunCycle(ctx)
		}
	}
}

// RunCycle executes one poll-and-process cycle. Errors are contained here;
// a bad cycle must never take the loop down with it.
func (d *Dispatcher) RunCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil && d.logger != nil {
			d.logger.Error("cycle panic recovered", "panic", r)
		}
	}()

	events, err := d.scanner.Poll(ctx)
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("poll failed", "err", err)
		}
		return
	}
	if len(events) == 0 {
		return
	}
	if d.logger != nil {
		d.logger.Info("processed new events", "count", len(events))
	}

	byAddress := make(map[string][]model.NormalizedEvent)
	for _, ev := range events {
		addr := strings.ToLower(ev.Address)
		byAddress[addr] = append(byAddress[addr], ev)
	}

	for addr, addrEvents := range byAddress {
		act := activity.Build(addr, addrEvents)
		bundle := d.engine.GenerateSignals(act)
		if len(bundle.Signals) == 0 {
			continue
		}
		if d.logger != nil {
			d.logger.Info("signals generated",
				"address", addr,
				"count", len(bundle.Signals),
				"intent", bundle.PrimaryIntent,
			)
		}

		for _, s := range d.sinks {
			if err := s.Deliver(ctx, bundle); err != nil && d.logger != nil {
				d.logger.Warn("sink delivery failed", "sink", s.Name(), "address", addr, "err", err)
			}
		}

		if d.attestor != nil {
			for _, sig := range bundle.Signals {
				if err := d.attestor.Attest(ctx, addr, sig); err != nil && d.logger != nil {
					d.logger.Warn("attestation failed", "address", addr, "signal", sig.SignalType, "err", err)
				}
			}
		}
	}
}
