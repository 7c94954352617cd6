// Package gateway drives the admission engine over a live frame stream: it
// drains one bus segment, evaluates each frame, and re-emits the survivors on
// the forward segment.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlexKimmel/BusGate/internal/admission"
	"github.com/AlexKimmel/BusGate/internal/bus"
	"github.com/AlexKimmel/BusGate/internal/obs"
)

// Stats tallies decisions over one Run.
type Stats struct {
	Forwarded        int
	BlockedRate      int
	BlockedSemantics int
	TransportErrors  int
}

type Loop struct {
	engine      *admission.Engine
	rx          bus.Transport
	next        bus.Transport // forward hop; nil means decide-and-log only
	recvTimeout time.Duration
	logger      zerolog.Logger
	metrics     *obs.Metrics
	stats       Stats
}

func NewLoop(engine *admission.Engine, rx, next bus.Transport, recvTimeout time.Duration, logger zerolog.Logger, metrics *obs.Metrics) *Loop {
	if recvTimeout <= 0 {
		recvTimeout = time.Second
	}
	return &Loop{
		engine:      engine,
		rx:          rx,
		next:        next,
		recvTimeout: recvTimeout,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run drains the receive side until ctx is cancelled or the transport shuts
// down. A failed receive is logged and the loop keeps going; only transport
// closure ends it. The receive timeout bounds how long a quiet bus can delay
// the stop check.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info().Dur("recv_timeout", l.recvTimeout).Msg("gateway listening")

	for {
		select {
		case <-ctx.Done():
			l.logSummary()
			return nil
		default:
		}

		f, ok, err := l.rx.Receive(l.recvTimeout)
		if err != nil {
			if errors.Is(err, bus.ErrBusClosed) {
				l.logSummary()
				return nil
			}
			l.stats.TransportErrors++
			l.metrics.TransportErrors.Inc()
			l.logger.Warn().Err(err).Msg("receive failed")
			continue
		}
		if !ok {
			continue
		}

		l.handle(f)
	}
}

func (l *Loop) handle(f bus.Frame) {
	d := l.engine.Evaluate(f)

	outcome := d.Outcome.String()
	l.metrics.FramesTotal.WithLabelValues(d.Policy.Label, outcome).Inc()
	l.metrics.ObservedRate.WithLabelValues(d.Policy.Label).Observe(float64(d.ObservedRate))

	ev := l.logger.Info().
		Uint32("id", f.ID).
		Str("label", d.Policy.Label).
		Str("outcome", outcome).
		Int("rate", d.ObservedRate).
		Int("limit", d.Policy.MaxRate)

	switch d.Outcome {
	case admission.Forwarded:
		l.stats.Forwarded++
		ev.Msg("frame forwarded")
		if l.next != nil {
			if err := l.next.Send(f); err != nil {
				l.stats.TransportErrors++
				l.metrics.TransportErrors.Inc()
				l.logger.Warn().Err(err).Uint32("id", f.ID).Msg("forward failed")
			}
		}
	case admission.BlockedRateLimit:
		l.stats.BlockedRate++
		l.metrics.BlockedTotal.WithLabelValues(d.Policy.Label, "rate_limit").Inc()
		ev.Msg("frame blocked, rate limit exceeded")
	case admission.BlockedSemanticCheck:
		l.stats.BlockedSemantics++
		l.metrics.BlockedTotal.WithLabelValues(d.Policy.Label, "semantic_check").Inc()
		ev.Msg("frame blocked, payload implausible")
	}
}

// Stats reports the tallies from the last Run. Read it only after Run has
// returned.
func (l *Loop) Stats() Stats { return l.stats }

func (l *Loop) logSummary() {
	l.logger.Info().
		Int("forwarded", l.stats.Forwarded).
		Int("blocked_rate", l.stats.BlockedRate).
		Int("blocked_semantics", l.stats.BlockedSemantics).
		Int("transport_errors", l.stats.TransportErrors).
		Msg("gateway stopped")
}
