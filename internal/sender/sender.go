// Package sender provides the demo traffic sources: a well-behaved periodic
// ECU and a flooding attacker sharing the same bus.
package sender

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/AlexKimmel/BusGate/internal/bus"
)

// Periodic sends the same payload on one identifier at a fixed interval until
// its duration elapses or ctx is cancelled. With a short interval it doubles
// as the flood attacker; the identifier and pacing are the whole difference
// between legitimate and hostile traffic here.
type Periodic struct {
	ID       uint32
	Payload  []byte
	Interval time.Duration
	Duration time.Duration
	Clock    clock.Clock
	Logger   zerolog.Logger
}

// Run sends until the configured duration has elapsed, then shuts the
// transport down. Send failures stop the sender; the bus is gone.
func (s *Periodic) Run(ctx context.Context, tx bus.Transport) {
	clk := s.Clock
	if clk == nil {
		clk = clock.New()
	}
	defer tx.Shutdown()

	ticker := clk.Ticker(s.Interval)
	defer ticker.Stop()
	deadline := clk.Timer(s.Duration)
	defer deadline.Stop()

	sent := 0
	for {
		select {
		case <-ctx.Done():
			s.Logger.Debug().Uint32("id", s.ID).Int("sent", sent).Msg("sender cancelled")
			return
		case <-deadline.C:
			s.Logger.Info().Uint32("id", s.ID).Int("sent", sent).Msg("sender done")
			return
		case <-ticker.C:
			if err := tx.Send(bus.Frame{ID: s.ID, Data: s.Payload}); err != nil {
				s.Logger.Warn().Err(err).Uint32("id", s.ID).Msg("send failed, stopping")
				return
			}
			sent++
		}
	}
}
