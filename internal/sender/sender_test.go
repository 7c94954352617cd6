package sender

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexKimmel/BusGate/internal/bus"
)

func drain(t *testing.T, rx *bus.Node) []bus.Frame {
	t.Helper()
	var frames []bus.Frame
	for {
		f, ok, err := rx.Receive(20 * time.Millisecond)
		require.NoError(t, err)
		if !ok {
			return frames
		}
		frames = append(frames, f)
	}
}

func TestPeriodicSendsUntilDuration(t *testing.T) {
	clk := clock.NewMock()
	b := bus.NewVirtual()
	rx := b.Attach()
	tx := b.Attach()

	s := &Periodic{
		ID:       0x200,
		Payload:  []byte{0x01, 0x02},
		Interval: 300 * time.Millisecond,
		Duration: 3 * time.Second,
		Clock:    clk,
		Logger:   zerolog.Nop(),
	}

	done := make(chan struct{})
	go func() {
		s.Run(context.Background(), tx)
		close(done)
	}()

	// step the mock clock past the configured duration
	time.Sleep(5 * time.Millisecond)
	for i := 0; i < 35; i++ {
		clk.Add(100 * time.Millisecond)
		time.Sleep(time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sender did not stop at its deadline")
	}

	frames := drain(t, rx)
	// ticks at 300ms..2700ms are guaranteed; the 3000ms tick races the
	// deadline timer
	require.GreaterOrEqual(t, len(frames), 9)
	require.LessOrEqual(t, len(frames), 10)
	for _, f := range frames {
		assert.Equal(t, uint32(0x200), f.ID)
		assert.Equal(t, []byte{0x01, 0x02}, f.Data)
	}
}

func TestPeriodicStopsOnCancel(t *testing.T) {
	clk := clock.NewMock()
	b := bus.NewVirtual()
	tx := b.Attach()

	s := &Periodic{
		ID:       0x001,
		Payload:  []byte{0xDE, 0xAD},
		Interval: 20 * time.Millisecond,
		Duration: time.Hour,
		Clock:    clk,
		Logger:   zerolog.Nop(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, tx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sender did not observe cancellation")
	}

	// Run shuts its transport down on the way out
	assert.ErrorIs(t, tx.Send(bus.Frame{ID: 0x001}), bus.ErrBusClosed)
}

func TestPeriodicStopsWhenBusDies(t *testing.T) {
	clk := clock.NewMock()
	b := bus.NewVirtual()
	tx := b.Attach()
	b.Close()

	s := &Periodic{
		ID:       0x001,
		Payload:  []byte{0xDE, 0xAD},
		Interval: 20 * time.Millisecond,
		Duration: time.Hour,
		Clock:    clk,
		Logger:   zerolog.Nop(),
	}

	done := make(chan struct{})
	go func() {
		s.Run(context.Background(), tx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	clk.Add(50 * time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sender did not stop after send failure")
	}
}
