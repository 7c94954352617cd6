// Package admission decides, frame by frame, whether traffic crosses the
// gateway. It combines the per-identifier rate window, the policy table and
// the payload checks into one evaluation.
package admission

import (
	"time"

	"github.com/AlexKimmel/BusGate/internal/bus"
	"github.com/AlexKimmel/BusGate/internal/payload"
	"github.com/AlexKimmel/BusGate/internal/policy"
	"github.com/AlexKimmel/BusGate/internal/ratelimit"
)

// Outcome classifies a single admission decision.
type Outcome int

const (
	Forwarded Outcome = iota
	BlockedRateLimit
	BlockedSemanticCheck
)

func (o Outcome) String() string {
	switch o {
	case Forwarded:
		return "forwarded"
	case BlockedRateLimit:
		return "blocked_rate_limit"
	case BlockedSemanticCheck:
		return "blocked_semantic_check"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating one frame: the outcome, the arrival
// count the rate judgement saw, and the policy entry that was applied.
type Decision struct {
	Outcome      Outcome
	ObservedRate int
	Policy       policy.Entry
}

// Engine owns the mutable rate-window state and the read-only policy table
// and validator registry. Evaluate must be called from a single goroutine;
// see ratelimit.WindowTracker.
type Engine struct {
	table      *policy.Table
	tracker    *ratelimit.WindowTracker
	validators *payload.Registry
	window     time.Duration
}

// DefaultWindow matches the fixed 1-second window the rate thresholds are
// expressed against.
const DefaultWindow = time.Second

func NewEngine(table *policy.Table, validators *payload.Registry, window time.Duration) *Engine {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Engine{
		table:      table,
		tracker:    ratelimit.NewWindowTracker(),
		validators: validators,
		window:     window,
	}
}

// Evaluate records the frame's arrival and decides its fate. Rate limiting
// runs first and short-circuits: a flood of well-formed payloads is blocked
// before any decode work happens. Semantic validation only applies to trusted
// identifiers with a registered validator; everything else that is under its
// rate limit is forwarded.
func (e *Engine) Evaluate(f bus.Frame) Decision {
	ent := e.table.Lookup(f.ID)
	rate := e.tracker.RecordAndCount(f.ID, f.Timestamp, e.window)

	d := Decision{Outcome: Forwarded, ObservedRate: rate, Policy: ent}

	if rate > ent.MaxRate {
		d.Outcome = BlockedRateLimit
		return d
	}
	if ent.Trusted {
		if v, ok := e.validators.Lookup(f.ID); ok && !v.Validate(f.ID, f.Data) {
			d.Outcome = BlockedSemanticCheck
		}
	}
	return d
}
