package bus

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

var (
	// ErrBusClosed is returned once a node has been shut down or the bus
	// torn down; the gateway loop treats it as a permanent stop signal.
	ErrBusClosed = errors.New("bus: closed")

	// ErrPayloadTooLarge is a send-side failure for frames over MaxPayload.
	ErrPayloadTooLarge = errors.New("bus: payload exceeds FD limit")
)

// Virtual is an in-process broadcast bus: every frame sent by one attached
// node is delivered to every other attached node, in send order. It stands in
// for a real CAN segment in tests and the demo; the gateway only ever talks
// to it through Node.
type Virtual struct {
	mu     sync.Mutex
	clk    clock.Clock
	nodes  []*Node
	closed bool
}

// Node is one endpoint on a Virtual bus. Receive stamps frames with the
// arrival time from the bus clock.
type Node struct {
	bus      *Virtual
	in       chan Frame
	detached bool
}

func NewVirtual() *Virtual {
	return NewVirtualWithClock(clock.New())
}

// NewVirtualWithClock lets tests drive receive timeouts and arrival stamps
// from a mock clock.
func NewVirtualWithClock(clk clock.Clock) *Virtual {
	return &Virtual{clk: clk}
}

// Attach adds a new node to the bus. Frames sent before a node attached are
// not replayed to it.
func (b *Virtual) Attach() *Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := &Node{bus: b, in: make(chan Frame, 256)}
	b.nodes = append(b.nodes, n)
	return n
}

// Close tears the whole bus down; all nodes see ErrBusClosed afterwards.
func (b *Virtual) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Send broadcasts f to every other attached node. Delivery is best effort: a
// node that is not draining its queue loses frames, the same way a saturated
// controller drops them.
func (n *Node) Send(f Frame) error {
	if len(f.Data) > MaxPayload {
		return ErrPayloadTooLarge
	}
	b := n.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || n.detached {
		return ErrBusClosed
	}
	for _, peer := range b.nodes {
		if peer == n || peer.detached {
			continue
		}
		select {
		case peer.in <- f:
		default: // rx queue overrun
		}
	}
	return nil
}

// Receive waits up to timeout for the next frame addressed to this node.
// ok=false means the timeout elapsed with no traffic; the error is non-nil
// only when the node or bus has been shut down.
func (n *Node) Receive(timeout time.Duration) (Frame, bool, error) {
	b := n.bus
	b.mu.Lock()
	detached := n.detached
	closed := b.closed
	b.mu.Unlock()
	if detached {
		return Frame{}, false, ErrBusClosed
	}

	// drain frames queued before closure, then report it
	select {
	case f := <-n.in:
		f.Timestamp = b.clk.Now()
		return f, true, nil
	default:
	}
	if closed {
		return Frame{}, false, ErrBusClosed
	}

	t := b.clk.Timer(timeout)
	defer t.Stop()
	select {
	case f := <-n.in:
		f.Timestamp = b.clk.Now()
		return f, true, nil
	case <-t.C:
		return Frame{}, false, nil
	}
}

// Shutdown detaches the node; pending frames are discarded.
func (n *Node) Shutdown() {
	b := n.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	n.detached = true
}
