package bus

import "time"

// Transport is what the gateway needs from a bus endpoint. The virtual bus
// implements it; a real SocketCAN or tunnel adapter would slot in the same
// way.
type Transport interface {
	// Receive blocks up to timeout for the next frame. ok=false with a nil
	// error means no traffic arrived; a non-nil error means the transport
	// is gone and the caller should stop.
	Receive(timeout time.Duration) (Frame, bool, error)
	Send(Frame) error
	Shutdown()
}
