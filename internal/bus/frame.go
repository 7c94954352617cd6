package bus

import "time"

// MaxPayload is the FD-style payload ceiling. Classical frames carry 0-8
// bytes; the virtual bus accepts anything up to the FD limit.
const MaxPayload = 64

// Frame is one message on the bus: an arbitration identifier, a payload and
// the time it was taken off the bus. Frames are values; nothing mutates them
// after receive.
type Frame struct {
	ID        uint32
	Data      []byte
	Timestamp time.Time
}
