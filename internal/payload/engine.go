package payload

import "encoding/binary"

// Engine telemetry layout: little-endian rpm uint16, coolant temperature as a
// signed byte, fuel level uint8. Four bytes total; trailing bytes are
// ignored.
const engineFrameLen = 4

const (
	maxRPM  = 8000
	minTemp = -40
	maxTemp = 150
	maxFuel = 100
)

// EngineTelemetry rejects engine frames whose decoded values fall outside
// physically plausible ranges. An undersized payload is invalid without
// decoding.
type EngineTelemetry struct{}

func (EngineTelemetry) Validate(_ uint32, data []byte) bool {
	if len(data) < engineFrameLen {
		return false
	}
	rpm := binary.LittleEndian.Uint16(data[0:2])
	temp := int(int8(data[2]))
	fuel := data[3]

	if rpm > maxRPM {
		return false
	}
	if temp < minTemp || temp > maxTemp {
		return false
	}
	if fuel > maxFuel {
		return false
	}
	return true
}

// PackEngineData builds a telemetry payload in the wire layout above. Used by
// the demo sender and tests.
func PackEngineData(rpm uint16, temp int8, fuel uint8) []byte {
	b := make([]byte, engineFrameLen)
	binary.LittleEndian.PutUint16(b[0:2], rpm)
	b[2] = byte(temp)
	b[3] = fuel
	return b
}
