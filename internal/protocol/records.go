package protocol

import "fmt"

// RecordKind classifies a decoded frame.
type RecordKind int

const (
	KindSystemVoltage RecordKind = iota + 1
	KindSlaveData
	KindCommand
)

func (k RecordKind) String() string {
	switch k {
	case KindSystemVoltage:
		return "system-voltage"
	case KindSlaveData:
		return "slave-data"
	case KindCommand:
		return "command"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Record is a decoded frame with physical-unit values. Records are created
// per successful decode and handed to the caller; the codec retains no
// history.
type Record interface {
	Kind() RecordKind
	String() string
}

// SystemVoltage is a Master → SCADA frame with ID=0: the DC bus voltage
// for one channel.
type SystemVoltage struct {
	Channel uint8   // 0..3, from the low bits of the ID/status byte
	Volts   float64 // raw / 10
}

func (SystemVoltage) Kind() RecordKind { return KindSystemVoltage }

func (r SystemVoltage) String() string {
	return fmt.Sprintf("SystemVoltage{ch=%d, %.1fV}", r.Channel, r.Volts)
}

// SlaveData is a Master → SCADA frame with ID≠0: one slave power module's
// current, temperature and health bit.
type SlaveData struct {
	SlaveID uint8 // 1..31
	DABOK   bool
	Amps    float64 // v1: int16/100, v2: (raw-32768)/100
	TempC   float64 // raw * 0.5, 0.0..127.5
}

func (SlaveData) Kind() RecordKind { return KindSlaveData }

func (r SlaveData) String() string {
	return fmt.Sprintf("SlaveData{id=%d, dab_ok=%v, %.2fA, %.1f°C}",
		r.SlaveID, r.DABOK, r.Amps, r.TempC)
}

// OperationMode is the coordination mode carried in v2.0 command frames.
// v1.0 command frames have no mode bits.
type OperationMode int

const (
	ModeStop OperationMode = iota
	ModeIndependent
	ModeParallel
)

func (m OperationMode) String() string {
	switch m {
	case ModeStop:
		return "stop"
	case ModeIndependent:
		return "independent"
	case ModeParallel:
		return "parallel"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Command is a SCADA → Master command frame: operator setpoints for one
// channel's Master controller.
//
// MaxVoltage and MinVoltage are whole volts with no wire scaling (signed
// 16-bit). Current is amps: v1.0 encodes it as a signed 8-bit integer with
// no scaling, v2.0 as an unsigned 16-bit center-offset value with 0.1 A
// resolution.
type Command struct {
	Start      bool
	Mode       OperationMode // meaningful on v2.0 only
	MaxVoltage int
	MinVoltage int
	Current    float64
}

func (Command) Kind() RecordKind { return KindCommand }

func (r Command) String() string {
	return fmt.Sprintf("Command{start=%v, mode=%s, max=%dV, min=%dV, %.1fA}",
		r.Start, r.Mode, r.MaxVoltage, r.MinVoltage, r.Current)
}

// StopCommand returns the canonical stop frame contents: all setpoints
// zeroed, start cleared. This mirrors what the original operator console
// sends on Stop.
func StopCommand() Command {
	return Command{}
}
