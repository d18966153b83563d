package protocol

import "fmt"

// Frame delimiter bytes.
const (
	STX = 0x02
	ETX = 0x03
)

// Bit masks for the ID/status byte (Master → SCADA, byte 1).
const (
	MaskSlaveID = 0x1F // bits [7:3] after shift
	MaskDABOK   = 0x01 // bit 0 of the status bits
	MaskChannel = 0x03 // low bits carry the channel when ID=0

	shiftSlaveID = 3
)

// Bit masks for the command byte (SCADA → Master, byte 1).
const (
	MaskStart    = 0x01 // bit 0: 1 = start, 0 = stop
	MaskOpMode   = 0x06 // bits [2:1]: operation mode (v2.0 only)
	shiftOpMode  = 1
	maxOpModeRaw = 2
)

// Field scaling. All multi-byte fields are big-endian.
const (
	// CenterOffset is the raw value representing zero in the v2.0
	// unsigned center-offset current encodings.
	CenterOffset = 32768

	voltageScale        = 10.0  // system voltage: raw / 10
	slaveCurrentScale   = 100.0 // slave current: raw / 100
	commandCurrentScale = 10.0  // v2.0 command current: (raw-32768) / 10
	temperatureScale    = 0.5   // temperature: raw * 0.5
)

// masterFrameLen is the fixed Master → SCADA frame length for both
// protocol versions.
const masterFrameLen = 7

// commandLayout describes the version-dependent SCADA → Master frame.
// Keeping the differences in one table avoids version branches scattered
// through the codec.
type commandLayout struct {
	frameLen    int // total length including STX/ETX
	currentOff  int // offset of the current field
	currentLen  int // 1 (v1 signed int8) or 2 (v2 center-offset uint16)
	checksumOff int // offset of the checksum byte
}

var commandLayouts = map[Version]commandLayout{
	V1: {frameLen: 9, currentOff: 6, currentLen: 1, checksumOff: 7},
	V2: {frameLen: 10, currentOff: 6, currentLen: 2, checksumOff: 8},
}

// FrameLen returns the exact frame length for a direction/version pair.
// Every direction/version combination defines an exact length; there are
// no variable-length frames on this link.
func FrameLen(dir Direction, v Version) int {
	if dir == MasterToSCADA {
		return masterFrameLen
	}
	return commandLayouts[v].frameLen
}

// MaxFrameLen is the largest frame length any direction/version defines.
const MaxFrameLen = 10

// Direction identifies which end of the link authored a frame.
type Direction int

const (
	// MasterToSCADA frames carry system voltage and slave module data.
	MasterToSCADA Direction = iota
	// SCADAToMaster frames carry operator command frames.
	SCADAToMaster
)

func (d Direction) String() string {
	switch d {
	case MasterToSCADA:
		return "master-to-scada"
	case SCADAToMaster:
		return "scada-to-master"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}
