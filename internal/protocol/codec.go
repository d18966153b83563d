package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DecodeOption adjusts frame validation.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	skipChecksum bool
}

// WithoutChecksum disables checksum verification for one Decode call.
// The frame is still fully decoded; the fields of a corrupted frame are
// simply taken at face value.
func WithoutChecksum() DecodeOption {
	return func(c *decodeConfig) { c.skipChecksum = true }
}

// Decode validates and decodes a complete STX..ETX frame into a typed
// record with physical-unit values.
//
// Validation order: exact length, frame markers, checksum (unless
// disabled), then field extraction. All failures are classified by the
// sentinel errors in errors.go and are recoverable; the caller records
// the failure and resumes with the next frame.
func Decode(frame []byte, dir Direction, v Version, opts ...DecodeOption) (Record, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("decode: unknown protocol version %d", int(v))
	}

	var cfg decodeConfig
	for _, o := range opts {
		o(&cfg)
	}

	want := FrameLen(dir, v)
	if len(frame) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d for %s %s",
			ErrLengthMismatch, len(frame), want, dir, v)
	}
	if frame[0] != STX {
		return nil, fmt.Errorf("%w: first byte 0x%02X, want STX", ErrFrameMarker, frame[0])
	}
	if frame[want-1] != ETX {
		return nil, fmt.Errorf("%w: last byte 0x%02X, want ETX", ErrFrameMarker, frame[want-1])
	}

	ckOff := want - 2
	if !cfg.skipChecksum {
		if got := Checksum(frame[1:ckOff]); got != frame[ckOff] {
			return nil, fmt.Errorf("%w: computed 0x%02X, frame carries 0x%02X",
				ErrChecksum, got, frame[ckOff])
		}
	}

	if dir == MasterToSCADA {
		return decodeMaster(frame, v), nil
	}
	return decodeCommand(frame, v)
}

// decodeMaster extracts a system-voltage or slave-data record. The frame
// kind is classified by the ID bits: ID=0 is the system voltage, anything
// else a slave module report.
func decodeMaster(frame []byte, v Version) Record {
	status := frame[1]
	id := (status >> shiftSlaveID) & MaskSlaveID
	raw := binary.BigEndian.Uint16(frame[2:4])

	if id == 0 {
		volts := float64(raw) / voltageScale
		if v == V1 {
			volts = float64(int16(raw)) / voltageScale
		}
		return SystemVoltage{
			Channel: status & MaskChannel,
			Volts:   volts,
		}
	}

	amps := (float64(raw) - CenterOffset) / slaveCurrentScale
	if v == V1 {
		amps = float64(int16(raw)) / slaveCurrentScale
	}
	return SlaveData{
		SlaveID: id,
		DABOK:   status&MaskDABOK != 0,
		Amps:    amps,
		TempC:   float64(frame[4]) * temperatureScale,
	}
}

func decodeCommand(frame []byte, v Version) (Record, error) {
	lay := commandLayouts[v]

	cmd := Command{
		Start:      frame[1]&MaskStart != 0,
		MaxVoltage: int(int16(binary.BigEndian.Uint16(frame[2:4]))),
		MinVoltage: int(int16(binary.BigEndian.Uint16(frame[4:6]))),
	}

	// v1.0 commands carry only the start/stop bit; Mode stays ModeStop.
	if v == V2 {
		modeRaw := (frame[1] & MaskOpMode) >> shiftOpMode
		if modeRaw > maxOpModeRaw {
			return nil, fmt.Errorf("command byte 0x%02X: undefined operation mode bits", frame[1])
		}
		cmd.Mode = OperationMode(modeRaw)
	}

	if lay.currentLen == 1 {
		cmd.Current = float64(int8(frame[lay.currentOff]))
	} else {
		raw := binary.BigEndian.Uint16(frame[lay.currentOff : lay.currentOff+2])
		cmd.Current = (float64(raw) - CenterOffset) / commandCurrentScale
	}
	return cmd, nil
}

// Encode builds the wire bytes for a SCADA → Master command frame,
// including checksum and STX/ETX markers.
//
// Values outside the representable scaled range fail with ErrRange;
// encoding never clamps or wraps.
func Encode(cmd Command, v Version) ([]byte, error) {
	lay, ok := commandLayouts[v]
	if !ok {
		return nil, fmt.Errorf("encode: unknown protocol version %d", int(v))
	}
	if cmd.MaxVoltage < math.MinInt16 || cmd.MaxVoltage > math.MaxInt16 {
		return nil, fmt.Errorf("%w: max voltage %d V exceeds signed 16-bit field",
			ErrRange, cmd.MaxVoltage)
	}
	if cmd.MinVoltage < math.MinInt16 || cmd.MinVoltage > math.MaxInt16 {
		return nil, fmt.Errorf("%w: min voltage %d V exceeds signed 16-bit field",
			ErrRange, cmd.MinVoltage)
	}

	frame := make([]byte, lay.frameLen)
	frame[0] = STX

	var cb byte
	if cmd.Start {
		cb |= MaskStart
	}
	switch v {
	case V1:
		// No mode bits on the wire. Refusing a non-stop mode beats
		// silently dropping the operator's intent.
		if cmd.Mode != ModeStop {
			return nil, fmt.Errorf("%w: operation mode %s has no v1.0 encoding",
				ErrRange, cmd.Mode)
		}
	case V2:
		if cmd.Mode < ModeStop || cmd.Mode > ModeParallel {
			return nil, fmt.Errorf("%w: operation mode %d undefined", ErrRange, int(cmd.Mode))
		}
		cb |= byte(cmd.Mode) << shiftOpMode
	}
	frame[1] = cb

	binary.BigEndian.PutUint16(frame[2:4], uint16(int16(cmd.MaxVoltage)))
	binary.BigEndian.PutUint16(frame[4:6], uint16(int16(cmd.MinVoltage)))

	if lay.currentLen == 1 {
		if cmd.Current != math.Trunc(cmd.Current) {
			return nil, fmt.Errorf("%w: current %.2f A not a whole amp (v1.0 field is int8)",
				ErrRange, cmd.Current)
		}
		if cmd.Current < math.MinInt8 || cmd.Current > math.MaxInt8 {
			return nil, fmt.Errorf("%w: current %.0f A exceeds signed 8-bit field",
				ErrRange, cmd.Current)
		}
		frame[lay.currentOff] = byte(int8(cmd.Current))
	} else {
		raw := CenterOffset + math.Round(cmd.Current*commandCurrentScale)
		if raw < 0 || raw > math.MaxUint16 {
			return nil, fmt.Errorf("%w: current %.1f A exceeds center-offset 16-bit field",
				ErrRange, cmd.Current)
		}
		binary.BigEndian.PutUint16(frame[lay.currentOff:lay.currentOff+2], uint16(raw))
	}

	frame[lay.checksumOff] = Checksum(frame[1:lay.checksumOff])
	frame[lay.frameLen-1] = ETX
	return frame, nil
}
