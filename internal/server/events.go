package server

import (
	"time"

	"github.com/jwkim/sm1link/internal/protocol"
	"github.com/jwkim/sm1link/internal/session"
)

// wireEvent is the JSON shape of one link event on /ws.
type wireEvent struct {
	Kind    string `json:"kind"`
	Channel int    `json:"channel"`
	Record  any    `json:"record,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type wireSystemVoltage struct {
	Type  string  `json:"type"`
	Bus   uint8   `json:"bus"`
	Volts float64 `json:"volts"`
}

type wireSlaveData struct {
	Type    string  `json:"type"`
	SlaveID uint8   `json:"slave_id"`
	DABOK   bool    `json:"dab_ok"`
	Amps    float64 `json:"amps"`
	TempC   float64 `json:"temp_c"`
}

type wireCommand struct {
	Type       string  `json:"type"`
	Start      bool    `json:"start"`
	Mode       string  `json:"mode"`
	MaxVoltage int     `json:"max_voltage"`
	MinVoltage int     `json:"min_voltage"`
	Current    float64 `json:"current"`
}

// wireSnapshot is the JSON shape of one channel's state on /stats.
type wireSnapshot struct {
	Channel          int               `json:"channel"`
	FramesOK         uint64            `json:"frames_ok"`
	ChecksumFailures uint64            `json:"checksum_failures"`
	MalformedFrames  uint64            `json:"malformed_frames"`
	ErrorRate        float64           `json:"error_rate"`
	LastSeen         *time.Time        `json:"last_seen,omitempty"`
	ModuleIDs        []uint8           `json:"module_ids"`
	ModuleCurrents   map[uint8]float64 `json:"module_currents,omitempty"`
	TotalAmps        float64           `json:"total_amps"`
	Degraded         bool              `json:"degraded"`
}

func encodeEvent(ev session.Event) wireEvent {
	switch e := ev.(type) {
	case session.RecordEvent:
		return wireEvent{Kind: "record", Channel: e.Channel, Record: encodeRecord(e.Record)}
	case session.ChecksumFailure:
		return wireEvent{Kind: "checksum_failure", Channel: e.Channel, Detail: e.Detail}
	case session.MalformedFrame:
		return wireEvent{Kind: "malformed_frame", Channel: e.Channel, Detail: e.Reason}
	default:
		return wireEvent{Kind: "unknown", Detail: ev.String()}
	}
}

func encodeRecord(rec protocol.Record) any {
	switch r := rec.(type) {
	case protocol.SystemVoltage:
		return wireSystemVoltage{Type: "system_voltage", Bus: r.Channel, Volts: r.Volts}
	case protocol.SlaveData:
		return wireSlaveData{
			Type:    "slave_data",
			SlaveID: r.SlaveID,
			DABOK:   r.DABOK,
			Amps:    r.Amps,
			TempC:   r.TempC,
		}
	case protocol.Command:
		return wireCommand{
			Type:       "command",
			Start:      r.Start,
			Mode:       r.Mode.String(),
			MaxVoltage: r.MaxVoltage,
			MinVoltage: r.MinVoltage,
			Current:    r.Current,
		}
	default:
		return map[string]string{"type": "unknown", "detail": rec.String()}
	}
}

func encodeSnapshot(s session.Snapshot) wireSnapshot {
	ws := wireSnapshot{
		Channel:          s.Channel,
		FramesOK:         s.Stats.FramesOK,
		ChecksumFailures: s.Stats.ChecksumFailures,
		MalformedFrames:  s.Stats.MalformedFrames,
		ErrorRate:        s.Stats.ErrorRate(),
		ModuleIDs:        s.ModuleIDs,
		ModuleCurrents:   s.ModuleCurrents,
		TotalAmps:        s.TotalAmps,
		Degraded:         s.Degraded,
	}
	if !s.Stats.LastSeen.IsZero() {
		t := s.Stats.LastSeen
		ws.LastSeen = &t
	}
	return ws
}
