package protocol

import "fmt"

// Version selects the protocol revision spoken on a link. The two ends must
// be configured identically; there is no negotiation on the wire.
type Version int

const (
	// V1 is protocol v1.0: 9-byte command frames with signed int16/int8
	// current fields.
	V1 Version = iota + 1
	// V2 is protocol v2.0: 10-byte command frames with unsigned
	// center-offset current fields.
	V2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	default:
		return fmt.Sprintf("version(%d)", int(v))
	}
}

// ParseVersion parses a configuration string ("v1", "v2", "1.0", "2.0")
// into a Version.
func ParseVersion(s string) (Version, error) {
	switch s {
	case "v1", "1", "1.0":
		return V1, nil
	case "v2", "2", "2.0":
		return V2, nil
	default:
		return 0, fmt.Errorf("unknown protocol version %q (want v1 or v2)", s)
	}
}

// Valid reports whether v is a defined protocol version.
func (v Version) Valid() bool {
	return v == V1 || v == V2
}
