package protocol

// Checksum computes the sum checksum over a payload byte range: the low
// 8 bits of the arithmetic sum.
//
// The range covered is always the bytes between STX and the checksum byte,
// exclusive of STX, the checksum byte itself and ETX. For Master → SCADA
// frames that is bytes 1..4; for SCADA → Master frames bytes 1..6 (v1.0)
// or 1..7 (v2.0).
func Checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return sum
}
