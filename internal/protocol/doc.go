// Package protocol implements the SM1 SCADA↔Master serial link protocol.
//
// This package handles frame assembly, validation, decoding and encoding of
// the binary frames exchanged between the SCADA side and the Master power
// controller over an RS-232/485 byte stream. It is pure: no I/O, no logging,
// no retained state outside the per-channel Assembler buffer.
//
// # Wire Format
//
// Every frame is bounded by STX (0x02) and ETX (0x03) and carries a sum
// checksum over the payload bytes between STX and the checksum byte:
//
//	Master → SCADA (7 bytes, both protocol versions):
//	  STX, ID(5b)+status(3b), Value 2B BE, Extra 1B, Checksum, ETX
//	  ID=0 → system voltage (Extra is reserved 0x00)
//	  ID≠0 → slave module data (Extra is temperature, status bit0 = DAB_OK)
//
//	SCADA → Master (9 bytes in v1.0, 10 bytes in v2.0):
//	  STX, Command, MaxVoltage 2B BE, MinVoltage 2B BE,
//	  Current [v1: 1B signed | v2: 2B BE center-offset], Checksum, ETX
//
// Protocol v2.0 replaces the signed current fields of v1.0 with unsigned
// center-offset encodings: raw 32768 represents zero, and the signed physical
// value is the scaled deviation from the center.
//
// # Usage
//
//	asm := protocol.NewAssembler(protocol.MasterToSCADA, protocol.V2)
//	frames, _ := asm.Feed(chunk)
//	for _, f := range frames {
//	    rec, err := protocol.Decode(f, protocol.MasterToSCADA, protocol.V2)
//	    ...
//	}
//
// Decoding and encoding are stateless and safe for concurrent use. The
// Assembler keeps residual bytes between Feed calls and is owned by exactly
// one channel.
package protocol
