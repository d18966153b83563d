// Package transport connects a session to a physical serial port.
//
// SerialLink owns the port handle and implements the coordinator's
// Transport interface, so topology changes can open and close ports
// without knowing about the serial library. Reader drives the receive
// side: it pulls bytes off the port, feeds them to the channel's
// session, and hands the resulting events to a callback. When the port
// fails mid-stream the Reader closes it, waits, reopens and resets the
// session's assembler so a torn frame from before the fault is never
// spliced onto fresh bytes.
package transport
