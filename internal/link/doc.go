// Package link models the dual-channel SCADA↔Master topology: how many
// physical channels are active and how outgoing command frames are routed
// across them.
//
// The Coordinator holds non-owning references to both channel sessions and
// their transports. It performs routing only; each session keeps exclusive
// ownership of its own assembler, statistics and module registry, and the
// two ingestion paths stay fully independent of each other.
package link
