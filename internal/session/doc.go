// Package session ties one physical channel's frame assembly, decoding,
// statistics and module registry together behind a single ingest API.
//
// A Session is logically single-writer: the channel's ingestion path feeds
// it bytes, while presentation code reads value-copy snapshots. A mutex
// mediates the two so a UI or HTTP handler can poll stats while the serial
// reader is mid-ingest. Sessions never touch their sibling channel; routing
// between channels is the link coordinator's job.
package session
