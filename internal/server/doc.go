// Package server exposes the link's state over HTTP.
//
// Endpoints:
//
//	/ws      WebSocket stream of link events as JSON, one event per
//	         text message. Slow or dead clients are dropped rather
//	         than allowed to stall the stream.
//	/stats   Current per-channel snapshots as JSON.
//	/metrics Prometheus collectors.
//	/health  Liveness probe.
//
// The server is read-only: commands are issued through the CLI, not
// over HTTP. Publish feeds events in from the serial readers; the hub
// fans them out to every connected WebSocket client.
package server
