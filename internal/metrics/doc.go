// Package metrics exposes Prometheus counters and gauges for the serial
// link. Collectors are labeled by channel so a two-channel deployment can
// be graphed per channel. ObserveSnapshot pushes a session snapshot into
// the gauges; the counters are bumped as events arrive.
package metrics
