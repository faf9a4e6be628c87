// Package proc provides small cross-platform process helpers: liveness probes,
// termination signaling, and best-effort discovery of processes by command-line
// signature. Discovery is the fallback path for killing stale monitors whose
// pid records were lost; authoritative cleanup always goes through pid records.
package proc
