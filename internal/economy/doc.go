// Package economy implements the simulated multi-agent task economy: the
// agent registry, the skill router, the result synthesizer, the append-only
// ledger with its cumulative counters, and the task processor that drives a
// submission through routing, synthesis, and atomic settlement. All consensus
// artifacts (timestamps, transaction references, sequence numbers) are
// synthesized locally; nothing here talks to a real network.
package economy
