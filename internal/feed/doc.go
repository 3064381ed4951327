// Package feed pushes newly recorded consensus messages to external
// subscribers. Delivery is best effort: the in-memory ledger stays the
// source of truth and a failed push never blocks settlement.
package feed
