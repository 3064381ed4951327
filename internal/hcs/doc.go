// Package hcs synthesizes Hedera Consensus Service identifiers for the
// simulated economy: topic ids, the operator account, and transaction
// reference ids in the canonical account@seconds.nanos form. No real
// network is ever contacted; every identifier exists only so that ledger
// entries and feed messages look and correlate the way HCS artifacts would.
package hcs
