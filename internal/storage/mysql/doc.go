// Package mysql persists settlement records in MySQL as a durable copy of
// the in-memory ledger. It encapsulates schema migrations and the typed
// queries used to archive and inspect past settlements.
package mysql
