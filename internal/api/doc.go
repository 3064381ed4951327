// Package api exposes the REST surface of the agent economy: economy
// snapshots and ledger windows for polling frontends, task submission,
// and the scripted demo cycle.
package api
