// Package sync moves applications from the source recruiting platform into
// the destination applicant-tracking system.
//
// A run builds the set of eligible destination slots, reconciles the local
// ledger against the destination's cross-reference records, selects source
// applications not yet transferred, replays the previous run's queued
// failures and then transfers the new candidates. Failures the destination
// reports through its inline error convention are captured as
// domain.TransferError records and queued for the next run; anything else
// aborts the run.
//
// Components receive state as arguments and return results; only the
// Orchestrator reads or writes the persistent store.
package sync
