// Package membershipledger is the student-union/membership-ledger bounded
// context: per-club rosters, the join-request workflow, leadership seats, and
// budget bookkeeping.
//
// The ledger enforces state transitions and the budget arithmetic; who may
// decide a request is delegated to the identity side through the
// CapabilityChecker port. Every mutation either commits whole or leaves the
// club untouched, which is what the UpdateClub read-modify-write port exists
// for.
package membershipledger
