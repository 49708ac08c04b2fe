// Package electionengine implements the election lifecycle and vote-integrity
// core of the student-union portal.
//
// The module owns election state transitions (planned, ongoing, completed,
// cancelled), one-ballot-per-voter enforcement, ranked tallies, and the
// announce freeze, emitting lifecycle events through outbox-backed workers.
// Business rules stay in the application/domain layers and infrastructure
// concerns live behind ports and adapters.
package electionengine
