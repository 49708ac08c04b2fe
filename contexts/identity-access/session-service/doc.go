// Package sessionservice is the identity-access/session-service bounded
// context: account registration, password login, signed session tokens, and
// server-side revocation.
//
// The signed token carries only enough to locate the session record; whether
// a token is still good is always decided against that record. The service
// also answers the clubs-management capability question for the membership
// ledger.
package sessionservice
