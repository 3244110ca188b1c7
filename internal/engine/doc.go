// Package engine implements ADR governance: the lifecycle state machine,
// the governance service that applies commands to records, and the
// supersession manager that links two records.
//
// The engine is pure. It never performs I/O, never blocks and never logs;
// every operation takes records by value and returns updated copies, so a
// failed command leaves the caller's record untouched. Persisting the
// result is the caller's job, and must happen before success is reported.
//
// # Lifecycle
//
//	INIT ──fill/append──▶ DRAFT ⇄ READY ──propose──▶ PROPOSED
//	PROPOSED ──approve──▶ APPROVED ──supersede──▶ SUPERSEDED
//	PROPOSED ──refuse───▶ REFUSED
//
// DRAFT and READY are both editable; READY means every required section
// has content. All allowed (status, command) pairs live in one table in
// fsm.go.
package engine
