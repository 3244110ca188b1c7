// Package harness runs scripted ADR conversations end to end.
//
// A scenario replays issues and comments through the real dispatcher,
// backed by an in-memory SQLite store and a recording channel, then checks
// the replies and the final records.
//
// # Scenario Format
//
//	name: lifecycle
//	description: "Fill, propose and approve one record"
//	run_token: run-001          # optional, fixed run id for every step
//	first_thread: 100           # optional, number of the first new thread
//	keyword: adr                # optional command keyword
//	threads:                    # optional, threads that already exist
//	  - number: 77
//	    title: "ADR – Issue #42 – Pick a queue"
//	records:                    # optional, records that already exist
//	  - id: 12
//	    title: Use RabbitMQ
//	    status: APPROVED
//	    sections: { context: "..." }
//	steps:
//	  - issue: { number: 42, title: "Pick a queue", body: "...", author: alice }
//	    expect: { reply: "ADR-42 created and ready to be filled." }
//	  - comment: { thread: 100, author: bob, body: "/adr propose" }
//	    expect:
//	      reply_contains: ["cannot be proposed"]
//	      applied: 0
//	final:
//	  - id: 42
//	    status: DRAFT
//	    sections: { context: "..." }
//	    history: [create, fill context]
//
// # Deterministic Testing
//
// Every run uses a step clock starting at testutil.Epoch, a fixed run
// token and a fresh database, so transcripts can be compared against
// golden files byte for byte.
package harness
