// Package bot is the event-processing shell around the governance engine.
//
// A Dispatcher handles one event to completion:
//
//	creation: detect -> get-or-create thread -> create record -> save -> reply
//	comment:  parse -> resolve record -> apply each command -> save -> reply
//
// Domain outcomes (bad commands, illegal transitions, incomplete records)
// become the reply text and are never returned as errors. Store and channel
// failures are returned to the caller, which must fail the run; the event
// is then treated as not yet processed.
package bot
