// Package notify decides whether a host event becomes a DingTalk message,
// and what that message says.
//
// Events arrive from the host event stream and pass through a fixed gate
// sequence: per-kind enable toggle, session ancestry (idle/error only, child
// sessions are skipped unless configured otherwise), then quiet hours. An
// event that clears every gate is formatted into a markdown card and handed
// to the sender.
//
// # Failure policy
//
// The service never lets a notification failure affect the event loop: a
// session lookup error is treated as "root session" (fail open), a missing
// title falls back to a placeholder, and delivery errors are logged and
// dropped.
package notify
