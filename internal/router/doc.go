// Package router orchestrates the per-frame message protocol.
//
// For each inbound frame from an authenticated sender, the Router resolves
// the receiver, translates the text into the receiver's preferred language
// (failing open to the original text on translator errors), persists the
// message, and then attempts best-effort real-time delivery through the
// session registry.
//
// Ordering of those steps is load-bearing: persistence always completes
// before delivery is attempted, so a message can never be delivered without
// having been durably recorded. Delivery itself is fire-and-forget with no
// retry; offline receivers read the message later via the history endpoint.
package router
