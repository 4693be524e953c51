// ABOUTME: Package documentation for translate
// ABOUTME: Describes the translation backend client and its fail-open contract

// Package translate provides the translation backend used to convert
// message text into a receiver's preferred language.
//
// Client speaks the LibreTranslate-compatible HTTP API. Callers are
// expected to treat translation failure as non-fatal and fall back to
// the original text; Translate reports errors so callers can log and
// count them, but the relay never refuses a message because the
// backend was unreachable.
//
// Noop passes text through unchanged and is used when no backend is
// configured, and in tests.
package translate
