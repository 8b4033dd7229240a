// Package kernel holds the value objects shared by every aggregate of the order
// coordination core: identifiers (UUID) and delivery coordinates (Location).
//
// Values are immutable and safe to share between goroutines. Zero values are
// detectable through Validate so that aggregates never carry an unset identifier
// or an unset destination.
package kernel
