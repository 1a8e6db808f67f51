// Package errors provides the typed error kinds raised while parsing and
// running pipe expressions.
//
// Every failure is an *AppError carrying a machine-readable ErrorCode, so
// callers can branch on the kind (unknown converter, bad argument, type
// mismatch, script limit...) with CodeOf or Is regardless of how many
// layers wrapped it. The HTTP status is only consumed by the server package.
package errors
