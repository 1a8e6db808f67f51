// Package script holds what the embedded-language providers share: the
// per-invocation Limits and the Guard that enforces them.
//
// Each provider owns one interpreter, created when the provider is built and
// released by Close. Calls into an interpreter are serialized. A call that
// runs past Limits.Timeout, allocates more than Limits.MaxMemory or nests
// deeper than Limits.MaxCallDepth fails with RESOURCE_LIMIT_EXCEEDED and the
// interpreter stays usable.
//
// The providers live in script/lua and script/js.
package script
