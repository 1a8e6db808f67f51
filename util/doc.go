// Package util provides small helpers shared by converters: argument
// unquoting and escape decoding, order-argument parsing, and null-aware
// value inspection.
package util
