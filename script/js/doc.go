// Package js provides the Js converter, backed by goja.
//
// The script is loaded once when the provider is built. `Js fn arg...` calls
// the global function fn with the value followed by the remaining arguments:
//
//	function slug(v, sep) { return v.toLowerCase().split(" ").join(sep || "-") }
//
// When a modules directory is configured, scripts can require() modules from
// it. console.log and friends write to the provider's logger.
package js
