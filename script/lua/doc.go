// Package lua provides the Lua converter, backed by gopher-lua.
//
// The script is loaded once when the provider is built. `Lua fn arg...`
// calls the global function fn with the value and a table of the remaining
// arguments:
//
//	function initials(name, args)
//	  return string.sub(name, 1, 1) .. (args[1] or "")
//	end
//
// Collections arrive as 1-based tables, string-keyed maps as tables keyed by
// name, and other Go values as gopher-luar proxies. Tables returned from a
// function come back as pipe.Collection when they are sequences and as
// map[string]any otherwise; integral numbers come back as int64.
package lua
