// Package server exposes a converter library over HTTP.
//
// The server is a Gin engine behind an h2c handler, so HTTP/1.1 and
// cleartext HTTP/2 clients share one port. Middleware runs at the handler
// level in this order: recovery, request id, tracing, request logging and
// body size limit.
//
// # Endpoints
//
//   - POST /v1/convert: run a pipe against {value} or {values}
//   - POST /v1/map: apply the loaded mapping to {record}
//   - GET /v1/converters: list both converter tables
//   - GET /healthz: aggregated component health
//   - GET /livez: liveness probe
//   - GET /version: build information
//
// Errors are written as {"error": {code, message, details}} with the HTTP
// status carried by the AppError.
package server
