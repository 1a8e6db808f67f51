// Package component defines lifecycle-managed parts of a convpipe process.
//
// Script providers, telemetry exporters and the HTTP server are components:
// they are registered with a Registry, started in registration order,
// stopped in reverse order and asked for their health by /healthz.
//
// # Interfaces
//
//   - Component: Start/Stop/Health lifecycle
//   - Describable: one-line startup summary
//   - RouteProvider: HTTP routes for the startup summary
package component
