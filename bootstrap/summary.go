package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/convpipe/component"
)

// ProviderInfo describes an installed converter provider.
type ProviderInfo struct {
	Name  string
	Unary int
	NAry  int
}

// Summary collects what the process brought up and renders it once startup
// completes.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	providers       []ProviderInfo
	mapping         string
}

// NewSummary creates an empty summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackProvider records an installed provider and its converter counts.
func (s *Summary) TrackProvider(name string, unary, nary int) {
	s.providers = append(s.providers, ProviderInfo{Name: name, Unary: unary, NAry: nary})
}

// TrackMapping records the loaded mapping file and its rule count.
func (s *Summary) TrackMapping(path string, rules int) {
	s.mapping = fmt.Sprintf("%s (%d rules)", path, rules)
}

// Display writes the summary: components with their descriptions, providers,
// routes and live health.
func (s *Summary) Display(w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	var descriptions []component.Description
	var routes []component.Route
	if registry != nil {
		descriptions = registry.Describe()
		for _, c := range registry.All() {
			if rp, ok := c.(component.RouteProvider); ok {
				routes = append(routes, rp.Routes()...)
			}
		}
	}

	if len(descriptions) > 0 {
		fmt.Fprintf(w, "\nComponents\n")
		for i, d := range descriptions {
			details := d.Details
			if d.Port > 0 && !strings.Contains(details, fmt.Sprintf(":%d", d.Port)) {
				details = fmt.Sprintf("%s (:%d)", details, d.Port)
			}
			fmt.Fprintf(w, "   %s %s [%s] %s\n", treePrefix(i, len(descriptions)), d.Name, d.Type, details)
		}
	}

	if len(s.providers) > 0 {
		fmt.Fprintf(w, "\nProviders\n")
		for i, p := range s.providers {
			fmt.Fprintf(w, "   %s %s: %d unary, %d n-ary\n", treePrefix(i, len(s.providers)), p.Name, p.Unary, p.NAry)
		}
	}

	if s.mapping != "" {
		fmt.Fprintf(w, "\nMapping\n   └── %s\n", s.mapping)
	}

	if len(routes) > 0 {
		fmt.Fprintf(w, "\nRoutes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s -> %s\n", treePrefix(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	if registry != nil {
		results := registry.HealthAll(context.Background())
		if len(results) > 0 {
			fmt.Fprintf(w, "\nHealth\n")
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = " (" + h.Message + ")"
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(results)), healthMark(h.Status), h.Name, h.Status, msg)
			}
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthMark(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "[ok]"
	case component.StatusDegraded:
		return "[!!]"
	case component.StatusUnhealthy:
		return "[xx]"
	default:
		return "[??]"
	}
}
