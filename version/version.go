package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
	GoVersion = ""
)

// runtimeModules are the interpreter and evaluator modules whose versions are
// reported alongside the build.
var runtimeModules = map[string]string{
	"github.com/yuin/gopher-lua": "lua",
	"github.com/dop251/goja":     "js",
	"github.com/expr-lang/expr":  "expr",
}

// Info describes the running binary.
type Info struct {
	Version   string            `json:"version"`
	GitCommit string            `json:"git_commit,omitempty"`
	GitBranch string            `json:"git_branch,omitempty"`
	BuildTime string            `json:"build_time"`
	GoVersion string            `json:"go_version"`
	BuildDate time.Time         `json:"build_date"`
	IsRelease bool              `json:"is_release"`
	IsDirty   bool              `json:"is_dirty"`
	Runtimes  map[string]string `json:"runtimes,omitempty"`
}

// GetVersionInfo returns the build information, filling unset link-time
// values from the embedded build info.
func GetVersionInfo() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}
	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.applyBuildInfo(bi)
	}

	if info.BuildDate.IsZero() {
		info.BuildDate = time.Now().UTC()
		info.BuildTime = info.BuildDate.Format(time.RFC3339)
	}
	return info
}

func (info *Info) applyBuildInfo(bi *debug.BuildInfo) {
	if info.GoVersion == "" {
		info.GoVersion = bi.GoVersion
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = shortCommit(s.Value)
			}
		case "vcs.modified":
			info.IsDirty = s.Value == "true"
		case "vcs.time":
			if BuildTime == "" {
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					info.BuildDate = t
					info.BuildTime = s.Value
				}
			}
		}
	}
	for _, dep := range bi.Deps {
		if name, ok := runtimeModules[dep.Path]; ok {
			if info.Runtimes == nil {
				info.Runtimes = make(map[string]string, len(runtimeModules))
			}
			info.Runtimes[name] = dep.Version
		}
	}
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// GetShortVersion returns version-commit, with -dirty for modified trees.
func GetShortVersion() string {
	info := GetVersionInfo()
	if info.GitCommit == "" {
		return info.Version
	}
	if info.IsDirty {
		return fmt.Sprintf("%s-%s-dirty", info.Version, info.GitCommit)
	}
	return fmt.Sprintf("%s-%s", info.Version, info.GitCommit)
}

// GetFullVersion returns the short version plus the branch and build date.
func GetFullVersion() string {
	info := GetVersionInfo()
	parts := []string{info.Version}
	if info.GitCommit != "" {
		parts = append(parts, info.GitCommit)
	}
	if info.GitBranch != "" && info.GitBranch != "main" && info.GitBranch != "master" {
		parts = append(parts, info.GitBranch)
	}
	if info.IsDirty {
		parts = append(parts, "dirty")
	}
	v := strings.Join(parts, "-")
	if !info.BuildDate.IsZero() {
		v += fmt.Sprintf(" (built %s)", info.BuildDate.Format("2006-01-02T15:04:05Z"))
	}
	return v
}

// String renders the info as the multi-line block printed by the CLI.
func (info *Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "convpipe %s\n", info.Version)
	if info.GitCommit != "" {
		fmt.Fprintf(&b, "  commit:  %s\n", info.GitCommit)
	}
	fmt.Fprintf(&b, "  built:   %s\n", info.BuildTime)
	fmt.Fprintf(&b, "  go:      %s\n", info.GoVersion)
	for _, name := range []string{"lua", "js", "expr"} {
		if v, ok := info.Runtimes[name]; ok {
			fmt.Fprintf(&b, "  %-8s %s\n", name+":", v)
		}
	}
	return b.String()
}
