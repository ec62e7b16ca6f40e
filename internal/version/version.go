package version

// Build metadata injected via -ldflags at build time, e.g.
//
//	go build -ldflags "-X converty/internal/version.BuildNumber=42 -X converty/internal/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	// BuildNumber is a monotonically increasing string set by the build script.
	BuildNumber = "0"
	// GitCommit is the short commit hash if available; may be "unknown".
	GitCommit = "unknown"
)

// Name is the program name used in logs and --version output.
const Name = "converty"

// String returns a concise version string for logs/CLI.
func String() string {
	s := Name + " build " + BuildNumber
	if GitCommit != "unknown" && GitCommit != "" {
		s += " (" + GitCommit + ")"
	}
	return s
}
