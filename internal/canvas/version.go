package canvas

// Version information set by the release pipeline
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Version returns the current version of flowcanvas
func Version() string {
	return version
}

// BuildInfo returns detailed build information
func BuildInfo() string {
	return "Version: " + version + "\nCommit: " + commit + "\nBuild Date: " + date
}
