// Package version holds build metadata injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// ScoringRevision changes whenever scoring can rank items differently.
const ScoringRevision = "2"

// AlgorithmVersion is the version mixed into result cache keys. Both a new release and a
// scoring change orphan previously cached rankings.
func AlgorithmVersion() string {
	return "r" + ScoringRevision + "-" + Version
}
