package version

import "testing"

func TestAlgorithmVersion(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "1.2.0"
	a := AlgorithmVersion()
	if a != "r"+ScoringRevision+"-1.2.0" {
		t.Errorf("AlgorithmVersion() = %q", a)
	}

	Version = "1.3.0"
	if AlgorithmVersion() == a {
		t.Error("a new release must change the algorithm version")
	}
}
