package buildinfo

import (
	"strings"
	"testing"
)

func TestGenerator(t *testing.T) {
	v, c := Version, Commit
	t.Cleanup(func() { Version, Commit = v, c })

	Version, Commit = "v1.2.0", "3f2a9c1d0e"
	if got, want := Generator(), "mctbnc v1.2.0 (3f2a9c1)"; got != want {
		t.Errorf("Generator() = %q, want %q", got, want)
	}

	Commit = "none"
	if got, want := Generator(), "mctbnc v1.2.0 (none)"; got != want {
		t.Errorf("Generator() = %q, want %q", got, want)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.Contains(Template(), "{{.Name}} version "+Version) {
		t.Errorf("Template() = %q, missing name placeholder", Template())
	}
	if !strings.Contains(String(), "commit: "+Commit) {
		t.Errorf("String() = %q, missing commit", String())
	}
}
