package version

import (
	"strings"
	"testing"
)

func TestLine(t *testing.T) {
	line := Line("lbcs")
	if !strings.HasPrefix(line, "lbcs "+Version) {
		t.Errorf("Line() = %q, want prefix %q", line, "lbcs "+Version)
	}
	if !strings.Contains(line, "commit: "+Commit) {
		t.Errorf("Line() = %q, missing commit", line)
	}
	if Version == "" || Commit == "" {
		t.Error("Version and Commit must be filled in")
	}
}
