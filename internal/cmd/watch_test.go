package cmd

import (
	"strings"
	"testing"
)

func TestRunWatch_UnknownArtifact(t *testing.T) {
	err := runWatch(watchCmd, []string{"bogus"})
	if err == nil {
		t.Fatal("runWatch() should reject an unknown artifact name")
	}
	if !strings.Contains(err.Error(), `unknown artifact "bogus"`) {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), "dockerfile") {
		t.Errorf("error should list the available artifacts: %v", err)
	}
}
