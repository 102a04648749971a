package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"glossa/internal/domain/models"
)

func TestBuildInstructions(t *testing.T) {
	phases := DefaultPhases(10)
	got := BuildInstructions("Spanish", 10, phases)

	for _, want := range []string{
		"10-minute spoken interview in Spanish",
		"Open the session in English",
		"then switch to Spanish and stay in Spanish",
		"report_observation",
		"After every one of your turns",
		"1. [warmup]",
		"5. [closing]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("instructions missing %q", want)
		}
	}
}

func TestBuildInstructionsListsPhasesInOrder(t *testing.T) {
	phases := []PhaseSpec{
		{Name: models.PhaseWarmup, Goal: "say hi", Minutes: 1},
		{Name: models.PhaseAdvanced, Goal: "argue", Minutes: 4},
	}
	got := BuildInstructions("French", 5, phases)

	warmup := strings.Index(got, "1. [warmup]")
	advanced := strings.Index(got, "2. [advanced]")
	if warmup < 0 || advanced < 0 || warmup > advanced {
		t.Errorf("phases not listed in order:\n%s", got)
	}
}

func TestDefaultPhases(t *testing.T) {
	tests := []struct {
		durationMinutes int
		wantMiddle      int
	}{
		{10, 2},
		{20, 6},
		{3, 1},
		{0, 2}, // falls back to the 10-minute split
		{-5, 2},
	}

	for _, tt := range tests {
		phases := DefaultPhases(tt.durationMinutes)
		if len(phases) != 5 {
			t.Fatalf("DefaultPhases(%d) returned %d phases, want 5", tt.durationMinutes, len(phases))
		}

		wantNames := []string{
			models.PhaseWarmup, models.PhaseBasic, models.PhaseIntermediate,
			models.PhaseAdvanced, models.PhaseClosing,
		}
		for i, phase := range phases {
			if phase.Name != wantNames[i] {
				t.Errorf("DefaultPhases(%d)[%d].Name = %q, want %q", tt.durationMinutes, i, phase.Name, wantNames[i])
			}
		}

		if phases[1].Minutes != tt.wantMiddle {
			t.Errorf("DefaultPhases(%d) middle minutes = %d, want %d", tt.durationMinutes, phases[1].Minutes, tt.wantMiddle)
		}
	}
}

func TestLoadPhases(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("valid script", func(t *testing.T) {
		path := write("phases.yaml", `
- name: warmup
  goal: greet
  minutes: 1
- name: basic
  goal: everyday topics
  minutes: 4
`)
		phases, err := LoadPhases(path)
		if err != nil {
			t.Fatalf("LoadPhases: %v", err)
		}
		if len(phases) != 2 {
			t.Fatalf("got %d phases, want 2", len(phases))
		}
		if phases[1].Name != "basic" || phases[1].Minutes != 4 {
			t.Errorf("unexpected second phase: %+v", phases[1])
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadPhases(filepath.Join(dir, "absent.yaml")); err == nil {
			t.Error("expected error for a missing file")
		}
	})

	t.Run("empty script", func(t *testing.T) {
		path := write("empty.yaml", "[]\n")
		if _, err := LoadPhases(path); err == nil {
			t.Error("expected error for an empty script")
		}
	})

	t.Run("unnamed phase", func(t *testing.T) {
		path := write("unnamed.yaml", "- goal: greet\n  minutes: 1\n")
		if _, err := LoadPhases(path); err == nil {
			t.Error("expected error for a phase without a name")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := write("bad.yaml", "{not yaml: [")
		if _, err := LoadPhases(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})
}
