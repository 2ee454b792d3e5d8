package color

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func restore(t *testing.T) {
	origEnabled := state.enabled.Load()
	origOverridden := state.overridden.Load()
	t.Cleanup(func() {
		state.enabled.Store(origEnabled)
		state.overridden.Store(origOverridden)
	})
}

func TestEnableDisable(t *testing.T) {
	restore(t)

	Enable()
	if !Enabled() {
		t.Error("expected colors to be enabled after Enable()")
	}

	Disable()
	if Enabled() {
		t.Error("expected colors to be disabled after Disable()")
	}
}

func TestColorFuncs(t *testing.T) {
	restore(t)
	Enable()

	tests := []struct {
		name     string
		fn       func(string) string
		contains string
	}{
		{"Success", Success, Green},
		{"Error", Error, Red},
		{"Highlight", Highlight, Yellow},
		{"Info", Info, Cyan},
		{"Header", Header, Bold},
		{"Dim", Dim, DimCode},
		{"Magentaf", Magentaf, Magenta},
		{"Bluef", Bluef, Blue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn("CHANGE")
			if !strings.Contains(got, tt.contains) {
				t.Errorf("%s: expected %q in %q", tt.name, tt.contains, got)
			}
			if !strings.HasSuffix(got, Reset) {
				t.Errorf("%s: expected reset suffix in %q", tt.name, got)
			}
		})
	}
}

func TestColorFuncs_Disabled(t *testing.T) {
	restore(t)
	Disable()

	if got := Success("NEW"); got != "NEW" {
		t.Errorf("expected plain text when disabled, got %q", got)
	}
}

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.log"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if IsTerminal(f) {
		t.Error("regular file reported as terminal")
	}
}
