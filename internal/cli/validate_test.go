package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/granulab/spherepack/pkg/errors"
	"github.com/granulab/spherepack/pkg/mixture"
)

func TestValidateCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	if err := execute(t, "validate", writeMixture(t)); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateCommandBadRadius(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "bad.toml")
	const doc = `[[component]]
name = "beads"
radius = -1.0
proportion = 100
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	err := execute(t, "validate", path)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("error = %v, want CONFIGURATION", err)
	}
}

func TestComponentTable(t *testing.T) {
	mix := mixture.Mixture{
		{Name: "coarse", Radius: 2, Proportion: 30},
		{Name: "fine", Radius: 0.5, Proportion: 70},
	}

	out := componentTable(mix).String()
	for _, want := range []string{"coarse", "fine", "Component", "30.0%", "70.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("componentTable() output missing %q", want)
		}
	}
}

func TestShortHash(t *testing.T) {
	long := strings.Repeat("ab", 32)
	if got := shortHash(long); got != long[:12] {
		t.Errorf("shortHash(%q) = %q, want %q", long, got, long[:12])
	}
	if got := shortHash("abc"); got != "abc" {
		t.Errorf("shortHash(%q) = %q, want %q", "abc", got, "abc")
	}
}
