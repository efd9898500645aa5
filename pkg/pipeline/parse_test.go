package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/granulab/spherepack/pkg/errors"
	"github.com/granulab/spherepack/pkg/mixture"
)

const mixtureTOML = `[[component]]
name = "coarse"
radius = 2.0
proportion = 30

[[component]]
name = "fine"
radius = 0.5
proportion = 70
`

const mixtureJSON = `[
  {"name": "coarse", "radius": 2.0, "proportion": 30},
  {"name": "fine", "radius": 0.5, "proportion": 70}
]`

func writeMixtureFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseInline(t *testing.T) {
	mix, err := Parse(context.Background(), nil, Options{Mixture: testMixture})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(mix) != 1 || mix[0].Name != "beads" {
		t.Errorf("Parse() = %v, want the inline mixture", mix)
	}
}

func TestParseInlineInvalid(t *testing.T) {
	bad := mixture.Mixture{{Name: "beads", Radius: -1, Proportion: 1}}
	_, err := Parse(context.Background(), nil, Options{Mixture: bad})
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeConfiguration)
	}
}

func TestParseFile(t *testing.T) {
	path := writeMixtureFile(t, "glass.toml", mixtureTOML)

	mix, err := Parse(context.Background(), nil, Options{MixturePath: path})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(mix) != 2 {
		t.Fatalf("len(mix) = %d, want 2", len(mix))
	}
	if mix[0].Name != "coarse" || mix[0].Radius != 2.0 {
		t.Errorf("mix[0] = %+v, want coarse with radius 2", mix[0])
	}
}

func TestParseFileNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	_, err := Parse(context.Background(), nil, Options{MixturePath: path})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestParseRemote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mixtureTOML))
	}))
	defer server.Close()

	mix, err := Parse(context.Background(), nil, Options{MixturePath: server.URL + "/glass.toml"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(mix) != 2 {
		t.Errorf("len(mix) = %d, want 2", len(mix))
	}
}

func TestParseRemoteQueryString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mixtureJSON))
	}))
	defer server.Close()

	// Format detection must ignore the query string
	mix, err := Parse(context.Background(), nil, Options{MixturePath: server.URL + "/glass.json?v=2"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(mix) != 2 {
		t.Errorf("len(mix) = %d, want 2", len(mix))
	}
}

func TestParseRemoteNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Parse(context.Background(), nil, Options{MixturePath: server.URL + "/missing.toml"})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeNotFound)
	}
}

func TestParseRemoteInvalidDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a mixture"))
	}))
	defer server.Close()

	_, err := Parse(context.Background(), nil, Options{MixturePath: server.URL + "/glass.toml"})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
	}
}

func TestMixtureHashFormatIndependent(t *testing.T) {
	tomlPath := writeMixtureFile(t, "glass.toml", mixtureTOML)
	jsonPath := writeMixtureFile(t, "glass.json", mixtureJSON)

	fromTOML, err := Parse(context.Background(), nil, Options{MixturePath: tomlPath})
	if err != nil {
		t.Fatal(err)
	}
	fromJSON, err := Parse(context.Background(), nil, Options{MixturePath: jsonPath})
	if err != nil {
		t.Fatal(err)
	}

	if mixtureHash(fromTOML) != mixtureHash(fromJSON) {
		t.Error("Equivalent documents should hash identically")
	}

	other := mixture.Mixture{{Name: "coarse", Radius: 2.5, Proportion: 30}}
	if mixtureHash(fromTOML) == mixtureHash(other) {
		t.Error("Different documents should hash differently")
	}
}

func TestSourceName(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"https://example.com/mixtures/glass.toml", "glass.toml"},
		{"https://example.com/glass.toml?v=2", "glass.toml"},
		{"https://example.com/glass.yaml#frag", "glass.yaml"},
		{"glass.json", "glass.json"},
	}

	for _, tt := range tests {
		if got := sourceName(tt.source); got != tt.want {
			t.Errorf("sourceName(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}
