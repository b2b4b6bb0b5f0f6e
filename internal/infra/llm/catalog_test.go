package llm

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// newDiscoveryAdapter builds an HTTP-runner adapter whose discovery
// command is the re-executed test binary (see exec_helper_test.go).
func newDiscoveryAdapter(t *testing.T, mode string) *Adapter {
	t.Helper()
	t.Setenv(helperModeEnv, mode)
	a, err := New(Options{
		Backend:     string(BackendHTTPRunner),
		Location:    "http://localhost:11434",
		ListCommand: []string{testBinaryPath()},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a
}

func TestListModels_HTTPRunner_ParsesDiscoveryOutput(t *testing.T) {
	a := newDiscoveryAdapter(t, "list")

	models, err := a.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	want := []string{"llama3.2", "nomic-embed-text"}
	if !reflect.DeepEqual(models, want) {
		t.Errorf("models: got %v, want %v", models, want)
	}
}

func TestListModels_HTTPRunner_NonZeroExit_EmptyListNoError(t *testing.T) {
	a := newDiscoveryAdapter(t, "list-fail")

	models, err := a.ListModels(context.Background())
	if err != nil {
		t.Fatalf("non-zero discovery exit must not error, got %v", err)
	}
	if len(models) != 0 {
		t.Errorf("expected empty list, got %v", models)
	}
}

func TestListModels_HTTPRunner_SpawnError_Surfaces(t *testing.T) {
	t.Parallel()

	a, err := New(Options{
		Backend:     string(BackendHTTPRunner),
		Location:    "http://localhost:11434",
		ListCommand: []string{"/nonexistent/ollama", "list"},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, listErr := a.ListModels(context.Background())
	var be *BackendError
	if !errors.As(listErr, &be) {
		t.Fatalf("expected *BackendError for spawn failure, got %v", listErr)
	}
}

func TestListModels_ProcessBinary_ReturnsAdvertisedList(t *testing.T) {
	t.Parallel()

	a, err := New(Options{
		Backend:          string(BackendProcessBinary),
		Location:         "/usr/local/bin/runner",
		AdvertisedModels: []string{"llama2:7b", "codellama:7b"},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	models, listErr := a.ListModels(context.Background())
	if listErr != nil {
		t.Fatalf("ListModels failed: %v", listErr)
	}
	want := []string{"llama2:7b", "codellama:7b"}
	if !reflect.DeepEqual(models, want) {
		t.Errorf("models: got %v, want %v", models, want)
	}
}

func TestHTTPProbe_DiscoverySpawns_True(t *testing.T) {
	// Even a failing discovery exit counts as reachable: only the spawn matters.
	a := newDiscoveryAdapter(t, "list-fail")
	if !a.Probe(context.Background()) {
		t.Error("expected probe true when discovery spawns")
	}
}

func TestHTTPProbe_DiscoverySpawnFails_False(t *testing.T) {
	t.Parallel()

	a, err := New(Options{
		Backend:     string(BackendHTTPRunner),
		Location:    "http://localhost:11434",
		ListCommand: []string{"/nonexistent/ollama", "list"},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.Probe(context.Background()) {
		t.Error("expected probe false when discovery cannot spawn")
	}
}

func TestParseModelList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "typical table",
			in:   "NAME ID SIZE\nllama3.2 abc 4GB\nnomic-embed-text def 300MB\n",
			want: []string{"llama3.2", "nomic-embed-text"},
		},
		{
			name: "blank lines skipped",
			in:   "NAME\n\nllama3.2 abc\n\n",
			want: []string{"llama3.2"},
		},
		{
			name: "header only",
			in:   "NAME ID SIZE\n",
			want: []string{},
		},
		{
			name: "empty output",
			in:   "",
			want: []string{},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseModelList(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
