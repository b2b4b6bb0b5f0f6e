// Model catalog: discovery of the models each backend advertises.
// The HTTP runner's catalog comes from spawning its CLI ("ollama list")
// and parsing the line-oriented table; the process backend advertises a
// fixed list configured at construction.
package llm

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
)

// runDiscovery spawns the discovery command and returns its stdout.
// A spawn failure is a BackendError; a non-zero exit is reported via
// exited=false with no error, because an installed-but-unhappy runner
// is not a listing failure.
func (a *Adapter) runDiscovery(ctx context.Context) (out string, exited bool, err error) {
	cmd := exec.CommandContext(ctx, a.listCmd[0], a.listCmd[1:]...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard

	if startErr := cmd.Start(); startErr != nil {
		return "", false, &BackendError{Op: "list-models", Backend: string(a.backend), Err: startErr}
	}
	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return "", false, ctx.Err()
	}
	return stdout.String(), waitErr == nil, nil
}

// parseModelList extracts one model identifier per line from discovery
// output. The first line is a column header and is skipped; every other
// non-empty line contributes its first whitespace-delimited token.
//
// "NAME ID SIZE\nllama3.2 abc 4GB\n" → ["llama3.2"]
func parseModelList(out string) []string {
	lines := strings.Split(out, "\n")
	models := []string{}
	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		models = append(models, fields[0])
	}
	return models
}
