// Process backend driver: invokes a local model-runner binary (llama.cpp
// style) per request and reads its standard output.
package llm

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
)

// processModelLabel identifies the process backend on chat responses;
// the binary itself does not report a model name.
const processModelLabel = "llama.cpp"

// maxGeneratedTokens is passed on the -n flag.
const maxGeneratedTokens = "256"

// processBinary drives the command-line backend. Stdout and stderr are
// fully buffered so a killed or chatty child can never deadlock on its
// pipes.
type processBinary struct {
	path string
}

// chat spawns the binary with ["-p", prompt, "-n", "256"], waits for
// completion, and returns stdout with surrounding whitespace trimmed.
// Non-zero exit becomes a BackendError carrying the stderr body.
func (p *processBinary) chat(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, p.path, "-p", prompt, "-n", maxGeneratedTokens)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		// CommandContext already killed and reaped the child.
		return "", ctx.Err()
	}
	if err != nil {
		return "", &BackendError{
			Op:      "chat",
			Backend: string(BackendProcessBinary),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// probe reports whether the binary can be spawned at all. The exit code
// is deliberately not examined: --help exiting non-zero still proves the
// executable exists and runs.
func (p *processBinary) probe(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, p.path, "--help")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return false
	}
	_ = cmd.Wait()
	return ctx.Err() == nil
}
