package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrToolTimeout means tesseract or the HEIC converter ran past Config.Timeout.
var ErrToolTimeout = errors.New("ocr: tool timed out")

// Runner executes the external tools recognition depends on. Tests replace it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// toolRunner runs each tool under its own deadline. A cancelled caller (for
// example a superseded upload) surfaces as ctx.Err(), not as a tool failure.
type toolRunner struct {
	timeout time.Duration
	logger  *slog.Logger
}

func (r toolRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.WaitDelay = 2 * time.Second
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	start := time.Now()
	err := cmd.Run()
	log := r.logger.With("tool", name, "duration_ms", time.Since(start).Milliseconds())

	switch {
	case err == nil:
		log.Debug("ocr.tool.ok", "stdout_bytes", out.Len())
		return out.Bytes(), errb.Bytes(), nil
	case ctx.Err() != nil:
		log.Info("ocr.tool.cancelled")
		return nil, errb.Bytes(), fmt.Errorf("%s: %w", name, ctx.Err())
	case runCtx.Err() != nil:
		log.Warn("ocr.tool.timeout", "timeout", r.timeout)
		return nil, errb.Bytes(), fmt.Errorf("%s after %s: %w", name, r.timeout, ErrToolTimeout)
	case errors.Is(err, exec.ErrNotFound):
		log.Error("ocr.tool.missing", "error", err)
		return nil, nil, fmt.Errorf("%s is not installed or not on PATH: %w", name, err)
	default:
		detail := lastLine(errb.String())
		log.Error("ocr.tool.failed", "args", strings.Join(args, " "), "error", err, "stderr", detail)
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return nil, errb.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
}

// lastLine is the last non-blank stderr line, where tesseract and magick put
// the actual reason.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
