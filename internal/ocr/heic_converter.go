package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// convertHEICtoPNG converts a HEIC/HEIF file to PNG with the chosen converter:
// "heif-convert" | "magick" | "sips".
//
// With cacheDir and hashHex set, the PNG is kept at {cacheDir}/{hashHex}.png and
// reused on the next call; cleanup is nil in that case.
func convertHEICtoPNG(ctx context.Context, r Runner, logger *slog.Logger, converter, in, cacheDir, hashHex string) (string, []string, func(), error) {
	var out string
	var cleanup func()

	if cacheDir != "" && hashHex != "" {
		out = filepath.Join(cacheDir, hashHex+".png")
		if st, err := os.Stat(out); err == nil && !st.IsDir() {
			logger.Debug("using cached heic->png", "cache", out)
			return out, nil, nil, nil
		}
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return "", nil, nil, err
		}
	} else {
		tmpDir, err := os.MkdirTemp("", "jt-heic-*")
		if err != nil {
			return "", nil, nil, err
		}
		cleanup = func() { _ = os.RemoveAll(tmpDir) }
		out = filepath.Join(tmpDir, "image.png")
	}

	fail := func(errb []byte, err error) (string, []string, func(), error) {
		if cleanup != nil {
			cleanup()
		}
		var warns []string
		if len(errb) > 0 {
			warns = []string{string(errb)}
		}
		return "", warns, nil, err
	}

	switch converter {
	case "heif-convert":
		if _, errb, err := r.Run(ctx, "heif-convert", in, out); err != nil {
			return fail(errb, fmt.Errorf("heif-convert failed: %w", err))
		}
	case "magick":
		if _, errb, err := r.Run(ctx, "magick", in, out); err != nil {
			return fail(errb, fmt.Errorf("magick convert failed: %w", err))
		}
	case "sips":
		if _, errb, err := r.Run(ctx, "sips", "-s", "format", "png", in, "--out", out); err != nil {
			return fail(errb, fmt.Errorf("sips convert failed: %w", err))
		}
	default:
		return fail(nil, fmt.Errorf("HEIC not supported: set HEIC_CONVERTER to one of: heif-convert | magick | sips"))
	}

	if _, err := os.Stat(out); err != nil {
		return fail(nil, fmt.Errorf("HEIC conversion produced no output: %w", err))
	}
	logger.Debug("converted heic->png", "out", out)
	return out, nil, cleanup, nil
}
