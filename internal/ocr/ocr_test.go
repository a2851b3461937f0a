package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedtech/jobtracker/internal/common"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	stdout map[string]string
	err    map[string]error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if err := f.err[name]; err != nil {
		return nil, []byte("boom"), err
	}
	// converters write their output file
	if name == "magick" || name == "heif-convert" {
		if err := os.WriteFile(args[len(args)-1], []byte("png"), 0o644); err != nil {
			return nil, nil, err
		}
	}
	if len(args) > 0 && args[len(args)-1] == "tsv" {
		return []byte(f.stdout["tsv"]), nil, nil
	}
	return []byte(f.stdout[name]), nil, nil
}

const pngURI = "data:image/png;base64,iVBORw0KGgo="

func TestRecognizeDataURI(t *testing.T) {
	r := &fakeRunner{stdout: map[string]string{
		"tesseract": "Hiring\r\nPT  Maju\tJaya\r\n-----\r\n\r\n\r\n\r\nRemote  \n",
	}}
	e := NewExtractor(Config{}, nil, WithRunner(r))

	var fractions []float64
	var statuses []string
	res, err := e.Recognize(context.Background(), pngURI, func(status string, f float64) {
		statuses = append(statuses, status)
		fractions = append(fractions, f)
	})
	require.NoError(t, err)
	assert.Equal(t, "Hiring\nPT Maju Jaya\n\nRemote", res.Text)
	assert.Equal(t, "image/png", res.MIME)
	assert.Equal(t, "eng", res.Language)

	require.Len(t, r.calls, 1)
	assert.Equal(t, "tesseract", r.calls[0].name)
	assert.Equal(t, []string{"stdout", "-l", "eng"}, r.calls[0].args[1:])
	assert.True(t, strings.HasSuffix(r.calls[0].args[0], ".png"))

	require.NotEmpty(t, fractions)
	assert.Equal(t, 0.0, fractions[0])
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}
	for _, s := range statuses {
		assert.Equal(t, StatusRecognizing, s)
	}
}

func TestRecognizeRejectsBadInput(t *testing.T) {
	e := NewExtractor(Config{}, nil, WithRunner(&fakeRunner{}))

	_, err := e.Recognize(context.Background(), "not-a-uri", nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = e.Recognize(context.Background(), "data:application/pdf;base64,AAAA", nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRecognizeTesseractFailure(t *testing.T) {
	r := &fakeRunner{err: map[string]error{"tesseract": errors.New("exit status 1")}}
	e := NewExtractor(Config{}, nil, WithRunner(r))
	res, err := e.Recognize(context.Background(), pngURI, nil)
	require.Error(t, err)
	assert.Contains(t, res.Warnings, "boom")
}

func TestRecognizeHEICConvertsAndCaches(t *testing.T) {
	cache := t.TempDir()
	r := &fakeRunner{stdout: map[string]string{"tesseract": "Data Analyst"}}
	e := NewExtractor(Config{HeicConverter: "magick", ArtifactCacheDir: cache, TesseractLang: "ind"}, nil, WithRunner(r))

	uri := "data:image/heic;base64,AAECAw=="
	res, err := e.Recognize(context.Background(), uri, nil)
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", res.Text)
	require.Len(t, r.calls, 2)
	assert.Equal(t, "magick", r.calls[0].name)
	assert.Equal(t, filepath.Dir(r.calls[1].args[0]), cache)
	assert.Equal(t, "ind", r.calls[1].args[3])

	// second run reuses the cached PNG
	_, err = e.Recognize(context.Background(), uri, nil)
	require.NoError(t, err)
	require.Len(t, r.calls, 3)
	assert.Equal(t, "tesseract", r.calls[2].name)
}

func TestRecognizeHEICWithoutConverter(t *testing.T) {
	e := NewExtractor(Config{}, nil, WithRunner(&fakeRunner{}))
	_, err := e.Recognize(context.Background(), "data:image/heic;base64,AAECAw==", nil)
	assert.ErrorContains(t, err, "HEIC not supported")
}

func TestRecognizeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posting.JPG")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8}, 0o644))

	r := &fakeRunner{stdout: map[string]string{"tesseract": "Lowongan Kerja"}}
	e := NewExtractor(Config{}, nil, WithRunner(r))
	res, err := e.RecognizeFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "Lowongan Kerja", res.Text)
	assert.Equal(t, "image/jpeg", res.MIME)
	assert.Equal(t, path, r.calls[0].args[0])

	_, err = e.RecognizeFile(context.Background(), filepath.Join(dir, "cv.pdf"), nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestTSVConfidenceBlend(t *testing.T) {
	tsv := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t90\tHiring\n" +
		"5\t1\t1\t1\t1\t2\t0\t0\t10\t10\t70\tNow\n" +
		"4\t1\t1\t1\t1\t0\t0\t0\t10\t10\t-1\t\n"
	assert.InDelta(t, 0.8, meanTSVConfidence(tsv), 1e-6)

	r := &fakeRunner{stdout: map[string]string{"tesseract": "x", "tsv": tsv}}
	e := NewExtractor(Config{EnableTSVConfidence: true}, nil, WithRunner(r))
	res, err := e.Recognize(context.Background(), pngURI, nil)
	require.NoError(t, err)
	// 0.7*0.8 + 0.3*0.2
	assert.InDelta(t, 0.62, res.Confidence, 1e-5)
}

func TestNormalizeComposesNFC(t *testing.T) {
	assert.Equal(t, "Caf\u00e9 Nusantara", Normalize("Cafe\u0301  Nusantara"))
	assert.Equal(t, "", Normalize(""))
}

func TestHeuristicConfidence(t *testing.T) {
	assert.InDelta(t, 0.2, heuristicConfidence("lorem"), 1e-6)
	assert.InDelta(t, 0.75, heuristicConfidence("Hiring Backend Developer\nGaji Rp 10.000.000\nLokasi: Jakarta"), 1e-6)
}

func TestDecodeDataURI(t *testing.T) {
	mime, data, err := DecodeDataURI("data:text/plain,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mime)
	assert.Equal(t, "hello world", string(data))

	mime, data, err = DecodeDataURI(EncodeDataURI("image/png", []byte{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, _, err = DecodeDataURI("data:image/png;base64")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
