package models

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ProgressFunc receives downloaded and total byte counts; total is -1 when
// the server does not report a length.
type ProgressFunc func(downloaded, total int64)

// Download fetches a GGUF file into dir, writing through a .partial file so
// an interrupted download never leaves a truncated model behind. HF_TOKEN is
// sent as a bearer token when set, for gated repositories.
func Download(url, dir string, progress ProgressFunc) (string, error) {
	name := filepath.Base(strings.SplitN(url, "?", 2)[0])
	if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
		return "", fmt.Errorf("url does not point to a .gguf file: %s", name)
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if token := os.Getenv("HF_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download model: HTTP %d", resp.StatusCode)
	}

	dest := filepath.Join(dir, name)
	partial := dest + ".partial"
	f, err := os.Create(partial)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	total := resp.ContentLength
	reader := &progressReader{r: resp.Body, total: total, progress: progress}
	_, err = io.Copy(f, reader)
	closeErr := f.Close()
	if err != nil {
		os.Remove(partial)
		return "", fmt.Errorf("download model: %w", err)
	}
	if closeErr != nil {
		os.Remove(partial)
		return "", fmt.Errorf("write file: %w", closeErr)
	}

	if err := os.Rename(partial, dest); err != nil {
		os.Remove(partial)
		return "", fmt.Errorf("finalize download: %w", err)
	}
	return dest, nil
}

// progressReader reports progress at most every 100ms to keep terminal
// output sane on fast links.
type progressReader struct {
	r          io.Reader
	total      int64
	downloaded int64
	progress   ProgressFunc
	lastReport time.Time
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.downloaded += int64(n)
	if p.progress != nil && (err != nil || time.Since(p.lastReport) > 100*time.Millisecond) {
		p.progress(p.downloaded, p.total)
		p.lastReport = time.Now()
	}
	return n, err
}
