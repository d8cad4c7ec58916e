// Package replay writes per-match turn logs as zstd-compressed JSON lines.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Recorder appends one JSON line per Record call to a single compressed
// file. Safe for concurrent use; the file is opened lazily on first write.
type Recorder struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

func NewRecorder(dir, session string) *Recorder {
	return &Recorder{path: PathFor(dir, session)}
}

// PathFor is where a session's replay lives under dir.
func PathFor(dir, session string) string {
	return filepath.Join(dir, fmt.Sprintf("match-%s.jsonl.zst", session))
}

func (r *Recorder) Path() string { return r.path }

// Record writes v as one line and pushes it to disk as a complete zstd
// block, so a match cut short still leaves every recorded turn readable.
func (r *Recorder) Record(v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w == nil {
		if err := r.openLocked(); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal replay entry: %w", err)
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := r.w.Flush(); err != nil {
		return err
	}
	return r.enc.Flush()
}

func (r *Recorder) openLocked() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create replay dir: %w", err)
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open replay: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("zstd writer: %w", err)
	}
	r.f = f
	r.enc = enc
	r.w = bufio.NewWriterSize(enc, 128*1024)
	return nil
}

// Close finishes the zstd frame. The recorder may not be reused.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.w != nil {
		_ = r.w.Flush()
	}
	if r.enc != nil {
		err = r.enc.Close()
		r.enc = nil
	}
	if r.f != nil {
		_ = r.f.Close()
		r.f = nil
	}
	r.w = nil
	return err
}
