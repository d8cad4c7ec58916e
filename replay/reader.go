package replay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// maxLine bounds a single replay entry; turn results on large maps stay well under it.
const maxLine = 4 << 20

// Each decodes every line of a replay file in order and hands it to fn.
// Iteration stops at the first error from fn. A file whose recorder never
// closed ends mid-frame; the turns flushed before that are still delivered.
func Each(path string, fn func(line json.RawMessage) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		line := append(json.RawMessage(nil), sc.Bytes()...)
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("scan replay: %w", err)
	}
	return nil
}

// Load decodes every entry into a T.
func Load[T any](path string) ([]T, error) {
	var out []T
	err := Each(path, func(line json.RawMessage) error {
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return fmt.Errorf("decode replay entry %d: %w", len(out), err)
		}
		out = append(out, v)
		return nil
	})
	return out, err
}
