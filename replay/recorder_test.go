package replay

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Turn     int      `json:"turn"`
	Commands []string `json:"commands"`
}

func TestRecorderRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "replays")
	r := NewRecorder(dir, "abc")
	require.Equal(t, filepath.Join(dir, "match-abc.jsonl.zst"), r.Path())

	for turn := 1; turn <= 3; turn++ {
		require.NoError(t, r.Record(entry{Turn: turn, Commands: []string{"m 1 n", "g"}}))
	}
	require.NoError(t, r.Close())

	got, err := Load[entry](r.Path())
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, e := range got {
		require.Equal(t, i+1, e.Turn)
		require.Equal(t, []string{"m 1 n", "g"}, e.Commands)
	}
}

func TestRecorderEntriesReadableBeforeClose(t *testing.T) {
	r := NewRecorder(t.TempDir(), "live")
	defer r.Close()

	for turn := 1; turn <= 3; turn++ {
		require.NoError(t, r.Record(entry{Turn: turn, Commands: []string{"g"}}))
	}

	info, err := os.Stat(r.Path())
	require.NoError(t, err)
	require.NotZero(t, info.Size())

	got, err := Load[entry](r.Path())
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, 3, got[2].Turn)
}

func TestRecorderOutputIsZstd(t *testing.T) {
	r := NewRecorder(t.TempDir(), "raw")
	require.NoError(t, r.Record(map[string]int{"turn": 7}))
	require.NoError(t, r.Close())

	raw, err := os.ReadFile(r.Path())
	require.NoError(t, err)

	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()
	plain, err := dec.DecodeAll(raw, nil)
	require.NoError(t, err)
	require.Equal(t, "{\"turn\":7}\n", string(plain))
}

func TestRecorderCloseWithoutWrites(t *testing.T) {
	r := NewRecorder(t.TempDir(), "empty")
	require.NoError(t, r.Close())
	_, err := os.Stat(r.Path())
	require.True(t, os.IsNotExist(err))
}

func TestEachStopsOnCallbackError(t *testing.T) {
	r := NewRecorder(t.TempDir(), "stop")
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Record(entry{Turn: i}))
	}
	require.NoError(t, r.Close())

	seen := 0
	stop := os.ErrClosed
	err := Each(r.Path(), func(json.RawMessage) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 2, seen)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load[entry](filepath.Join(t.TempDir(), "nope.jsonl.zst"))
	require.Error(t, err)
}
