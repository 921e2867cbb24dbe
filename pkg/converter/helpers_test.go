package converter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// stubRecord is what stubCodec parses: {"events":["start","tsumo"],"fail":""}.
type stubRecord struct {
	Events []string `json:"events"`
	Fail   string   `json:"fail"`
}

type stubEvent struct {
	Type string `json:"type"`
	Seq  int    `json:"seq"`
}

// unmarshalable fails to serialize, standing in for a broken event.
type unmarshalable struct{}

func (unmarshalable) MarshalJSON() ([]byte, error) {
	return nil, errors.New("event cannot be encoded")
}

type stubCodec struct{}

func (stubCodec) Parse(data []byte) (stubRecord, error) {
	var rec stubRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return stubRecord{}, err
	}
	return rec, nil
}

func (stubCodec) Transform(rec stubRecord) ([]any, error) {
	if rec.Fail != "" {
		return nil, errors.New(rec.Fail)
	}
	out := make([]any, 0, len(rec.Events))
	for i, name := range rec.Events {
		if name == "boom" {
			out = append(out, unmarshalable{})
			continue
		}
		out = append(out, stubEvent{Type: name, Seq: i})
	}
	return out, nil
}

const (
	validDoc     = `{"events":["start","tsumo","end"]}`
	invalidDoc   = `{"events":[`
	transformDoc = `{"fail":"unsupported game length"}`
	serializeDoc = `{"events":["start","boom","end"]}`

	validOutput = `{"type":"start","seq":0}
{"type":"tsumo","seq":1}
{"type":"end","seq":2}
`
)

func writeFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func newStubConverter(fs afero.Fs, opts ...Option) *Converter[stubRecord, any] {
	return NewConverter[stubRecord, any](stubCodec{}, append([]Option{WithFs(fs)}, opts...)...)
}
