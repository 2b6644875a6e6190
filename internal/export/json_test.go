package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"sysmon/internal/collector"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONExportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	e := NewJSON(path)

	snap := testSnapshot()
	require.NoError(t, e.Export(snap))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got collector.Snapshot
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.True(t, snap.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, snap.OS, got.OS)
	assert.Equal(t, snap.CPU, got.CPU)
	assert.Equal(t, snap.Memory, got.Memory)
	assert.Equal(t, snap.Disks, got.Disks)
	assert.Equal(t, snap.Network, got.Network)
	assert.Equal(t, snap.ProcessCount, got.ProcessCount)
	assert.Equal(t, snap.TopProcesses, got.TopProcesses)
}

func TestJSONExportAbsentDomainsAreNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, NewJSON(path).Export(testSnapshot()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.JSONEq(t, "null", string(doc["battery"]))
	assert.JSONEq(t, "null", string(doc["temperatures"]))
	assert.JSONEq(t, "null", string(doc["gpus"]))
}

func TestJSONExportOverwritesPerTick(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	e := NewJSON(path)

	first := testSnapshot()
	first.ProcessCount = 1
	require.NoError(t, e.Export(first))

	second := testSnapshot()
	second.ProcessCount = 2
	require.NoError(t, e.Export(second))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got collector.Snapshot
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 2, got.ProcessCount)

	// От временных файлов не должно оставаться следов
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "snapshot.json", entries[0].Name())
}

func TestJSONExportFailsOnUnwritableDir(t *testing.T) {
	e := NewJSON(filepath.Join(t.TempDir(), "missing", "snapshot.json"))
	assert.Error(t, e.Export(testSnapshot()))
}
