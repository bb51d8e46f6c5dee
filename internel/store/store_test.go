package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Framesync/pkg/layers"
	"Framesync/pkg/modem"
	"Framesync/pkg/session"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testResult(t *testing.T) *session.Result {
	t.Helper()
	f := layers.BeaconFormat()
	raw := make([]byte, 16)
	raw = append(raw, modem.Encode(modem.BytesToBitSet(f.Assemble()))...)
	raw = append(raw, make([]byte, 16)...)
	raw = append(raw, modem.Encode(modem.BytesToBitSet(f.Assemble()))...)
	raw = append(raw, 0xFF)

	result, err := (&session.Session{Format: f}).Run(raw)
	require.NoError(t, err)
	require.Equal(t, 2, result.Statistics.ValidCount)
	return result
}

func TestSaveLoadRun(t *testing.T) {
	db := openTestDB(t)
	result := testResult(t)
	require.NoError(t, db.SaveRun(result))

	run, err := db.LoadRun(result.RunID.String())
	require.NoError(t, err)
	assert.Equal(t, "beacon", run.Format)
	assert.Equal(t, "nested", run.Policy)
	assert.True(t, result.StartedAt.Equal(run.StartedAt))

	if diff := cmp.Diff(result.Statistics, run.Statistics); diff != "" {
		t.Errorf("statistics mismatch (-saved +loaded):\n%s", diff)
	}
	require.Len(t, run.Records, len(result.Records))
	for i, r := range run.Records {
		want := result.Records[i]
		assert.Equal(t, want.Index, r.Index)
		assert.Equal(t, want.Offset, r.Offset)
		assert.Equal(t, want.Valid, r.Valid)
		assert.True(t, want.Bits.Equal(r.Bits), "record %d bits", i)
	}
}

func TestLoadRunNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.LoadRun("missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestListRuns(t *testing.T) {
	db := openTestDB(t)

	runs, err := db.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first := testResult(t)
	second := testResult(t)
	second.StartedAt = first.StartedAt.Add(time.Second)
	require.NoError(t, db.SaveRun(first))
	require.NoError(t, db.SaveRun(second))

	runs, err = db.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.RunID.String(), runs[0].RunID)
	assert.Equal(t, first.RunID.String(), runs[1].RunID)
	assert.Equal(t, 2, runs[0].Total)
	assert.Equal(t, 2, runs[0].ValidCount)
}

func TestSaveRunDuplicate(t *testing.T) {
	db := openTestDB(t)
	result := testResult(t)
	require.NoError(t, db.SaveRun(result))
	assert.Error(t, db.SaveRun(result))
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	db, err := Open(path)
	require.NoError(t, err)
	result := testResult(t)
	require.NoError(t, db.SaveRun(result))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.LoadRun(result.RunID.String())
	assert.NoError(t, err)
}
