package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/ptrack/internal/model"
	"github.com/verte-zerg/ptrack/internal/store"
)

func sampleState() model.State {
	return model.State{
		Exercises: []model.Exercise{
			{ID: "ex1", Name: "Squats", Sets: 2, Reps: 3, Duration: 5},
		},
		History: []model.DailyRecord{
			{Date: "2024-01-10", Sessions: []model.ExerciseSession{{
				ID:            "s1",
				ExerciseID:    "ex1",
				StartTime:     "2024-01-10T09:00:00.000Z",
				EndTime:       "2024-01-10T09:05:00.000Z",
				Completed:     true,
				CompletedReps: 3,
			}}},
		},
		CurrentDate: "2024-01-10",
	}
}

func TestSQLiteKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ptrack.db")
	kv, err := store.Open(path)
	require.NoError(t, err)

	_, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "k", []byte("one")))
	require.NoError(t, kv.Set(ctx, "k", []byte("two")))
	got, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", string(got))

	_, ok, err = kv.UpdatedAt(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, kv.Close())

	reopened, err := store.Open(path)
	require.NoError(t, err)
	defer func() {
		if err := reopened.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}()
	got, ok, err = reopened.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", string(got))
}

func TestMemoryKV_RejectsOversizedValue(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory(512 * 1024)
	require.NoError(t, kv.Set(ctx, "small", []byte("ok")))

	err := kv.Set(ctx, "big", make([]byte, 4096))
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrValueTooLarge))

	_, ok, err := kv.Get(ctx, "big")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateway_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	gw := store.NewGateway(store.NewMemory(1<<20), "")
	assert.Equal(t, store.DefaultKey, gw.Key())

	_, ok, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, gw.Save(ctx, sampleState()))
	got, ok, err := gw.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleState(), got)
}

func TestGateway_LoadMalformedIsAnError(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory(1 << 20)
	require.NoError(t, kv.Set(ctx, store.DefaultKey, []byte("{not json")))
	_, ok, err := store.NewGateway(kv, "").Load(ctx)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, store.ErrMalformedState))
}

func TestGateway_LoadRepairsIllTypedFields(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory(1 << 20)
	blob := `{"exercises":[{"id":"ex1","name":"Squats","sets":"2","reps":3,"duration":5}, 7],` +
		`"history":[{"date":"2024-01-10","sessions":[{"id":"s1","exerciseId":"ex1",` +
		`"startTime":"2024-01-10T09:00:00.000Z","endTime":"2024-01-10T09:05:00.000Z",` +
		`"completed":"true","completedReps":3}]}],"currentDate":"2024-01-10"}`
	require.NoError(t, kv.Set(ctx, store.DefaultKey, []byte(blob)))

	got, ok, err := store.NewGateway(kv, "").Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleState(), got)
}

func TestGateway_SaveFailureIsReported(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory(512 * 1024)
	gw := store.NewGateway(kv, "")

	state := sampleState()
	state.Exercises[0].Description = strings.Repeat("x", 8192)
	err := gw.Save(ctx, state)
	assert.True(t, errors.Is(err, store.ErrValueTooLarge))

	_, ok, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateway_NilSlicesSaveAsArrays(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory(1 << 20)
	require.NoError(t, store.NewGateway(kv, "").Save(ctx, model.State{CurrentDate: "2024-01-10"}))
	raw, ok, err := kv.Get(ctx, store.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"exercises":[],"history":[],"currentDate":"2024-01-10"}`, string(raw))
}

func TestExport_WritesReimportableBackup(t *testing.T) {
	dir := t.TempDir()
	path, err := store.Export(sampleState(), dir, "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pt_tracker_backup_2024-01-10.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"exercises\"")

	imported := store.Import(raw)
	require.NotNil(t, imported)
	assert.Equal(t, sampleState(), *imported)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestImport_RepairsElements(t *testing.T) {
	got := store.Import([]byte(`{"exercises":[{"id":"a","name":"Squats","sets":"3","reps":10.0},"oops"],` +
		`"history":[{"date":"2024-01-09","sessions":{}}],"currentDate":"2024-01-10"}`))
	require.NotNil(t, got)
	require.Len(t, got.Exercises, 1)
	assert.Equal(t, model.Exercise{ID: "a", Name: "Squats", Sets: 3, Reps: 10}, got.Exercises[0])
	require.Len(t, got.History, 1)
	assert.Empty(t, got.History[0].Sessions)
}

func TestImport_Validation(t *testing.T) {
	cases := []struct {
		name  string
		input string
		valid bool
	}{
		{"valid", `{"exercises":[],"history":[],"currentDate":"2024-01-10"}`, true},
		{"missing currentDate", `{"exercises":[],"history":[]}`, false},
		{"exercises not array", `{"exercises":{},"history":[],"currentDate":"2024-01-10"}`, false},
		{"history null", `{"exercises":[],"history":null,"currentDate":"2024-01-10"}`, false},
		{"currentDate number", `{"exercises":[],"history":[],"currentDate":5}`, false},
		{"not an object", `[1,2,3]`, false},
		{"garbage", `hello`, false},
		{"unchecked date contents", `{"exercises":[],"history":[],"currentDate":"whenever"}`, true},
		{"ill-typed element field", `{"exercises":[{"id":"a","name":"Squats","sets":"3"}],"history":[],"currentDate":"2024-01-10"}`, true},
		{"element not an object", `{"exercises":["oops",null],"history":[5],"currentDate":"2024-01-10"}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := store.Import([]byte(tc.input))
			if tc.valid {
				assert.NotNil(t, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}
