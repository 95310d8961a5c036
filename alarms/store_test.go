package alarms

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestFileStore_MissingFileMeansNever verifies a store without a file
// reports the zero time for any task.
func TestFileStore_MissingFileMeansNever(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "schedule.json"))

	last, err := store.LastAlarm(context.Background(), "poll-feeds")

	require.NoError(t, err)
	require.True(t, last.IsZero())
}

// TestFileStore_SetAndClearRoundTrip verifies fire times survive a reload
// and clearing resets to never.
func TestFileStore_SetAndClearRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schedule.json")
	store := NewFileStore(path)

	fired := time.Unix(1_700_000_000, 0).UTC()

	require.NoError(t, store.SetLastAlarm(context.Background(), "poll-feeds", fired))

	// Fresh store instance reading the same file.
	reloaded := NewFileStore(path)

	last, err := reloaded.LastAlarm(context.Background(), "poll-feeds")
	require.NoError(t, err)
	require.True(t, fired.Equal(last))

	// Unknown task in the same file is still never.
	last, err = reloaded.LastAlarm(context.Background(), "other-task")
	require.NoError(t, err)
	require.True(t, last.IsZero())

	require.NoError(t, reloaded.ClearLastAlarm(context.Background(), "poll-feeds"))

	last, err = store.LastAlarm(context.Background(), "poll-feeds")
	require.NoError(t, err)
	require.True(t, last.IsZero())
}

// TestFileStore_ClearUnknownTaskIsNoOp verifies clearing a task that never
// fired does not create the file or fail.
func TestFileStore_ClearUnknownTaskIsNoOp(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "schedule.json"))

	require.NoError(t, store.ClearLastAlarm(context.Background(), "poll-feeds"))
	require.NoError(t, store.ClearLastAlarm(context.Background(), "poll-feeds"))
}

// TestFileStore_CorruptFileSurfaces verifies undecodable state is reported
// rather than silently treated as never.
func TestFileStore_CorruptFileSurfaces(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schedule.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	store := NewFileStore(path)

	_, err := store.LastAlarm(context.Background(), "poll-feeds")
	require.Error(t, err)
}
