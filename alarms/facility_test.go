package alarms

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCronFacility_ArmValidatesSpec verifies bad trigger specs are rejected
// and good ones register an entry.
func TestCronFacility_ArmValidatesSpec(t *testing.T) {
	t.Parallel()

	fac := NewCronFacility()

	require.Error(t, fac.Arm("poll-feeds", "not a spec", func() {}))
	require.NoError(t, fac.Arm("poll-feeds", "@every 1h", func() {}))
	require.NoError(t, fac.Arm("nightly", "0 3 * * *", func() {}))
}

// TestCronFacility_RearmReplaces verifies arming the same name twice leaves
// a single registration.
func TestCronFacility_RearmReplaces(t *testing.T) {
	t.Parallel()

	fac := NewCronFacility()

	require.NoError(t, fac.Arm("poll-feeds", "@every 1h", func() {}))
	require.NoError(t, fac.Arm("poll-feeds", "@every 2h", func() {}))

	require.Len(t, fac.entries, 1)
	require.Len(t, fac.runner.Entries(), 1)
}

// TestCronFacility_CancelUnknownIsNoOp verifies canceling a never-armed name
// succeeds.
func TestCronFacility_CancelUnknownIsNoOp(t *testing.T) {
	t.Parallel()

	fac := NewCronFacility()

	require.NoError(t, fac.Cancel("poll-feeds"))

	require.NoError(t, fac.Arm("poll-feeds", "@every 1h", func() {}))
	require.NoError(t, fac.Cancel("poll-feeds"))
	require.NoError(t, fac.Cancel("poll-feeds"))
	require.Empty(t, fac.runner.Entries())
}
