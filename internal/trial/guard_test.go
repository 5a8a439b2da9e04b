package trial

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trialerrors "ticketzero/internal/errors"
)

func newTestGuard(t *testing.T) (*Guard, *bytes.Buffer) {
	t.Helper()
	guard, err := NewGuard(testConfig(t))
	require.NoError(t, err)

	out := &bytes.Buffer{}
	guard.SetIO(strings.NewReader(""), out)
	return guard, out
}

func TestRequireValidTrialDeclinedActivation(t *testing.T) {
	guard, out := newTestGuard(t)
	guard.SetIO(strings.NewReader("no\n"), out)

	ok := guard.RequireValidTrial(false)

	assert.False(t, ok)
	assert.Contains(t, out.String(), "TestApp - TRIAL LICENSE")
	assert.Contains(t, out.String(), "Would you like to start your trial?")
	assert.Contains(t, out.String(), "Trial not activated.")
	assert.False(t, guard.IsValid())
}

func TestRequireValidTrialInteractiveActivation(t *testing.T) {
	guard, out := newTestGuard(t)
	guard.SetIO(strings.NewReader("yes\n"), out)

	ok := guard.RequireValidTrial(false)

	// The gate that triggered the prompt still reports failure; the
	// activation takes effect from the next check on.
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Trial activated successfully!")
	assert.Contains(t, out.String(), "expires in 3 days")

	assert.True(t, guard.IsValid())
	assert.True(t, guard.RequireValidTrial(false))
	assert.InDelta(t, 3.0, guard.DaysRemaining(), 0.01)
}

func TestRequireValidTrialAcceptsShortYes(t *testing.T) {
	guard, out := newTestGuard(t)
	guard.SetIO(strings.NewReader("Y\n"), out)

	guard.RequireValidTrial(false)

	assert.Contains(t, out.String(), "Trial activated successfully!")
	assert.True(t, guard.IsValid())
}

func TestRequireValidTrialActiveIsSilent(t *testing.T) {
	guard, out := newTestGuard(t)
	_, err := guard.Manager().Activate(context.Background())
	require.NoError(t, err)

	ok := guard.RequireValidTrial(false)

	assert.True(t, ok)
	assert.Empty(t, out.String(), "an active trial must not interrupt the user")
}

func TestRequireValidTrialAutoExit(t *testing.T) {
	guard, out := newTestGuard(t)
	guard.SetIO(strings.NewReader("no\n"), out)

	exitCode := -1
	guard.exit = func(code int) { exitCode = code }

	ok := guard.RequireValidTrial(true)

	assert.False(t, ok)
	assert.Equal(t, 1, exitCode)
}

func TestShowExpiredMessage(t *testing.T) {
	guard, out := newTestGuard(t)
	m := guard.Manager()
	_, err := m.Activate(context.Background())
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(DefaultTrialLength + time.Hour) }

	ok := guard.RequireValidTrial(false)

	assert.False(t, ok)
	assert.Contains(t, out.String(), "Trial Expired")
	assert.Contains(t, out.String(), "support@example.com")
	assert.Contains(t, out.String(), "TestApp License Purchase")
}

func TestShowTamperedMessage(t *testing.T) {
	guard, out := newTestGuard(t)
	m := guard.Manager()
	record := newRecord(m.MachineID(), "TestApp", time.Now(), DefaultTrialLength)
	record.StartTime -= 24 * 60 * 60
	plantRecord(t, m, record)

	ok := guard.RequireValidTrial(false)

	assert.False(t, ok)
	assert.Contains(t, out.String(), "tampered")
	assert.Contains(t, out.String(), "contact support: support@example.com")
}

func TestShowTrialInfoBanner(t *testing.T) {
	t.Run("quiet with plenty of time left", func(t *testing.T) {
		guard, out := newTestGuard(t)
		_, err := guard.Manager().Activate(context.Background())
		require.NoError(t, err)

		guard.ShowTrialInfoBanner()
		assert.Empty(t, out.String())
	})

	t.Run("quiet when not activated", func(t *testing.T) {
		guard, out := newTestGuard(t)

		guard.ShowTrialInfoBanner()
		assert.Empty(t, out.String())
	})

	t.Run("warns inside the final two days", func(t *testing.T) {
		guard, out := newTestGuard(t)
		m := guard.Manager()
		_, err := m.Activate(context.Background())
		require.NoError(t, err)
		m.now = func() time.Time { return time.Now().Add(DefaultTrialLength - 24*time.Hour) }

		guard.ShowTrialInfoBanner()
		assert.Contains(t, out.String(), "days remaining")
		assert.Contains(t, out.String(), "support@example.com")
	})
}

func TestProtect(t *testing.T) {
	guard, out := newTestGuard(t)
	guard.SetIO(strings.NewReader("no\n"), out)

	ran := false
	protected := guard.Protect(func() error {
		ran = true
		return nil
	})

	err := protected()
	assert.True(t, errors.Is(err, trialerrors.ErrTrialNotActivated))
	assert.False(t, ran, "the wrapped function must not run without a valid trial")

	_, err = guard.Manager().Activate(context.Background())
	require.NoError(t, err)

	require.NoError(t, protected())
	assert.True(t, ran)
}

func TestProtectExpired(t *testing.T) {
	guard, out := newTestGuard(t)
	m := guard.Manager()
	_, err := m.Activate(context.Background())
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(DefaultTrialLength + time.Hour) }

	err = guard.Protect(func() error { return nil })()
	assert.True(t, errors.Is(err, trialerrors.ErrTrialExpired))
	assert.NotEmpty(t, out.String())
}

func TestGetStatusComputesOnFirstUse(t *testing.T) {
	guard, _ := newTestGuard(t)

	status := guard.GetStatus()
	assert.Equal(t, StateNotActivated, status.State)

	_, err := guard.Manager().Activate(context.Background())
	require.NoError(t, err)

	// Cached until the next gate check refreshes it.
	assert.Equal(t, StateNotActivated, guard.GetStatus().State)
	guard.RequireValidTrial(false)
	assert.Equal(t, StateActive, guard.GetStatus().State)
}
