package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityIcon(t *testing.T) {
	assert.Equal(t, "info-circle", SeverityInfo.Icon())
	assert.Equal(t, "check-circle", SeveritySuccess.Icon())
	assert.Equal(t, "exclamation-circle", SeverityWarning.Icon())
	assert.Equal(t, "exclamation-triangle", SeverityDanger.Icon())
	assert.Equal(t, "info-circle", Severity("other").Icon())
}

func TestNotifierAutoDismiss(t *testing.T) {
	view := &recordingView{}
	dispatch := newDispatcher()
	clock := &fakeClock{}
	n := NewNotifier(view, dispatch, 0, clock.AfterFunc)

	alert := n.Show("saved", SeveritySuccess)

	require.NotNil(t, view.current)
	assert.Equal(t, "check-circle", view.current.Icon)
	timer := clock.last()
	require.NotNil(t, timer)
	assert.Equal(t, DefaultAlertDelay, timer.delay)

	timer.fn()
	dispatch.runNext(t)

	assert.Nil(t, view.current)
	assert.Equal(t, []uint64{alert.ID}, view.removed)
	_, ok := n.Current()
	assert.False(t, ok)
}

func TestNotifierDangerPersists(t *testing.T) {
	view := &recordingView{}
	clock := &fakeClock{}
	n := NewNotifier(view, newDispatcher(), 0, clock.AfterFunc)

	n.Show("broken", SeverityDanger)

	assert.Nil(t, clock.last())
	current, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "broken", current.Message)
}

func TestNotifierReplacesPrevious(t *testing.T) {
	view := &recordingView{}
	dispatch := newDispatcher()
	clock := &fakeClock{}
	n := NewNotifier(view, dispatch, 0, clock.AfterFunc)

	first := n.Show("first", SeverityInfo)
	firstTimer := clock.last()
	second := n.Show("second", SeverityDanger)

	assert.True(t, firstTimer.stopped)
	assert.Equal(t, []uint64{first.ID}, view.removed)
	require.NotNil(t, view.current)
	assert.Equal(t, second.ID, view.current.ID)

	// A timer that already fired for the replaced alert must not remove the new one.
	firstTimer.fn()
	dispatch.runNext(t)
	assert.Equal(t, second.ID, view.current.ID)
}

func TestNotifierUserDismiss(t *testing.T) {
	view := &recordingView{}
	n := NewNotifier(view, newDispatcher(), 0, (&fakeClock{}).AfterFunc)

	alert := n.Show("boom", SeverityDanger)
	n.Dismiss(alert.ID + 1)
	assert.NotNil(t, view.current)

	n.Dismiss(alert.ID)
	assert.Nil(t, view.current)
}
