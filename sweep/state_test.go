package sweep

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpStateString(t *testing.T) {
	require := require.New(t)

	require.Equal("idle", IdleState.String())
	require.Equal("uploading", UploadingState.String())
	require.Equal("running", RunningState.String())
	require.Equal("awaiting-completion", AwaitingCompletionState.String())
	require.Equal("closed", ClosedState.String())
	require.Equal("failed", FailedState.String())
	require.Equal("unknown", OpState(99).String())
}

func TestOpStateTerminal(t *testing.T) {
	require := require.New(t)

	require.False(IdleState.Terminal())
	require.False(UploadingState.Terminal())
	require.False(RunningState.Terminal())
	require.False(AwaitingCompletionState.Terminal())
	require.True(ClosedState.Terminal())
	require.True(FailedState.Terminal())
}

func TestAtomicOpState(t *testing.T) {
	require := require.New(t)

	var st AtomicOpState
	require.Equal(IdleState, st.Get())

	st.Set(RunningState)
	require.Equal(RunningState, st.Get())
}

func TestProgressEventTerminal(t *testing.T) {
	require := require.New(t)

	require.False(fractionEvent(0.5).Terminal())
	require.True(completedEvent().Terminal())
	require.True(failedEvent(nil).Terminal())
}
