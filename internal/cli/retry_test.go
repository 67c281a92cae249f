package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/scorekeeper-service/internal/match"
)

func TestReconnectingFollowerGivesUp(t *testing.T) {
	calls := 0
	boom := errors.New("connection refused")
	var warn bytes.Buffer
	r := newReconnectingFollower(func(ctx context.Context, fn func(match.State)) error {
		calls++
		return boom
	}, &warn, 3, time.Millisecond)

	err := r.Run(context.Background(), func(match.State) {})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
	assert.Contains(t, warn.String(), "reconnecting")
}

func TestReconnectingFollowerResetsAfterDelivery(t *testing.T) {
	calls := 0
	r := newReconnectingFollower(func(ctx context.Context, fn func(match.State)) error {
		calls++
		if calls <= 3 {
			fn(match.State{Revision: uint64(calls)})
			return nil
		}
		return errors.New("down")
	}, &bytes.Buffer{}, 2, time.Millisecond)

	var seen []uint64
	err := r.Run(context.Background(), func(st match.State) { seen = append(seen, st.Revision) })
	require.Error(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, seen)
	assert.Equal(t, 4, calls)
}

func TestReconnectingFollowerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := newReconnectingFollower(func(ctx context.Context, fn func(match.State)) error {
		cancel()
		return errors.New("closed")
	}, &bytes.Buffer{}, 0, 0)

	assert.NoError(t, r.Run(ctx, func(match.State) {}))
	assert.Equal(t, defaultReconnectAttempts, r.maxAttempts)
}
