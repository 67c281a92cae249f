package events

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/preston-bernstein/scorekeeper-service/internal/events/mocks"
	"github.com/preston-bernstein/scorekeeper-service/internal/match"
	"github.com/preston-bernstein/scorekeeper-service/internal/metrics"
	"github.com/preston-bernstein/scorekeeper-service/internal/palette"
	"github.com/preston-bernstein/scorekeeper-service/internal/scoring"
	"github.com/preston-bernstein/scorekeeper-service/internal/testutil"
)

func newSession(t *testing.T) *match.Session {
	t.Helper()
	cat, err := palette.Builtin(palette.RevisionV2)
	require.NoError(t, err)
	return match.NewSession(match.Config{Catalogue: cat})
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "event channel closed early")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestInProcessBusDeliversSessionChanges(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	rec := metrics.NewRecorder()
	bus := NewInProcessBus(8, logger, rec)
	defer bus.Close()

	session := newSession(t)
	detach := bus.Attach(session)
	defer detach()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	session.Increment(scoring.Home)
	ev := receive(t, events)

	assert.Equal(t, session.ID(), ev.SessionID)
	assert.Equal(t, uint64(1), ev.Revision)
	assert.Equal(t, match.OpIncrement, ev.Change.Op)
	assert.Equal(t, "home", ev.Change.Side)
	assert.True(t, ev.Change.Applied)
	assert.Equal(t, 1, ev.State.HomeScore)
	assert.Equal(t, "#009e73", ev.State.HomeColor.Hex())

	session.SelectPalette("unknown")
	ev = receive(t, events)
	assert.Equal(t, match.OpSelectPalette, ev.Change.Op)
	assert.False(t, ev.Change.Applied)

	assert.Equal(t, 2, rec.Snapshot().Published)
}

func TestSubscribeStopsOnContextCancel(t *testing.T) {
	bus := NewInProcessBus(1, nil, nil)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok, "expected channel to close")
	case <-time.After(2 * time.Second):
		t.Fatal("expected subscription to end after cancel")
	}
}

func TestPublishSetsMetadata(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	rec := metrics.NewRecorder()
	bus := NewBus(pub, nil, nil, rec)

	session := newSession(t)
	bus.Attach(session)

	pub.EXPECT().
		Publish(TopicMatchChanged, gomock.Any()).
		DoAndReturn(func(_ string, msgs ...*message.Message) error {
			require.Len(t, msgs, 1)
			assert.Equal(t, session.ID(), middleware.MessageCorrelationID(msgs[0]))
			assert.Equal(t, string(match.OpResetAll), msgs[0].Metadata.Get(metadataOp))
			assert.NotEmpty(t, msgs[0].UUID)
			return nil
		})

	session.ResetAll()
	assert.Equal(t, 1, rec.Snapshot().Published)
}

func TestPublishFailureIsLoggedAndCounted(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	logger, buf := testutil.NewBufferLogger()
	rec := metrics.NewRecorder()
	bus := NewBus(pub, nil, logger, rec)

	session := newSession(t)
	bus.Attach(session)

	pub.EXPECT().Publish(TopicMatchChanged, gomock.Any()).Return(errors.New("broker down"))

	state := session.Increment(scoring.Away)

	assert.Equal(t, 1, state.AwayScore, "session must not be affected by publish failures")
	assert.Equal(t, 1, rec.Snapshot().PublishErrors)
	assert.True(t, strings.Contains(buf.String(), "publish match event failed"))
}

func TestClosedBusCountsErrors(t *testing.T) {
	rec := metrics.NewRecorder()
	bus := NewInProcessBus(1, nil, rec)
	require.NoError(t, bus.Close())

	session := newSession(t)
	bus.Attach(session)
	session.Increment(scoring.Home)

	assert.Equal(t, 1, rec.Snapshot().PublishErrors)
}

func TestSubscribeWithoutSubscriber(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := NewBus(mocks.NewMockPublisher(ctrl), nil, nil, nil)
	_, err := bus.Subscribe(context.Background())
	assert.Error(t, err)
}

func TestCloseClosesPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	pub.EXPECT().Close().Return(nil)

	assert.NoError(t, NewBus(pub, nil, nil, nil).Close())
}
