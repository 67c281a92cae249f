package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/scorekeeper-service/internal/events"
	httpserver "github.com/preston-bernstein/scorekeeper-service/internal/http"
	"github.com/preston-bernstein/scorekeeper-service/internal/http/handlers"
	"github.com/preston-bernstein/scorekeeper-service/internal/match"
	"github.com/preston-bernstein/scorekeeper-service/internal/palette"
	"github.com/preston-bernstein/scorekeeper-service/internal/scoring"
)

type fixture struct {
	session *match.Session
	bus     *events.Bus
	server  *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := palette.Builtin(palette.RevisionV2)
	require.NoError(t, err)

	session := match.NewSession(match.Config{Catalogue: cat})
	bus := events.NewInProcessBus(8, nil, nil)
	detach := bus.Attach(session)
	h := handlers.NewHandler(session, bus, nil, handlers.StreamConfig{Heartbeat: time.Hour})
	srv := httptest.NewServer(httpserver.NewRouter(h))

	t.Cleanup(func() {
		detach()
		_ = bus.Close()
		srv.Close()
	})
	return &fixture{session: session, bus: bus, server: srv}
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(&out, NewClient(f.server.URL, f.server.Client()))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestIncDecResetCommands(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "inc", "home")
	require.NoError(t, err)
	_, err = f.run(t, "inc", "Home")
	require.NoError(t, err)
	out, err := f.run(t, "dec", "home")
	require.NoError(t, err)
	assert.Contains(t, out, "Score")
	assert.Equal(t, 1, f.session.State().HomeScore)

	out, err = f.run(t, "dec", "away")
	require.NoError(t, err)
	assert.Contains(t, out, "decrement away left the score unchanged")
	assert.Equal(t, 0, f.session.State().AwayScore)

	_, err = f.run(t, "reset", "home")
	require.NoError(t, err)
	assert.Equal(t, 0, f.session.State().HomeScore)
}

func TestResetAllCommand(t *testing.T) {
	f := newFixture(t)
	f.session.Increment(scoring.Away)
	_, _ = f.session.SetQuickSetValue(scoring.Home, 4)

	_, err := f.run(t, "reset-all")
	require.NoError(t, err)
	st := f.session.State()
	assert.Equal(t, scoring.MatchScore{}, st.MatchScore)
}

func TestUnknownSideIsRejectedLocally(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "inc", "visitors")
	require.Error(t, err)
	assert.True(t, errors.Is(err, scoring.ErrUnknownSide))
	assert.Equal(t, uint64(0), f.session.State().Revision)
}

func TestPaletteCommand(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "palette", "blackOrange")
	require.NoError(t, err)
	entry, ok := f.session.Palettes().Lookup("blackOrange")
	require.True(t, ok)
	assert.Equal(t, entry.Home, f.session.State().HomeColor)

	out, err := f.run(t, "palette", "nope")
	require.NoError(t, err)
	assert.Contains(t, out, `palette "nope" is not in the catalogue`)
	assert.Equal(t, entry.Home, f.session.State().HomeColor)
}

func TestNameAndQuickSetCommands(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "name", "away", "Tigers")
	require.NoError(t, err)
	assert.Contains(t, out, "Tigers")
	assert.Equal(t, "Tigers", f.session.State().AwayTeamName)

	_, err = f.run(t, "quickset", "home", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, f.session.State().HomeQuickSet)
	assert.Equal(t, 0, f.session.State().HomeScore)

	_, err = f.run(t, "quickset", "home", "9")
	assert.ErrorIs(t, err, scoring.ErrQuickSetRange)

	_, err = f.run(t, "quickset", "home", "-1")
	assert.ErrorIs(t, err, scoring.ErrQuickSetRange)

	_, err = f.run(t, "--width", "30", "quickset", "away", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.session.State().AwayQuickSet)

	_, err = f.run(t, "quickset", "home", "two")
	assert.Error(t, err)
}

func TestSettingsCommand(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "[settings]")
	assert.True(t, f.session.State().SettingsOpen)
}

func TestBoardCommand(t *testing.T) {
	f := newFixture(t)
	f.session.Increment(scoring.Home)
	f.session.SetTeamName(scoring.Home, "Lions")

	out, err := f.run(t, "board", "--width", "40")
	require.NoError(t, err)
	assert.Contains(t, out, "Lions")
	assert.Contains(t, out, "rev 2")
}

func TestPalettesCommandFromService(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "palettes")
	require.NoError(t, err)
	assert.Contains(t, out, "palettes v2")
	for _, key := range f.session.Palettes().Keys() {
		assert.Contains(t, out, key)
	}
}

func TestPalettesCommandFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palettes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`revision: club
entries:
  - {key: clubColors, home: "#112233", away: "#445566"}
`), 0o600))

	var out bytes.Buffer
	cmd := newRootCommand(&out, NewClient("http://127.0.0.1:1", nil))
	cmd.SetArgs([]string{"palettes", "--file", path})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "palettes club")
	assert.Contains(t, out.String(), "clubColors")
	assert.Contains(t, out.String(), "#112233 / #445566")
}

func TestPalettesCommandYAML(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "palettes", "--yaml")
	require.NoError(t, err)

	cat, err := palette.Decode([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, f.session.Palettes().Keys(), cat.Keys())
}

func TestStatusErrorCarriesServiceMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"unknown side","requestId":"abc"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client()).SideAction(context.Background(), "home", "increment")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
	assert.Equal(t, "unknown side", statusErr.Message)
	assert.Contains(t, err.Error(), "request abc")
}

func TestStatusErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL+"/", srv.Client()).State(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad Gateway")
}

func TestFollowDeliversSnapshotAndChanges(t *testing.T) {
	f := newFixture(t)
	client := NewClient(f.server.URL, f.server.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	states := make(chan match.State, 4)
	done := make(chan error, 1)
	go func() {
		done <- client.Follow(ctx, func(st match.State) { states <- st })
	}()

	first := <-states
	assert.Equal(t, uint64(0), first.Revision)

	f.session.Increment(scoring.Away)

	select {
	case st := <-states:
		assert.Equal(t, 1, st.AwayScore)
		assert.Equal(t, uint64(1), st.Revision)
	case <-ctx.Done():
		t.Fatal("timed out waiting for change")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			assert.True(t, errors.Is(err, context.Canceled) || strings.Contains(err.Error(), "canceled"))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("follow did not return after cancel")
	}
}

func TestNoOpMessage(t *testing.T) {
	assert.Equal(t, "reset_all left the match unchanged",
		noOpMessage(handlers.MutationResponse{Change: match.Change{Op: match.OpResetAll}}))
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, defaultBaseURL, normalizeBaseURL(""))
	assert.Equal(t, "http://x:1", normalizeBaseURL("http://x:1/"))
}
