package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appengine-ltd/wagon-trail/internal/savegame"
	"github.com/appengine-ltd/wagon-trail/internal/travel"
	"github.com/appengine-ltd/wagon-trail/internal/trail"
)

type calmRoller struct{}

func (calmRoller) Float64() float64 { return 0.999 }
func (calmRoller) IntN(int) int     { return 0 }

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	js := trail.NewJourneyState()
	js.Setup("Amanda", []string{"Bob", "Cid"})
	session := travel.NewSession(js, travel.DefaultRules(), travel.NewStore(0), calmRoller{})
	saves := savegame.NewFileStore(filepath.Join(t.TempDir(), "saves.json"))
	srv := New(session, saves, Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestGetJourney(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/journey")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap := decode[Snapshot](t, resp)
	require.NotNil(t, snap.Journey)
	assert.Equal(t, 3, snap.Journey.PartySize())
	assert.Equal(t, trail.DefaultStartingMoney, snap.Journey.Money)
	assert.Equal(t, travel.OutcomeOngoing, snap.Outcome)
	assert.Contains(t, snap.Status, "March 1, 1848")
}

func TestPostCommandAdvancesJourney(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/journey/commands", map[string]string{"input": "buy 100 food"})
	out := decode[commandResponse](t, resp)
	assert.True(t, out.Result.Handled)
	assert.Equal(t, uint32(1400), out.Snapshot.Journey.Money)

	resp = postJSON(t, ts.URL+"/api/journey/commands", map[string]string{"input": "travel 2"})
	out = decode[commandResponse](t, resp)
	assert.Equal(t, 2, out.Result.DaysAdvanced)
	assert.Equal(t, trail.Date{Day: 3, Month: 3, Year: 1848}, out.Snapshot.Journey.Date())
	assert.Equal(t, uint32(88), out.Snapshot.Journey.Inventory().QuantityOf(trail.ItemFood))
}

func TestPostCommandRejectsBadJSON(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/journey/commands", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSaveLoadDeleteRoundTrip(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/saves", map[string]string{"name": "trailhead"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	saved := decode[SlotSummary](t, resp)
	assert.Equal(t, "trailhead", saved.Name)
	assert.Equal(t, 3, saved.Living)

	decode[commandResponse](t, postJSON(t, ts.URL+"/api/journey/commands", map[string]string{"input": "buy 50 food"}))

	resp, err := http.Get(ts.URL + "/api/saves")
	require.NoError(t, err)
	list := decode[[]SlotSummary](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)

	resp = postJSON(t, ts.URL+"/api/saves/"+saved.ID+"/load", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[Snapshot](t, resp)
	assert.Equal(t, trail.DefaultStartingMoney, snap.Journey.Money, "load restores the saved money")

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/saves/"+saved.ID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/saves/"+saved.ID+"/load", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaveCommandThroughParser(t *testing.T) {
	_, ts := newTestServer(t)
	out := decode[commandResponse](t, postJSON(t, ts.URL+"/api/journey/commands", map[string]string{"input": "save camp"}))
	assert.Equal(t, `Saved "camp".`, out.Result.Message)

	out = decode[commandResponse](t, postJSON(t, ts.URL+"/api/journey/commands", map[string]string{"input": "load camp"}))
	assert.Equal(t, `Loaded "camp".`, out.Result.Message)
}

func TestWebsocketStreamsEvents(t *testing.T) {
	srv, ts := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var first frame
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "snapshot", first.Type)
	assert.Equal(t, 1, srv.Hub().Count())

	decode[commandResponse](t, postJSON(t, ts.URL+"/api/journey/commands", map[string]string{"input": "rest"}))

	kinds := []trail.EventKind{}
	for len(kinds) < 2 {
		var f frame
		require.NoError(t, conn.ReadJSON(&f))
		require.Equal(t, "event", f.Type)
		require.NotNil(t, f.Event)
		kinds = append(kinds, f.Event.Kind)
	}
	assert.Equal(t, []trail.EventKind{trail.EventDateAdvanced, trail.EventTravelDay}, kinds)
}
