package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"minesweeper/internal/game"
	"minesweeper/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) (*service.GameService, *Hub, string) {
	t.Helper()
	cat, err := game.NewCatalog(game.Difficulty{Name: game.DifficultyCustom, Rows: 3, Cols: 3, Mines: 2})
	require.NoError(t, err)
	svc, err := service.NewGameService(cat, service.NewTokenIssuer("test-secret"), game.DifficultyCustom,
		service.WithTickInterval(0),
		service.WithPlacer(func() game.MinePlacer {
			return game.FixedPlacer(game.Pos{Row: 1, Col: 0}, game.Pos{Row: 1, Col: 2})
		}),
	)
	require.NoError(t, err)

	hub := NewHub(svc)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", HandleWS(hub, ""))
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		hub.Close()
		srv.Close()
		svc.Close()
	})
	return svc, hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// next reads until a message of type want arrives.
func next(t *testing.T, conn *websocket.Conn, want string) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg received
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return msg
		}
	}
}

func TestHub_StateOnConnect(t *testing.T) {
	svc, hub, url := newTestServer(t)
	conn := dial(t, url)

	msg := next(t, conn, MsgState)
	var view service.SessionView
	require.NoError(t, json.Unmarshal(msg.Payload, &view))
	assert.Equal(t, svc.Snapshot().ID, view.ID)
	assert.Equal(t, game.StateReady, view.Display.State)

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHub_RevealBroadcasts(t *testing.T) {
	_, _, url := newTestServer(t)
	player := dial(t, url)
	watcher := dial(t, url)
	next(t, player, MsgState)
	next(t, watcher, MsgState)

	require.NoError(t, player.WriteJSON(Message{Type: MsgReveal, Payload: CellPayload{Row: 0, Col: 1}}))

	res := next(t, player, MsgResult)
	var out service.RevealOutcome
	require.NoError(t, json.Unmarshal(res.Payload, &out))
	assert.Equal(t, []game.Pos{{Row: 0, Col: 1}}, out.Revealed)
	assert.Equal(t, game.StatePlaying, out.Display.State)

	st := next(t, watcher, MsgState)
	var view service.SessionView
	require.NoError(t, json.Unmarshal(st.Payload, &view))
	assert.Equal(t, game.CellRevealed, view.Board.Cells[0][1].State)
	assert.Equal(t, 2, view.Board.Cells[0][1].Count)
}

func TestHub_Errors(t *testing.T) {
	svc, _, url := newTestServer(t)
	conn := dial(t, url)
	next(t, conn, MsgState)
	stale := svc.Snapshot().Token

	_, err := svc.Restart()
	require.NoError(t, err)

	cases := []struct {
		msg  any
		code string
	}{
		{Message{Type: MsgReveal, Payload: CellPayload{Row: 0, Col: 0, Token: stale}}, "stale_session"},
		{Message{Type: MsgFlag, Payload: CellPayload{Row: 9, Col: 9}}, "out_of_range"},
		{Message{Type: MsgNewGame, Payload: NewGamePayload{Difficulty: "nightmare"}}, "unknown_difficulty"},
		{Message{Type: "teleport"}, "bad_request"},
	}
	for _, tc := range cases {
		require.NoError(t, conn.WriteJSON(tc.msg))
		msg := next(t, conn, MsgError)
		var p ErrorPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &p))
		assert.Equal(t, tc.code, p.Code)
	}
}

func TestHub_PingAndRestart(t *testing.T) {
	svc, _, url := newTestServer(t)
	conn := dial(t, url)
	next(t, conn, MsgState)

	require.NoError(t, conn.WriteJSON(Message{Type: MsgPing}))
	next(t, conn, MsgPong)

	before := svc.Snapshot().ID
	require.NoError(t, conn.WriteJSON(Message{Type: MsgRestart}))
	msg := next(t, conn, MsgState)

	var view service.SessionView
	require.NoError(t, json.Unmarshal(msg.Payload, &view))
	assert.NotEqual(t, before, view.ID)
}

func TestHub_TickCarriesSessionAndSeq(t *testing.T) {
	svc, _, url := newTestServer(t)
	conn := dial(t, url)
	next(t, conn, MsgState)

	require.NoError(t, conn.WriteJSON(Message{Type: MsgReveal, Payload: CellPayload{Row: 0, Col: 1}}))
	st := next(t, conn, MsgState)
	var view service.SessionView
	require.NoError(t, json.Unmarshal(st.Payload, &view))

	_, err := svc.Tick()
	require.NoError(t, err)

	var tick TickPayload
	require.NoError(t, json.Unmarshal(next(t, conn, MsgTick).Payload, &tick))
	assert.Equal(t, view.ID, tick.SessionID)
	assert.Equal(t, view.Seq+1, tick.Seq)
	assert.Equal(t, 1, tick.ElapsedSeconds)
}
