// Command ws_smoke plays one game against a running server over the
// websocket and exits non-zero if the session never finishes.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"minesweeper/internal/game"
	"minesweeper/internal/service"
	"minesweeper/internal/ws"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	difficulty := os.Getenv("SMOKE_DIFFICULTY")
	if difficulty == "" {
		difficulty = game.DifficultyEasy
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	url := fmt.Sprintf("ws://127.0.0.1:%s/ws", port)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// the connect snapshot, then the fresh game we ask for
	if _, err := readState(conn); err != nil {
		log.Fatalf("initial state: %v", err)
	}
	send(conn, ws.Message{Type: ws.MsgNewGame, Payload: ws.NewGamePayload{Difficulty: difficulty}})
	view, err := readState(conn)
	if err != nil {
		log.Fatalf("new game: %v", err)
	}
	log.Printf("session %s: %dx%d, %d mines", view.ID, view.Board.Rows, view.Board.Cols, view.Display.MineCount)

	deadline := time.Now().Add(30 * time.Second)
	for !view.Display.State.Terminal() {
		if time.Now().After(deadline) {
			log.Fatalf("game did not finish, state=%s", view.Display.State)
		}
		row, col, ok := firstHidden(view.Board)
		if !ok {
			log.Fatalf("no hidden cell left in state %s", view.Display.State)
		}
		send(conn, ws.Message{Type: ws.MsgReveal, Payload: ws.CellPayload{Row: row, Col: col, Token: view.Token}})
		if view, err = readState(conn); err != nil {
			log.Fatalf("reveal (%d,%d): %v", row, col, err)
		}
	}

	log.Printf("session %s finished: %s after %ds", view.ID, view.Display.State, view.Display.ElapsedSeconds)
}

func send(conn *websocket.Conn, msg ws.Message) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Fatalf("write %s: %v", msg.Type, err)
	}
}

// readState skips ticks and results until the next state push.
func readState(conn *websocket.Conn) (service.SessionView, error) {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			return service.SessionView{}, err
		}
		switch env.Type {
		case ws.MsgState:
			var view service.SessionView
			err := json.Unmarshal(env.Payload, &view)
			return view, err
		case ws.MsgError:
			return service.SessionView{}, fmt.Errorf("server error: %s", env.Payload)
		}
	}
}

func firstHidden(b game.BoardView) (int, int, bool) {
	for r, row := range b.Cells {
		for c, cell := range row {
			if cell.State == game.CellHidden {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}
