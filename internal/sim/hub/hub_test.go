package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"greenhouse_console/internal/logger"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hubServer registers every incoming connection under the user ID carried in
// the X-User header.
func hubServer(t *testing.T, h *Hub) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		userID := 1
		username := "grower"
		if r.Header.Get("X-User") == "2" {
			userID, username = 2, "boss"
		}
		h.Register(conn, userID, username, "user")
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialHub(t *testing.T, url, user string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if user != "" {
		header.Set("X-User", user)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("unmarshal %s: %v", msg, err)
	}
	return env.Event, env.Data
}

func waitOnline(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if len(h.Online()) == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("online count never reached %d, have %d", n, len(h.Online()))
}

func TestHub_BroadcastReachesEveryConsole(t *testing.T) {
	h := New(logger.Nop())
	url := hubServer(t, h)

	c1 := dialHub(t, url, "1")
	c2 := dialHub(t, url, "2")
	waitOnline(t, h, 2)

	h.Broadcast("new_reading", map[string]float64{"temp": 24.5})

	for _, conn := range []*websocket.Conn{c1, c2} {
		event, data := readEnvelope(t, conn)
		if event != "new_reading" {
			t.Fatalf("event = %q", event)
		}
		var body struct {
			Temp float64 `json:"temp"`
		}
		if err := json.Unmarshal(data, &body); err != nil || body.Temp != 24.5 {
			t.Fatalf("data = %s, err = %v", data, err)
		}
	}
}

func TestHub_SecondSessionKicksFirst(t *testing.T) {
	h := New(logger.Nop())
	url := hubServer(t, h)

	first := dialHub(t, url, "1")
	waitOnline(t, h, 1)

	_ = dialHub(t, url, "1")
	waitOnline(t, h, 1) // still one: the duplicate replaced the original

	event, data := readEnvelope(t, first)
	if event != "force_disconnect" {
		t.Fatalf("event = %q, want force_disconnect", event)
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Reason != "duplicate session" {
		t.Fatalf("data = %s, err = %v", data, err)
	}

	// The kicked transport closes after the kill message.
	_ = first.SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, _, err := first.ReadMessage(); err == nil {
		t.Fatalf("kicked connection must close")
	}
}

func TestHub_OnlineListsConnectedOperators(t *testing.T) {
	h := New(logger.Nop())
	url := hubServer(t, h)

	dialHub(t, url, "2")
	waitOnline(t, h, 1)

	online := h.Online()
	if online[0].Username != "boss" || online[0].Role != "user" {
		t.Fatalf("online = %+v", online)
	}
	if online[0].ConnectedAt.IsZero() {
		t.Fatalf("connectedAt not stamped")
	}
}
