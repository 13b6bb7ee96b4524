package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/talgya/fleetcommand/internal/captain"
	"github.com/talgya/fleetcommand/internal/compliance"
	"github.com/talgya/fleetcommand/internal/engine"
	"github.com/talgya/fleetcommand/internal/scenario"
	"github.com/talgya/fleetcommand/internal/sector"
	"github.com/talgya/fleetcommand/internal/world"
)

const testKey = "secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	sec := sector.Generate(sector.GenConfig{Radius: 4, Seed: 9})
	w := world.New(0, 0)
	cfg := scenario.SpawnConfig{Seed: 9, Ships: 3, CrewPerShip: 16}
	scenario.NewSpawner(cfg, sec).Populate(w, compliance.DefaultCatalog().Build())

	return &Server{
		Sim:      engine.NewSimulation(w, sec, engine.DefaultOptions()),
		Eng:      engine.NewEngine(),
		AdminKey: testKey,
	}
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	first := s.Sim.World.Ships[0].Index

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "status", path: "/api/v1/status", want: http.StatusOK},
		{name: "ships", path: "/api/v1/ships", want: http.StatusOK},
		{name: "ship detail", path: fmt.Sprintf("/api/v1/ship/%d", first), want: http.StatusOK},
		{name: "ship bad index", path: "/api/v1/ship/abc", want: http.StatusBadRequest},
		{name: "ship missing", path: "/api/v1/ship/9999", want: http.StatusNotFound},
		{name: "escalations", path: "/api/v1/escalations?pending=true", want: http.StatusOK},
		{name: "compliance", path: "/api/v1/compliance?limit=5", want: http.StatusOK},
		{name: "events", path: "/api/v1/events?category=succession", want: http.StatusOK},
		{name: "speed", path: "/api/v1/speed", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, "", "")
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d, want %d: %s", tt.path, rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestShipsListsFleet(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/ships", "", "")

	var ships []engine.ShipView
	if err := json.NewDecoder(rec.Body).Decode(&ships); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ships) != 3 {
		t.Errorf("ships = %d, want 3", len(ships))
	}
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		token string
		want  int
	}{
		{name: "disabled", key: "", token: "anything", want: http.StatusForbidden},
		{name: "missing token", key: testKey, token: "", want: http.StatusUnauthorized},
		{name: "wrong token", key: testKey, token: "nope", want: http.StatusUnauthorized},
		{name: "valid", key: testKey, token: testKey, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.AdminKey = tt.key
			rec := do(t, s.Handler(), http.MethodPost, "/api/v1/pause", tt.token, `{"paused":true}`)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestPauseAndSpeed(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	do(t, h, http.MethodPost, "/api/v1/pause", testKey, `{"paused":true}`)
	if !s.Eng.Clock().Paused {
		t.Error("engine not paused")
	}

	rec := do(t, h, http.MethodPost, "/api/v1/speed", testKey, `{"speed":5}`)
	if rec.Code != http.StatusOK || s.Eng.Speed() != 5 {
		t.Errorf("speed = %v (status %d), want 5", s.Eng.Speed(), rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/api/v1/speed", testKey, `{"speed":5000}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range speed status = %d, want 400", rec.Code)
	}
}

func TestOrderEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	ship := s.Sim.World.Ships[0].Index

	order := func(typ string, q int) string {
		return fmt.Sprintf(`{"ship":%d,"type":%q,"q":%d,"r":0,"priority":2}`, ship, typ, q)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "issue", body: order("patrol", 1), want: http.StatusOK},
		{name: "busy", body: order("move_to", 0), want: http.StatusConflict},
		{name: "unknown type", body: order("dance", 0), want: http.StatusBadRequest},
		{name: "unknown ship", body: `{"ship":9999,"type":"patrol"}`, want: http.StatusNotFound},
		{name: "bad json", body: `{`, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/order", testKey, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestAcknowledgeEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	log, _ := s.Sim.World.Escalations.Get(s.Sim.World.Ships[0])
	e, _ := log.Raise(captain.EscalationResupply, captain.ReasonResourcesDepleted, 0)

	rec := do(t, h, http.MethodPost, "/api/v1/escalation/ack", testKey, fmt.Sprintf(`{"id":%q}`, e.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("ack status = %d: %s", rec.Code, rec.Body.String())
	}
	if log.Pending() != 0 {
		t.Errorf("pending = %d after ack", log.Pending())
	}

	rec = do(t, h, http.MethodPost, "/api/v1/escalation/ack", testKey, fmt.Sprintf(`{"id":%q}`, e.ID))
	if rec.Code != http.StatusOK {
		t.Errorf("repeat ack status = %d, want 200 while the entry is still logged", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/api/v1/escalation/ack", testKey, `{"id":"not-a-uuid"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/api/v1/escalation/ack", testKey, `{"id":"00000000-0000-0000-0000-000000000001"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
}

func TestAdminRateLimit(t *testing.T) {
	s := newTestServer(t)
	s.AdminRate = 2
	h := s.Handler()

	for i := 0; i < 2; i++ {
		if rec := do(t, h, http.MethodPost, "/api/v1/pause", testKey, `{"paused":false}`); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := do(t, h, http.MethodPost, "/api/v1/pause", testKey, `{"paused":false}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") {
		t.Fatal("first request denied")
	}
	if rl.Allow("a") {
		t.Fatal("second request allowed inside the window")
	}
	if !rl.Allow("b") {
		t.Error("other client denied")
	}
	if got := rl.RetryAfter("a"); got != 61 {
		t.Errorf("RetryAfter = %d, want 61", got)
	}

	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("request denied after the window reset")
	}
}

func TestClientAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	if got := clientAddr(req); got != "10.0.0.7" {
		t.Errorf("clientAddr = %q", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.4, 10.0.0.1")
	if got := clientAddr(req); got != "203.0.113.4" {
		t.Errorf("forwarded clientAddr = %q", got)
	}
}
