package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/robalobadob/wordhunt/internal/daily"
	"github.com/robalobadob/wordhunt/internal/session"
	"github.com/robalobadob/wordhunt/internal/stats"
	"github.com/robalobadob/wordhunt/internal/store"
	"github.com/robalobadob/wordhunt/internal/words"
)

// fiveOnly offers "crane" for length 5 and nothing else.
type fiveOnly struct{}

func (fiveOnly) Candidates(_ context.Context, n int) ([]string, error) {
	if n != 5 {
		return nil, words.ErrNoCandidates
	}
	return []string{"crane"}, nil
}

func (fiveOnly) Validate(_ context.Context, w string) bool { return w != "qzxvv" }

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	db, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.Migrate(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	users := store.NewUsers(db)
	dailyStore := daily.NewStore(db)
	st := stats.NewStore(store.NewMemoryKV())
	mgr := session.NewManager(session.Config{
		Source:   fiveOnly{},
		Games:    store.NewGames(nil),
		Stats:    st,
		Accounts: users,
		Daily:    dailyStore,
	})
	srv := httptest.NewServer(New(cfg, Deps{Sessions: mgr, Stats: st, Users: users, Daily: dailyStore}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig() Config {
	return Config{
		ClientOrigin:   "http://localhost:5173",
		JWTSecret:      "test-secret",
		JWTExpiresDays: 1,
		CookieName:     "wordhunt_token",
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
}

type client struct {
	t    *testing.T
	base string
	hc   *http.Client
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	jar, _ := cookiejar.New(nil)
	return &client{t: t, base: srv.URL, hc: &http.Client{Jar: jar}}
}

// do sends body as JSON and decodes the response into out when non-nil.
func (c *client) do(method, path string, body, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		c.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.hc.Do(req)
	if err != nil {
		c.t.Fatal(err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			c.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return res.StatusCode
}

type errBody struct {
	Error string `json:"error"`
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, testConfig())
	c := newClient(t, srv)
	var ok map[string]bool
	if code := c.do(http.MethodGet, "/health", nil, &ok); code != http.StatusOK || !ok["ok"] {
		t.Fatalf("health = %d %v", code, ok)
	}
	res, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", res.StatusCode)
	}
}

func TestGameFlow(t *testing.T) {
	srv := newTestServer(t, testConfig())
	c := newClient(t, srv)

	var e errBody
	if code := c.do(http.MethodPost, "/game/new", map[string]any{"length": "11"}, &e); code != http.StatusBadRequest || e.Error != "invalid_length" {
		t.Errorf("bad length = %d %q", code, e.Error)
	}
	if code := c.do(http.MethodPost, "/game/new", map[string]any{"length": 7}, &e); code != http.StatusServiceUnavailable || e.Error != "no_candidates" {
		t.Errorf("no candidates = %d %q", code, e.Error)
	}

	var st session.State
	if code := c.do(http.MethodPost, "/game/new", map[string]any{"length": 5}, &st); code != http.StatusCreated {
		t.Fatalf("new game = %d", code)
	}
	if st.GameID == "" || st.Length != 5 || st.MaxAttempts != 5 {
		t.Fatalf("state = %+v", st)
	}

	if code := c.do(http.MethodPost, "/game/guess", map[string]string{"gameId": st.GameID, "guess": "qzxvv"}, &e); code != http.StatusBadRequest || e.Error != "invalid_word" {
		t.Errorf("invalid word = %d %q", code, e.Error)
	}
	if code := c.do(http.MethodPost, "/game/guess", map[string]string{"gameId": st.GameID, "guess": "cat"}, &e); code != http.StatusBadRequest || e.Error != "length_mismatch" {
		t.Errorf("short guess = %d %q", code, e.Error)
	}

	var hint session.HintResult
	if code := c.do(http.MethodPost, "/game/hint", map[string]string{"gameId": st.GameID, "kind": "position"}, &hint); code != http.StatusOK || !hint.Granted {
		t.Errorf("hint = %d %+v", code, hint)
	}
	c.do(http.MethodPost, "/game/hint", map[string]string{"gameId": st.GameID, "kind": "letter"}, &hint)
	if hint.Granted || hint.Reason != "conflict" {
		t.Errorf("second kind on row = %+v", hint)
	}

	var g session.GuessResult
	if code := c.do(http.MethodPost, "/game/guess", map[string]string{"gameId": st.GameID, "guess": "crane"}, &g); code != http.StatusOK {
		t.Fatalf("winning guess = %d", code)
	}
	if g.State.Status != "won" || g.CorrectCount != 5 || g.State.Answer != "crane" {
		t.Errorf("guess result = %+v", g)
	}

	var list struct {
		Entries []map[string]any `json:"entries"`
	}
	if code := c.do(http.MethodGet, "/stats", nil, &list); code != http.StatusOK || len(list.Entries) != 1 {
		t.Fatalf("stats = %d %+v", code, list)
	}
	if list.Entries[0]["word"] != "crane" || list.Entries[0]["serial"] != float64(1) {
		t.Errorf("entry = %v", list.Entries[0])
	}

	// A different browser gets its own namespace.
	other := newClient(t, srv)
	if code := other.do(http.MethodGet, "/game/"+st.GameID, nil, &e); code != http.StatusNotFound {
		t.Errorf("other player get = %d", code)
	}
	var otherList struct {
		Entries []map[string]any `json:"entries"`
	}
	other.do(http.MethodGet, "/stats", nil, &otherList)
	if len(otherList.Entries) != 0 {
		t.Errorf("other player sees %d entries", len(otherList.Entries))
	}

	if code := c.do(http.MethodPost, "/game/reset", map[string]string{"gameId": st.GameID}, nil); code != http.StatusOK {
		t.Errorf("reset = %d", code)
	}
	if code := c.do(http.MethodGet, "/game/"+st.GameID, nil, &e); code != http.StatusNotFound {
		t.Errorf("get after reset = %d", code)
	}
}

func TestStatsFilters(t *testing.T) {
	srv := newTestServer(t, testConfig())
	c := newClient(t, srv)

	var sel stats.Selection
	if code := c.do(http.MethodPost, "/stats/filters/toggle", map[string]any{"type": "TIME", "index": 1}, &sel); code != http.StatusOK {
		t.Fatalf("toggle = %d", code)
	}
	if len(sel[stats.FilterTime]) != 1 {
		t.Errorf("after toggle = %v", sel)
	}
	c.do(http.MethodGet, "/stats/filters", nil, &sel)
	if len(sel[stats.FilterTime]) != 1 {
		t.Errorf("saved = %v", sel)
	}

	var e errBody
	if code := c.do(http.MethodPut, "/stats/filters", map[string][]int{"ATTEMPTS": {9}}, &e); code != http.StatusBadRequest {
		t.Errorf("bad put = %d", code)
	}
	if code := c.do(http.MethodGet, "/stats?sort=bogus", nil, &e); code != http.StatusBadRequest || e.Error != "invalid_query" {
		t.Errorf("bad sort = %d %q", code, e.Error)
	}

	type listing struct {
		Filters stats.Selection `json:"filters"`
		Next    stats.Direction `json:"nextDirection"`
	}
	var saved listing
	c.do(http.MethodGet, "/stats?sort=time&dir=asc", nil, &saved)
	if len(saved.Filters[stats.FilterTime]) != 1 || saved.Next != stats.DirDescending {
		t.Errorf("saved filters not applied: %+v", saved)
	}
	var explicit listing
	c.do(http.MethodGet, "/stats?WORD_LENGTH=0,2", nil, &explicit)
	if _, ok := explicit.Filters[stats.FilterTime]; ok || len(explicit.Filters[stats.FilterWordLength]) != 2 {
		t.Errorf("explicit filters should replace saved ones: %+v", explicit.Filters)
	}

	var cleared stats.Selection
	if code := c.do(http.MethodDelete, "/stats/filters", nil, &cleared); code != http.StatusOK || len(cleared) != 0 {
		t.Errorf("clear = %d %v", code, cleared)
	}

	var avail map[stats.FilterType][]rangeView
	c.do(http.MethodGet, "/stats/available", nil, &avail)
	if len(avail[stats.FilterTime]) != len(stats.Ranges[stats.FilterTime]) || avail[stats.FilterTime][0].Available {
		t.Errorf("available = %+v", avail)
	}
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t, testConfig())
	c := newClient(t, srv)

	var e errBody
	if code := c.do(http.MethodGet, "/auth/me", nil, &e); code != http.StatusUnauthorized {
		t.Errorf("me before login = %d", code)
	}
	if code := c.do(http.MethodPost, "/auth/signup", credentials{Username: "al", Password: "longenough"}, &e); code != http.StatusBadRequest {
		t.Errorf("short username = %d", code)
	}
	var u store.User
	if code := c.do(http.MethodPost, "/auth/signup", credentials{Username: "alice", Password: "longenough"}, &u); code != http.StatusCreated {
		t.Fatalf("signup = %d", code)
	}
	if code := c.do(http.MethodGet, "/auth/me", nil, &u); code != http.StatusOK || u.Username != "alice" {
		t.Errorf("me = %d %+v", code, u)
	}

	var st session.State
	c.do(http.MethodPost, "/game/new", map[string]any{"length": 5}, &st)
	c.do(http.MethodPost, "/game/guess", map[string]string{"gameId": st.GameID, "guess": "crane"}, nil)
	c.do(http.MethodGet, "/auth/me", nil, &u)
	if u.GamesPlayed != 1 || u.Wins != 1 || u.Streak != 1 {
		t.Errorf("account counters = %+v", u)
	}

	other := newClient(t, srv)
	if code := other.do(http.MethodPost, "/auth/signup", credentials{Username: "ALICE", Password: "longenough"}, &e); code != http.StatusConflict {
		t.Errorf("duplicate signup = %d", code)
	}
	if code := other.do(http.MethodPost, "/auth/login", credentials{Username: "alice", Password: "wrong-password"}, &e); code != http.StatusUnauthorized {
		t.Errorf("bad login = %d", code)
	}
	if code := other.do(http.MethodPost, "/auth/login", credentials{Username: "Alice", Password: "longenough"}, &u); code != http.StatusOK {
		t.Errorf("login = %d", code)
	}

	c.do(http.MethodPost, "/auth/logout", nil, nil)
	if code := c.do(http.MethodGet, "/auth/me", nil, &e); code != http.StatusUnauthorized {
		t.Errorf("me after logout = %d", code)
	}
}

func TestDailyLeaderboard(t *testing.T) {
	srv := newTestServer(t, testConfig())
	c := newClient(t, srv)

	var st session.State
	if code := c.do(http.MethodPost, "/game/new", map[string]any{"length": 5, "mode": "daily"}, &st); code != http.StatusCreated {
		t.Fatalf("daily start = %d", code)
	}
	c.do(http.MethodPost, "/game/guess", map[string]string{"gameId": st.GameID, "guess": "crane"}, nil)

	var e errBody
	if code := c.do(http.MethodPost, "/game/new", map[string]any{"length": 5, "mode": "daily"}, &e); code != http.StatusConflict || e.Error != "daily_already_played" {
		t.Errorf("daily replay = %d %q", code, e.Error)
	}

	// A signed-in player shows up by username.
	member := newClient(t, srv)
	member.do(http.MethodPost, "/auth/signup", credentials{Username: "alice", Password: "longenough"}, nil)
	member.do(http.MethodPost, "/game/new", map[string]any{"length": 5, "mode": "daily"}, &st)
	member.do(http.MethodPost, "/game/guess", map[string]string{"gameId": st.GameID, "guess": "crane"}, nil)

	var raw json.RawMessage
	if code := c.do(http.MethodGet, "/daily/leaderboard?length=5", nil, &raw); code != http.StatusOK {
		t.Fatalf("leaderboard = %d", code)
	}
	var lb lbRes
	if err := json.Unmarshal(raw, &lb); err != nil {
		t.Fatal(err)
	}
	if len(lb.Top) != 2 {
		t.Fatalf("leaderboard = %s", raw)
	}
	players := map[string]bool{}
	for i, row := range lb.Top {
		players[row.Player] = true
		if row.Rank != i+1 || row.Attempts != 1 {
			t.Errorf("row %d = %+v", i, row)
		}
	}
	if !players["guest"] || !players["alice"] {
		t.Errorf("players = %v", players)
	}

	// Neither the guest's cookie nor an owner key is published.
	u, _ := url.Parse(srv.URL)
	var anon string
	for _, ck := range c.hc.Jar.Cookies(u) {
		if ck.Name == anonCookieName {
			anon = ck.Value
		}
	}
	if anon == "" {
		t.Fatal("no anonymous cookie issued")
	}
	if body := string(raw); strings.Contains(body, anon) || strings.Contains(body, "anon:") || strings.Contains(body, "user:") {
		t.Errorf("leaderboard leaks player keys: %s", body)
	}
	if code := c.do(http.MethodGet, "/daily/leaderboard?date=yesterday", nil, &e); code != http.StatusBadRequest {
		t.Errorf("bad date = %d", code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1
	srv := newTestServer(t, cfg)
	c := newClient(t, srv)

	var e errBody
	c.do(http.MethodPost, "/game/new", map[string]any{"length": 5}, nil)
	if code := c.do(http.MethodPost, "/game/new", map[string]any{"length": 5}, &e); code != http.StatusTooManyRequests {
		t.Errorf("second start = %d, want 429", code)
	}
	// Unlimited routes still answer.
	if code := c.do(http.MethodGet, "/health", nil, nil); code != http.StatusOK {
		t.Errorf("health = %d", code)
	}
}

func TestLetterRouteBuildsRow(t *testing.T) {
	srv := newTestServer(t, testConfig())
	c := newClient(t, srv)

	var st session.State
	if code := c.do(http.MethodPost, "/game/new", map[string]any{"length": 5}, &st); code != http.StatusCreated {
		t.Fatalf("new game = %d", code)
	}
	var hint session.HintResult
	if code := c.do(http.MethodPost, "/game/hint", map[string]string{"gameId": st.GameID, "kind": "position"}, &hint); code != http.StatusOK || !hint.Granted {
		t.Fatalf("hint = %d %+v", code, hint)
	}

	var e errBody
	if code := c.do(http.MethodPost, "/game/letter", map[string]any{"gameId": st.GameID, "position": 9, "letter": "c"}, &e); code != http.StatusBadRequest || e.Error != "invalid_input" {
		t.Errorf("bad position = %d %q", code, e.Error)
	}
	for i, l := range "crane" {
		if i == hint.Position {
			continue
		}
		var cur session.State
		if code := c.do(http.MethodPost, "/game/letter", map[string]any{"gameId": st.GameID, "position": i, "letter": string(l)}, &cur); code != http.StatusOK {
			t.Fatalf("letter %d = %d", i, code)
		}
		if got := cur.Rows[0].Letters[hint.Position]; got != hint.Letter {
			t.Fatalf("hinted letter lost: %q at %d", got, hint.Position)
		}
	}

	var g session.GuessResult
	if code := c.do(http.MethodPost, "/game/guess", map[string]string{"gameId": st.GameID}, &g); code != http.StatusOK {
		t.Fatalf("submit = %d", code)
	}
	if !g.Evaluated || g.State.Status != "won" {
		t.Errorf("submit result = %+v", g)
	}
}
