package words

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestPattern(t *testing.T) {
	if got := Pattern(5); got != "?????" {
		t.Errorf("Pattern(5) = %q", got)
	}
	if got := Pattern(0); got != "" {
		t.Errorf("Pattern(0) = %q", got)
	}
}

func TestEmbeddedCoversAllLengths(t *testing.T) {
	src := NewEmbedded()
	ctx := context.Background()
	for n := 3; n <= 10; n++ {
		ws, err := src.Candidates(ctx, n)
		if err != nil {
			t.Fatalf("Candidates(%d): %v", n, err)
		}
		for _, w := range ws {
			if len(w) != n || !isAlpha(w) {
				t.Fatalf("Candidates(%d) returned %q", n, w)
			}
			if !src.Validate(ctx, w) {
				t.Fatalf("answer %q is not a valid guess", w)
			}
		}
	}
	if _, err := src.Candidates(ctx, 11); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("Candidates(11) err = %v, want ErrNoCandidates", err)
	}
	if !src.Validate(ctx, " Crane ") {
		t.Error("Validate should normalize case and space")
	}
	if src.Validate(ctx, "qzxvv") {
		t.Error("gibberish validated")
	}
	a, g := src.Stats()
	if a == 0 || g < a {
		t.Errorf("Stats = %d answers, %d allowed", a, g)
	}
}

// fakeAPI serves Datamuse at /words and Free Dictionary at /dict/{word}.
type fakeAPI struct {
	words     string // JSON body for /words
	wordsCode int
	known     map[string]bool
	dictCalls atomic.Int32
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/words", func(w http.ResponseWriter, r *http.Request) {
		if f.wordsCode != 0 {
			w.WriteHeader(f.wordsCode)
			return
		}
		if r.URL.Query().Get("max") == "1" {
			sp := r.URL.Query().Get("sp")
			if f.known[sp] {
				fmt.Fprintf(w, `[{"word":%q,"score":100,"tags":["f:10"]}]`, sp)
			} else {
				fmt.Fprint(w, `[{"word":"other","score":1}]`)
			}
			return
		}
		fmt.Fprint(w, f.words)
	})
	mux.HandleFunc("/dict/", func(w http.ResponseWriter, r *http.Request) {
		f.dictCalls.Add(1)
		if f.known[strings.TrimPrefix(r.URL.Path, "/dict/")] {
			fmt.Fprint(w, `[{}]`)
			return
		}
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDatamuseCandidatesFilter(t *testing.T) {
	api := &fakeAPI{words: `[
		{"word":"Crane","score":1,"tags":["f:12.5"]},
		{"word":"slate","score":1,"tags":["f:0.5"]},
		{"word":"ab-cd","score":1,"tags":["f:3"]},
		{"word":"plants","score":1,"tags":["f:8"]},
		{"word":"flint","score":1,"tags":["pron:x","f:0.9"]},
		{"word":"brave","score":1}
	]`}
	srv := api.server(t)
	d := NewDatamuse(srv.URL, srv.URL+"/dict", time.Second)

	got, err := d.Candidates(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "crane,flint" {
		t.Errorf("Candidates = %v, want [crane flint]", got)
	}

	api.words = `[{"word":"slate","tags":["f:0.1"]}]`
	if _, err := d.Candidates(context.Background(), 5); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("rare-only err = %v, want ErrNoCandidates", err)
	}
}

func TestDatamuseValidate(t *testing.T) {
	api := &fakeAPI{known: map[string]bool{"crane": true, "tryst": true}}
	srv := api.server(t)
	d := NewDatamuse(srv.URL, srv.URL+"/dict", time.Second)
	ctx := context.Background()

	if d.Validate(ctx, "   ") {
		t.Error("blank word validated")
	}
	if api.dictCalls.Load() != 0 {
		t.Error("blank word reached the dictionary")
	}
	if !d.Validate(ctx, "CRANE") {
		t.Error("datamuse exact match rejected")
	}
	if api.dictCalls.Load() != 0 {
		t.Error("exact match should not consult the dictionary")
	}
	if d.Validate(ctx, "qzxvv") {
		t.Error("unknown word validated")
	}
	if api.dictCalls.Load() != 1 {
		t.Errorf("dictionary calls = %d, want 1", api.dictCalls.Load())
	}

	// Datamuse down: the dictionary decides.
	api.wordsCode = http.StatusBadGateway
	if !d.Validate(ctx, "tryst") {
		t.Error("dictionary fallback rejected a known word")
	}
	if d.Validate(ctx, "qzxvv") {
		t.Error("dictionary fallback accepted an unknown word")
	}
}

func TestDatamuseValidateFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	d := NewDatamuse(url, url+"/dict", 200*time.Millisecond)
	if !d.Validate(context.Background(), "qzxvv") {
		t.Error("unreachable validation should accept the word")
	}
	if _, err := d.Candidates(context.Background(), 5); err == nil {
		t.Error("unreachable candidates should fail")
	}
}

type stubSource struct {
	words []string
	err   error
	valid bool
}

func (s stubSource) Candidates(context.Context, int) ([]string, error) { return s.words, s.err }
func (s stubSource) Validate(context.Context, string) bool { return s.valid }

func TestChainFallsBack(t *testing.T) {
	ctx := context.Background()
	down := stubSource{err: errors.New("boom"), valid: true}
	local := stubSource{words: []string{"crane"}}

	got, err := Chain{Primary: down, Fallback: local}.Candidates(ctx, 5)
	if err != nil || len(got) != 1 || got[0] != "crane" {
		t.Fatalf("Candidates = %v, %v", got, err)
	}
	if !(Chain{Primary: down, Fallback: local}).Validate(ctx, "x") {
		t.Error("validation should use the primary source")
	}

	empty := stubSource{err: ErrNoCandidates}
	_, err = Chain{Primary: down, Fallback: empty}.Candidates(ctx, 5)
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("both failing err = %v, want ErrNoCandidates", err)
	}
}

func TestDailyIsStable(t *testing.T) {
	ctx := context.Background()
	d := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	a := stubSource{words: []string{"crane", "slate", "brave", "flint"}}
	b := stubSource{words: []string{"flint", "brave", "crane", "slate", "crane"}}

	wa, err := Daily(ctx, a, 5, d, "salt")
	if err != nil {
		t.Fatal(err)
	}
	wb, _ := Daily(ctx, b, 5, d.Add(10*time.Hour), "salt")
	if wa != wb {
		t.Errorf("same pool and date gave %q and %q", wa, wb)
	}
	if _, err := Daily(ctx, stubSource{err: ErrNoCandidates}, 5, d, "salt"); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("empty source err = %v", err)
	}
}

func TestPick(t *testing.T) {
	if _, err := Pick(nil); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("Pick(nil) err = %v", err)
	}
	if w, err := Pick([]string{"only"}); err != nil || w != "only" {
		t.Errorf("Pick = %q, %v", w, err)
	}
}
