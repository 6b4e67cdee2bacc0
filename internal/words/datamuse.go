// internal/words/datamuse.go
//
// Remote word source backed by the Datamuse API, with the Free Dictionary
// API as a second opinion when validating.
//
// Candidates: GET {base}/words?sp=<pattern>&md=f&max=100. A word is kept
// when it has exactly the requested length, is purely alphabetic and its
// frequency tag ("f:<per-million>") exceeds 0.5.
//
// Validate:
//  1. Blank input is invalid without any call.
//  2. Datamuse exact-spelling lookup (max=1); a matching first result is valid.
//  3. Otherwise, or if Datamuse fails, Free Dictionary: 200 is valid, any
//     other status is invalid.
//  4. If Free Dictionary cannot be reached the word is valid.
//
// Every call is single-shot and bounded by the client timeout.

package words

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/wordhunt/internal/metrics"
)

const (
	DefaultDatamuseURL   = "https://api.datamuse.com"
	DefaultDictionaryURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

	minFrequency  = 0.5
	maxCandidates = 100
)

// Datamuse is a Source over the Datamuse and Free Dictionary HTTP APIs.
type Datamuse struct {
	baseURL string
	dictURL string
	client  *http.Client
}

// NewDatamuse builds a remote source. Empty URLs use the public endpoints;
// timeout <= 0 defaults to 5s.
func NewDatamuse(baseURL, dictionaryURL string, timeout time.Duration) *Datamuse {
	if baseURL == "" {
		baseURL = DefaultDatamuseURL
	}
	if dictionaryURL == "" {
		dictionaryURL = DefaultDictionaryURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Datamuse{
		baseURL: strings.TrimRight(baseURL, "/"),
		dictURL: strings.TrimRight(dictionaryURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type datamuseWord struct {
	Word  string   `json:"word"`
	Score int      `json:"score"`
	Tags  []string `json:"tags"`
}

// frequency returns the "f:" tag value, or 0 when absent or malformed.
func (w datamuseWord) frequency() float64 {
	for _, t := range w.Tags {
		if v, ok := strings.CutPrefix(t, "f:"); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return 0
			}
			return f
		}
	}
	return 0
}

func (d *Datamuse) query(ctx context.Context, op string, sp string, limit int) ([]datamuseWord, error) {
	q := url.Values{}
	q.Set("sp", sp)
	q.Set("md", "f")
	q.Set("max", strconv.Itoa(limit))
	u := d.baseURL + "/words?" + q.Encode()

	start := time.Now()
	defer func() {
		metrics.WordSourceDuration.WithLabelValues("datamuse", op).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("datamuse: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("datamuse: status %d", res.StatusCode)
	}
	var out []datamuseWord
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("datamuse: decode: %w", err)
	}
	return out, nil
}

func (d *Datamuse) Candidates(ctx context.Context, length int) ([]string, error) {
	data, err := d.query(ctx, "candidates", Pattern(length), maxCandidates)
	if err != nil {
		metrics.WordSourceRequests.WithLabelValues("datamuse", "candidates", "error").Inc()
		log.Warn().Err(err).Int("length", length).Msg("fetch candidates")
		return nil, err
	}
	words := lo.Uniq(lo.FilterMap(data, func(w datamuseWord, _ int) (string, bool) {
		word := strings.ToLower(w.Word)
		return word, len(word) == length && isAlpha(word) && w.frequency() > minFrequency
	}))
	if len(words) == 0 {
		metrics.WordSourceRequests.WithLabelValues("datamuse", "candidates", "empty").Inc()
		return nil, fmt.Errorf("%w: no common words of length %d", ErrNoCandidates, length)
	}
	metrics.WordSourceRequests.WithLabelValues("datamuse", "candidates", "ok").Inc()
	return words, nil
}

func (d *Datamuse) Validate(ctx context.Context, word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return false
	}
	data, err := d.query(ctx, "validate", word, 1)
	if err != nil {
		log.Debug().Err(err).Str("word", word).Msg("datamuse validation failed, asking dictionary")
	} else if len(data) > 0 && strings.EqualFold(data[0].Word, word) {
		metrics.WordSourceRequests.WithLabelValues("datamuse", "validate", "valid").Inc()
		return true
	}
	return d.dictionary(ctx, word)
}

// dictionary asks Free Dictionary, which answers 404 for unknown words.
func (d *Datamuse) dictionary(ctx context.Context, word string) bool {
	start := time.Now()
	defer func() {
		metrics.WordSourceDuration.WithLabelValues("dictionary", "validate").Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.dictURL+"/"+url.PathEscape(word), nil)
	if err != nil {
		return true
	}
	res, err := d.client.Do(req)
	if err != nil {
		metrics.WordSourceRequests.WithLabelValues("dictionary", "validate", "error").Inc()
		log.Warn().Err(err).Str("word", word).Msg("word validation unavailable, accepting")
		return true
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK {
		metrics.WordSourceRequests.WithLabelValues("dictionary", "validate", "valid").Inc()
		return true
	}
	metrics.WordSourceRequests.WithLabelValues("dictionary", "validate", "invalid").Inc()
	return false
}
