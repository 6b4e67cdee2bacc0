package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/robalobadob/wordhunt/internal/stats"
)

func (s *Server) mountStats(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Get("/", s.handleListStats)
		r.Get("/available", s.handleAvailable)
		r.Get("/filters", s.handleGetFilters)
		r.Put("/filters", s.handlePutFilters)
		r.Delete("/filters", s.handleClearFilters)
		r.Post("/filters/toggle", s.handleToggleFilter)
	})
}

// parseSelection reads ?WORD_LENGTH=0,2&TIME=1 style parameters. ok is false
// when no filter parameter is present at all.
func parseSelection(q url.Values) (sel stats.Selection, ok bool, err error) {
	sel = stats.Selection{}
	for _, t := range stats.FilterTypes {
		raw, present := q[string(t)]
		if !present {
			continue
		}
		ok = true
		for _, part := range strings.Split(strings.Join(raw, ","), ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			i, err := strconv.Atoi(part)
			if err != nil {
				return nil, true, fmt.Errorf("%w: %s=%q", stats.ErrBadRange, t, part)
			}
			sel[t] = append(sel[t], i)
		}
	}
	if err := sel.Validate(); err != nil {
		return nil, ok, err
	}
	return sel.Normalize(), ok, nil
}

type listRes struct {
	Sort      stats.SortField `json:"sort"`
	Direction stats.Direction `json:"direction"`
	Next      stats.Direction `json:"nextDirection"`
	Filters   stats.Selection `json:"filters"`
	Entries   []stats.Entry   `json:"entries"`
}

func (s *Server) handleListStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field, err := stats.ParseSortField(q.Get("sort"))
	if err != nil {
		fail(w, r, err)
		return
	}
	dir, err := stats.ParseDirection(q.Get("dir"))
	if err != nil {
		fail(w, r, err)
		return
	}
	sel, explicit, err := parseSelection(q)
	if err != nil {
		fail(w, r, err)
		return
	}
	owner := s.player(w, r).Owner
	if !explicit {
		if sel, err = s.deps.Stats.Filters(r.Context(), owner); err != nil {
			fail(w, r, err)
			return
		}
	}
	entries, err := s.deps.Stats.List(r.Context(), owner, stats.Query{Filters: sel, Field: field, Direction: dir})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listRes{
		Sort:      field,
		Direction: dir,
		Next:      stats.NextDirection(dir),
		Filters:   sel,
		Entries:   entries,
	})
}

type rangeView struct {
	Index     int    `json:"index"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

// handleAvailable lists every canonical range per filter type, flagging the
// ones at least one record falls in.
func (s *Server) handleAvailable(w http.ResponseWriter, r *http.Request) {
	recs, err := s.deps.Stats.Records(r.Context(), s.player(w, r).Owner)
	if err != nil {
		fail(w, r, err)
		return
	}
	avail := stats.AvailableFilters(recs)
	out := make(map[stats.FilterType][]rangeView, len(stats.FilterTypes))
	for _, t := range stats.FilterTypes {
		out[t] = lo.Map(stats.Ranges[t], func(rg stats.Range, i int) rangeView {
			return rangeView{Index: i, Label: rg.Label, Available: lo.Contains(avail[t], i)}
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	sel, err := s.deps.Stats.Filters(r.Context(), s.player(w, r).Owner)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (s *Server) handlePutFilters(w http.ResponseWriter, r *http.Request) {
	var sel stats.Selection
	if !decode(w, r, &sel) {
		return
	}
	if sel == nil {
		sel = stats.Selection{}
	}
	if err := s.deps.Stats.SaveFilters(r.Context(), s.player(w, r).Owner, sel); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sel.Normalize())
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Stats.ClearFilters(r.Context(), s.player(w, r).Owner); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Selection{})
}

type toggleReq struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

func (s *Server) handleToggleFilter(w http.ResponseWriter, r *http.Request) {
	var req toggleReq
	if !decode(w, r, &req) {
		return
	}
	t, err := stats.ParseFilterType(req.Type)
	if err != nil {
		fail(w, r, err)
		return
	}
	sel, err := s.deps.Stats.ToggleFilter(r.Context(), s.player(w, r).Owner, t, req.Index)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}
