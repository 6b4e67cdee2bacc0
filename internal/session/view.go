package session

import (
	"time"

	"github.com/robalobadob/wordhunt/internal/game"
)

// State is the client-facing snapshot of a game.
type State struct {
	GameID       string       `json:"gameId"`
	Mode         Mode         `json:"mode"`
	Length       int          `json:"length"`
	MaxAttempts  int          `json:"maxAttempts"`
	CurrentRow   int          `json:"currentRow"`
	Status       string       `json:"state"` // playing | won | lost
	Elapsed      int          `json:"elapsed"`
	TotalCorrect int          `json:"totalCorrect"`
	Rows         []RowView    `json:"rows"`
	Alphabet     []LetterView `json:"alphabet"`
	Hints        HintsView    `json:"hints"`
	Answer       string       `json:"answer,omitempty"` // revealed once the game is over
}

type RowView struct {
	Index    int            `json:"index"`
	Letters  []string       `json:"letters"` // "" for an empty position
	Verdicts []game.Verdict `json:"verdicts,omitempty"`
	Phase    string         `json:"phase"`
}

type LetterView struct {
	Letter string `json:"letter"`
	Status string `json:"status"` // unused | absent | present | correct
}

type HintButton struct {
	State    string  `json:"state"` // enabled | cooldown | disabled
	Cooldown float64 `json:"cooldownSeconds"`
	Uses     int     `json:"uses"`
}

type HintsView struct {
	Capacity  int        `json:"capacity"`
	Used      int        `json:"used"`
	Remaining int        `json:"remaining"`
	RowKind   string     `json:"rowKind,omitempty"`
	Letter    HintButton `json:"letter"`
	Position  HintButton `json:"position"`
}

func snapshot(g *game.Game, mode Mode) State {
	st := State{
		GameID:       g.ID,
		Mode:         mode,
		Length:       g.Length,
		MaxAttempts:  g.MaxAttempts,
		CurrentRow:   g.CurrentIndex(),
		Status:       g.Outcome.String(),
		Elapsed:      g.Elapsed(),
		TotalCorrect: g.TotalCorrect,
		Rows:         make([]RowView, len(g.Rows)),
		Alphabet:     make([]LetterView, 0, 26),
		Hints:        hintsView(g.Hints),
	}
	if g.Outcome.Terminal() {
		st.Answer = g.Target
	}
	for i, r := range g.Rows {
		letters := make([]string, len(r.Letters))
		for j, l := range r.Letters {
			if l != 0 {
				letters[j] = string(l)
			}
		}
		st.Rows[i] = RowView{Index: r.Index, Letters: letters, Verdicts: r.Verdicts, Phase: r.Phase().String()}
	}
	for l := 'a'; l <= 'z'; l++ {
		status := g.Alphabet[l].String()
		if status == "" {
			status = "unused"
		}
		st.Alphabet = append(st.Alphabet, LetterView{Letter: string(l), Status: status})
	}
	return st
}

func hintsView(h *game.HintBudget) HintsView {
	button := func(k game.HintKind) HintButton {
		return HintButton{
			State:    h.State(k).String(),
			Cooldown: h.RemainingCooldown(k).Round(100*time.Millisecond).Seconds(),
			Uses:     h.Uses(k),
		}
	}
	return HintsView{
		Capacity:  h.Capacity(),
		Used:      h.Used(),
		Remaining: h.Remaining(),
		RowKind:   h.RowKind().String(),
		Letter:    button(game.HintLetter),
		Position:  button(game.HintPosition),
	}
}
