package grading

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Criterion is one gradable line item of a guideline (rubric).
type Criterion struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	MaxScore    float64 `json:"max_score"`
}

// ScoreEntry is the grader-entered score for one criterion.
// A criterion without an entry is unscored, which is not the same as scored 0.
type ScoreEntry struct {
	CriterionID string  `json:"criterion_id"`
	Score       float64 `json:"score"`
}

var ErrInvalidScore = errors.New("invalid score input")

// Rubric scores carry at most one decimal digit. "6", "6.5" and "6,5" are
// accepted; "6.55", "-1" and ".5" are not.
var scoreShape = regexp.MustCompile(`^[0-9]+(\.[0-9])?$`)

// Accumulator holds the entered scores for a fixed ordered list of criteria
// and exposes running totals. One Accumulator belongs to one in-progress
// evaluation; it is not safe for concurrent use.
type Accumulator struct {
	criteria []Criterion
	scores   []*float64 // parallel to criteria, nil = unscored
	byID     map[string]int
}

func NewAccumulator(criteria []Criterion) (*Accumulator, error) {
	byID := make(map[string]int, len(criteria))
	for i, c := range criteria {
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("criterion %d: empty id", i)
		}
		if strings.TrimSpace(c.Description) == "" {
			return nil, fmt.Errorf("criterion %q: empty description", c.ID)
		}
		if c.MaxScore < 0 {
			return nil, fmt.Errorf("criterion %q: negative max score", c.ID)
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("criterion %q: duplicate id", c.ID)
		}
		byID[c.ID] = i
	}
	return &Accumulator{
		criteria: criteria,
		scores:   make([]*float64, len(criteria)),
		byID:     byID,
	}, nil
}

// SetScore parses a grader-entered value for the criterion at index i.
// Comma decimal separators are accepted. An empty string clears the score
// back to unscored. Malformed input returns ErrInvalidScore and leaves the
// current score untouched. Accepted values are clamped to
// [0, criterion.MaxScore] and rounded half-up to one decimal.
func (a *Accumulator) SetScore(i int, raw string) error {
	if i < 0 || i >= len(a.criteria) {
		return fmt.Errorf("criterion index %d out of range", i)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		a.scores[i] = nil
		return nil
	}
	raw = strings.ReplaceAll(raw, ",", ".")
	if !scoreShape.MatchString(raw) {
		return ErrInvalidScore
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return ErrInvalidScore
	}
	v = clampRound1(v, a.criteria[i].MaxScore)
	a.scores[i] = &v
	return nil
}

// SetScoreByID is SetScore keyed by criterion id. Unknown ids are an error.
func (a *Accumulator) SetScoreByID(criterionID, raw string) error {
	i, ok := a.byID[criterionID]
	if !ok {
		return fmt.Errorf("unknown criterion %q", criterionID)
	}
	return a.SetScore(i, raw)
}

// Score returns the entered score for the criterion at index i and whether
// one has been entered.
func (a *Accumulator) Score(i int) (float64, bool) {
	if i < 0 || i >= len(a.scores) || a.scores[i] == nil {
		return 0, false
	}
	return *a.scores[i], true
}

// PartialTotal sums the entered scores, treating unscored criteria as 0.
// It is a running display value; completion still requires every criterion
// to be scored explicitly.
func (a *Accumulator) PartialTotal() float64 {
	total := 0.0
	for _, s := range a.scores {
		if s != nil {
			total += *s
		}
	}
	return total
}

// MaxTotal sums the max scores of all criteria.
func (a *Accumulator) MaxTotal() float64 {
	total := 0.0
	for _, c := range a.criteria {
		total += c.MaxScore
	}
	return total
}

// IsComplete reports whether every criterion has an entered score.
func (a *Accumulator) IsComplete() bool {
	for _, s := range a.scores {
		if s == nil {
			return false
		}
	}
	return true
}

// Entries returns the scored criteria in rubric order.
func (a *Accumulator) Entries() []ScoreEntry {
	out := make([]ScoreEntry, 0, len(a.scores))
	for i, s := range a.scores {
		if s != nil {
			out = append(out, ScoreEntry{CriterionID: a.criteria[i].ID, Score: *s})
		}
	}
	return out
}

// Load resumes a saved evaluation's entries. Entries for criteria the rubric
// no longer lists are skipped; stored values are re-clamped so the totals
// invariant holds even if a max score shrank underneath an old entry.
func (a *Accumulator) Load(entries []ScoreEntry) {
	for _, e := range entries {
		i, ok := a.byID[e.CriterionID]
		if !ok {
			continue
		}
		v := clampRound1(e.Score, a.criteria[i].MaxScore)
		a.scores[i] = &v
	}
}

// clampRound1 clamps v into [0, max] then rounds half-up to one decimal.
// Clamping first means -0 can never surface.
func clampRound1(v, max float64) float64 {
	if v < 0 {
		v = 0
	}
	if v > max {
		v = max
	}
	return math.Floor(v*10+0.5) / 10
}
