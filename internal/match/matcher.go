// Package match finds the knowledge entry whose question is closest to a free-text
// query, using a length-normalized Levenshtein similarity.
//
// Matching is pure: entries are only read, and concurrent calls over the same slice
// are safe as long as nobody mutates the slice during a call.
package match

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
)

// ErrEmptyQuery is returned by Matcher.Match for a blank query.
var ErrEmptyQuery = errors.New("query is empty")

// FindBestMatch scores every entry against query and returns the highest scoring one
// if its confidence is at least threshold. The first entry reaching the maximum wins.
func FindBestMatch(query string, entries []Entry, threshold float64) (Result, bool) {
	best, ok := best(query, entries, nil)
	if !ok || best.Confidence < threshold {
		return Result{}, false
	}
	return best, true
}

func best(query string, entries []Entry, logger *slog.Logger) (Result, bool) {
	var (
		out   Result
		found bool
	)
	for _, e := range entries {
		score := Similarity(query, e.Question)
		if found && score <= out.Confidence {
			continue
		}
		out = Result{Entry: e, Confidence: score}
		found = true
		if logger != nil {
			logger.Debug("new best match", "question", e.Question, "score", score)
		}
	}
	return out, found
}

// Rank scores all entries and returns them by confidence (descending). Entries with
// equal confidence keep their input order. k <= 0 returns every entry.
func Rank(query string, entries []Entry, k int) []Result {
	out := make([]Result, 0, len(entries))
	for _, e := range entries {
		out = append(out, Result{Entry: e, Confidence: Similarity(query, e.Question)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// Matcher applies FindBestMatch with a fixed threshold.
type Matcher struct {
	threshold float64
	logger    *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold sets the minimum confidence. The default is DefaultThreshold.
func WithThreshold(t float64) Option {
	return func(m *Matcher) {
		m.threshold = t
	}
}

// WithLogger sets the logger used for the debug trace. A nil logger keeps the default.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New returns a Matcher.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		threshold: DefaultThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold returns the configured minimum confidence.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match returns the best entry for query, or false when nothing reaches the threshold.
func (m *Matcher) Match(query string, entries []Entry) (Result, bool, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, false, ErrEmptyQuery
	}
	m.logger.Debug("searching knowledge base", "query", query, "entries", len(entries))

	res, ok := best(query, entries, m.logger)
	if !ok || res.Confidence < m.threshold {
		m.logger.Debug("no match above threshold", "threshold", m.threshold)
		return Result{}, false, nil
	}
	m.logger.Debug("found match", "question", res.Entry.Question, "confidence", res.Confidence)
	return res, true, nil
}
