package bot

import (
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kamusis/kbot/internal/history"
	"github.com/kamusis/kbot/internal/knowledge"
	"github.com/kamusis/kbot/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 7, 9, 5, 0, 0, time.UTC)

type recordingMetrics struct {
	kinds       []string
	confidences []float64
}

func (r *recordingMetrics) IncReplyTotal(kind string)           { r.kinds = append(r.kinds, kind) }
func (r *recordingMetrics) ObserveReplySeconds(string, float64) {}
func (r *recordingMetrics) ObserveMatchConfidence(c float64)    { r.confidences = append(r.confidences, c) }

func newTestBot(t *testing.T, opts ...Option) *Bot {
	t.Helper()
	base := append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}, opts...)
	b, err := New(knowledge.Fallback(fixedNow), base...)
	require.NoError(t, err)
	return b
}

func TestNew_RequiresKnowledge(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrKnowledgeRequired)
}

func TestRespond(t *testing.T) {
	b := newTestBot(t)

	tests := []struct {
		in   string
		kind Kind
		text string
	}{
		{"What is 2 + 3?", KindMath, "🧮 The answer is: 5"},
		{"calculate (1 + 2) ^ 2", KindMath, "🧮 The answer is: 9"},
		{"1 / 0", KindMath, mathErrorReply},
		{"what time is it", KindTime, "The current time is 09:05"},
		{"Tell me the current time", KindTime, "The current time is 09:05"},
		{"What's the date today", KindDate, "Today's date is 3/7/2026"},
		{"what day is it", KindDate, "Today's date is 3/7/2026"},
		{"Tell me a joke", KindKnowledge, ""},
		{"what is the capital of France", KindKnowledge, "The capital of France is Paris."},
		{"  WHAT IS DNA?  ", KindKnowledge, ""},
		{"hello there friend", KindFallback, greetingReply},
		{"bye for now", KindFallback, farewellReply},
		{"thanks a lot", KindFallback, thanksReply},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := b.Respond(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, r.Kind)
			if tt.text != "" {
				assert.Equal(t, tt.text, r.Text)
			}
			if tt.kind == KindKnowledge {
				require.NotNil(t, r.Match)
				assert.GreaterOrEqual(t, r.Match.Confidence, match.DefaultThreshold)
			} else {
				assert.Nil(t, r.Match)
			}
		})
	}
}

func TestRespond_RandomFallback(t *testing.T) {
	b := newTestBot(t)
	r, err := b.Respond("quantum chromodynamics")
	require.NoError(t, err)
	assert.Equal(t, KindFallback, r.Kind)
	assert.Contains(t, fallbackReplies, r.Text)
}

func TestRespond_Empty(t *testing.T) {
	b := newTestBot(t)
	_, err := b.Respond(" \n\t")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestRespond_TooLong(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"))
	b := newTestBot(t, WithHistory(store))

	_, err := b.Respond(strings.Repeat("é", MaxMessageRunes+1))
	assert.ErrorIs(t, err, ErrMessageTooLong)
	msgs, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, msgs)

	r, err := b.Respond(strings.Repeat("-", MaxMessageRunes-2) + "1")
	require.NoError(t, err)
	assert.Equal(t, KindMath, r.Kind)
	assert.Equal(t, "🧮 The answer is: 1", r.Text)

	r, err = b.Respond(strings.Repeat("(", 300) + "1+1" + strings.Repeat(")", 300))
	require.NoError(t, err)
	assert.Equal(t, KindMath, r.Kind)
	assert.Equal(t, mathErrorReply, r.Text)
}

func TestRespond_ThresholdFromMatcher(t *testing.T) {
	b := newTestBot(t, WithMatcher(match.New(match.WithThreshold(1))))
	r, err := b.Respond("what is the capital of france")
	require.NoError(t, err)
	assert.Equal(t, KindFallback, r.Kind)
}

func TestRespond_RecordsHistory(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"))
	b := newTestBot(t, WithHistory(store))

	r, err := b.Respond("What is DNA?")
	require.NoError(t, err)

	msgs, err := store.Load()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, history.TypeUser, msgs[0].Type)
	assert.Equal(t, "What is DNA?", msgs[0].Message)
	assert.Equal(t, history.TypeBot, msgs[1].Type)
	assert.Equal(t, r.Text, msgs[1].Message)
	assert.Equal(t, r.ID, msgs[1].ID)
	assert.Equal(t, fixedNow, msgs[1].Timestamp)
}

func TestRespond_Metrics(t *testing.T) {
	rec := &recordingMetrics{}
	b := newTestBot(t, WithMetrics(rec))

	_, err := b.Respond("2*3")
	require.NoError(t, err)
	_, err = b.Respond("what is dna?")
	require.NoError(t, err)

	assert.Equal(t, []string{"math", "knowledge"}, rec.kinds)
	assert.Equal(t, []float64{1}, rec.confidences)
}

func TestSelfTest(t *testing.T) {
	b := newTestBot(t)
	msg, res := b.SelfTest()
	require.NotNil(t, res)
	assert.Equal(t, "what is time?", res.Entry.Question)
	assert.Equal(t, `✅ Knowledge Base Test: Found "what is time?" with confidence 0.92`, msg)

	empty, err := New(knowledge.NewBase())
	require.NoError(t, err)
	msg, res = empty.SelfTest()
	assert.Nil(t, res)
	assert.Contains(t, msg, "No match found")
}

func TestWelcome(t *testing.T) {
	assert.Contains(t, newTestBot(t).Welcome(), "What would you like to know?")
}
