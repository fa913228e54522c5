// Package bot turns a user message into a chatbot reply.
//
// A Bot owns the state of one conversation: the knowledge base it answers from, the
// matcher, the clock and the random source for canned replies. It is not safe for
// concurrent use.
package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
	"unicode/utf8"

	"github.com/kamusis/kbot/internal/calc"
	"github.com/kamusis/kbot/internal/history"
	"github.com/kamusis/kbot/internal/knowledge"
	"github.com/kamusis/kbot/internal/match"
	"github.com/kamusis/kbot/internal/metrics"
)

var (
	// ErrEmptyMessage is returned by Respond for a blank message.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrMessageTooLong is returned by Respond for a message over MaxMessageRunes.
	ErrMessageTooLong = fmt.Errorf("message is longer than %d characters", MaxMessageRunes)
	// ErrKnowledgeRequired is returned by New without a knowledge base.
	ErrKnowledgeRequired = errors.New("knowledge base is required")
)

// Kind tells which stage of the pipeline produced a reply.
type Kind string

const (
	KindMath      Kind = "math"
	KindTime      Kind = "time"
	KindDate      Kind = "date"
	KindKnowledge Kind = "knowledge"
	KindFallback  Kind = "fallback"
)

// Reply is the bot's answer to one message.
type Reply struct {
	ID    string // ID of the bot message, as stored in the history
	Kind  Kind
	Text  string
	Match *match.Result // set for KindKnowledge
}

// MaxMessageRunes bounds the length of a message. Matching costs grow with the
// product of message and question lengths.
const MaxMessageRunes = 2000

// SelfTestQuery is the question SelfTest asks the knowledge base.
const SelfTestQuery = "what is time"

// Bot answers messages.
type Bot struct {
	kb      *knowledge.Base
	matcher *match.Matcher
	now     func() time.Time
	rng     *rand.Rand
	history *history.Store
	logger  *slog.Logger
	metrics metrics.Recorder
}

// Option configures a Bot.
type Option func(*Bot)

// WithMatcher replaces the default matcher.
func WithMatcher(m *match.Matcher) Option {
	return func(b *Bot) {
		if m != nil {
			b.matcher = m
		}
	}
}

// WithClock sets the clock used for time and date answers.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		if now != nil {
			b.now = now
		}
	}
}

// WithRand sets the random source for fallback replies.
func WithRand(r *rand.Rand) Option {
	return func(b *Bot) {
		if r != nil {
			b.rng = r
		}
	}
}

// WithHistory records every exchange in s.
func WithHistory(s *history.Store) Option {
	return func(b *Bot) {
		b.history = s
	}
}

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. The default is metrics.Default().
func WithMetrics(r metrics.Recorder) Option {
	return func(b *Bot) {
		if r != nil {
			b.metrics = r
		}
	}
}

// New returns a Bot answering from kb.
func New(kb *knowledge.Base, opts ...Option) (*Bot, error) {
	if kb == nil {
		return nil, ErrKnowledgeRequired
	}
	b := &Bot{
		kb:      kb,
		matcher: match.New(),
		now:     time.Now,
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		logger:  slog.Default(),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Knowledge returns the knowledge base the bot answers from.
func (b *Bot) Knowledge() *knowledge.Base {
	return b.kb
}

// History returns the attached history store, or nil.
func (b *Bot) History() *history.Store {
	return b.history
}

// Welcome returns the greeting shown when a conversation starts.
func (b *Bot) Welcome() string {
	return welcomeText
}

// Respond answers message. Arithmetic is tried first, then time and date questions,
// then the knowledge base, and finally a canned fallback. A failure to record the
// exchange in the history is logged, not returned.
func (b *Bot) Respond(message string) (Reply, error) {
	text := knowledge.Normalize(message)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageRunes {
		return Reply{}, ErrMessageTooLong
	}
	done := metrics.TimeReply(b.metrics)
	b.logger.Debug("generating response", "message", message)

	reply := b.reply(text)
	done(string(reply.Kind))
	if reply.Match != nil {
		b.metrics.ObserveMatchConfidence(reply.Match.Confidence)
	}

	at := b.now()
	botMsg := history.NewMessage(history.TypeBot, reply.Text, at)
	reply.ID = botMsg.ID
	if b.history != nil {
		err := b.history.Append(history.NewMessage(history.TypeUser, message, at), botMsg)
		if err != nil {
			b.logger.Warn("cannot save conversation", "path", b.history.Path(), "err", err)
		}
	}
	return reply, nil
}

func (b *Bot) reply(text string) Reply {
	if expr, ok := calc.Extract(text); ok {
		b.logger.Debug("detected math expression", "expr", expr)
		return Reply{Kind: KindMath, Text: solve(expr)}
	}

	if matchesAny(timePatterns, text) {
		b.logger.Debug("detected time question")
		return Reply{Kind: KindTime, Text: knowledge.TimeText(b.now())}
	}

	if matchesAny(datePatterns, text) {
		b.logger.Debug("detected date question")
		return Reply{Kind: KindDate, Text: knowledge.DateText(b.now())}
	}

	res, ok, err := b.matcher.Match(text, b.kb.Entries())
	if err == nil && ok {
		return Reply{Kind: KindKnowledge, Text: res.Entry.Answer, Match: &res}
	}

	b.logger.Debug("no match found, using fallback response")
	return Reply{Kind: KindFallback, Text: b.fallback(text)}
}

func solve(expr string) string {
	v, err := calc.Eval(expr)
	if err != nil {
		return mathErrorReply
	}
	return "🧮 The answer is: " + calc.Format(v)
}

func (b *Bot) fallback(text string) string {
	switch {
	case greetingPrefix.MatchString(text):
		return greetingReply
	case farewellPrefix.MatchString(text):
		return farewellReply
	case thanksPrefix.MatchString(text):
		return thanksReply
	}
	return fallbackReplies[b.rng.IntN(len(fallbackReplies))]
}

// SelfTest matches SelfTestQuery against the knowledge base and describes the
// outcome.
func (b *Bot) SelfTest() (string, *match.Result) {
	res, ok, err := b.matcher.Match(SelfTestQuery, b.kb.Entries())
	if err != nil || !ok {
		return fmt.Sprintf("❌ Knowledge Base Test: No match found for %q", SelfTestQuery), nil
	}
	return fmt.Sprintf("✅ Knowledge Base Test: Found %q with confidence %.2f", res.Entry.Question, res.Confidence), &res
}
