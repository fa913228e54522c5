// Package knowledge loads and holds the question/answer knowledge base the chatbot
// matches against.
package knowledge

import (
	"time"

	"github.com/kamusis/kbot/internal/match"
)

// Category is a named group of entries.
type Category struct {
	Name    string
	Entries []match.Entry
}

// Base is an ordered, read-only set of categories. It must not be modified after
// construction; callers share it between matcher calls.
type Base struct {
	categories []Category
	flat       []match.Entry
}

// NewBase builds a Base from categories in the given order.
func NewBase(categories ...Category) *Base {
	b := &Base{categories: categories}
	for _, c := range categories {
		b.flat = append(b.flat, c.Entries...)
	}
	return b
}

// WithDefaults returns a Base with comprehensive first, followed by the built-in
// greetings, personal and fun categories.
func WithDefaults(comprehensive ...Category) *Base {
	cats := append([]Category{}, comprehensive...)
	cats = append(cats,
		Category{Name: CategoryGreetings, Entries: defaultGreetings()},
		Category{Name: CategoryPersonal, Entries: defaultPersonal()},
		Category{Name: CategoryFun, Entries: defaultFun()},
	)
	return NewBase(cats...)
}

// Fallback returns the built-in knowledge base used when no file can be loaded.
func Fallback(now time.Time) *Base {
	return WithDefaults(Category{Name: CategoryComprehensive, Entries: fallbackComprehensive(now)})
}

// Entries returns every entry in category order. The returned slice is shared and
// must be treated as read-only.
func (b *Base) Entries() []match.Entry {
	return b.flat
}

// Categories returns the categories in order.
func (b *Base) Categories() []Category {
	return b.categories
}

// Len returns the total number of entries.
func (b *Base) Len() int {
	return len(b.flat)
}

// CategoryStats summarizes one category.
type CategoryStats struct {
	Name   string
	Count  int
	Sample *match.Entry
}

// Stats returns per-category counts with the first entry of each as a sample.
func (b *Base) Stats() []CategoryStats {
	out := make([]CategoryStats, 0, len(b.categories))
	for _, c := range b.categories {
		s := CategoryStats{Name: c.Name, Count: len(c.Entries)}
		if len(c.Entries) > 0 {
			e := c.Entries[0]
			s.Sample = &e
		}
		out = append(out, s)
	}
	return out
}
