// Package achievement defines the achievement registry and the threshold milestones that
// accompany engagement updates.
package achievement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/vocengage/internal/entity"
)

// History answers questions about a user's session history that aggregate stats cannot.
type History interface {
	CountLanguages(ctx context.Context, userID int64) (int, error)
}

// Input is what a predicate is evaluated against.
type Input struct {
	UserID int64
	Stats  entity.EngagementTotals
	// Session is the session that triggered the evaluation, nil for explicit checks.
	Session  *entity.Session
	Location *time.Location
	History  History
}

// SessionHour returns the local hour the triggering session ended in.
func (in Input) SessionHour() (int, bool) {
	if in.Session == nil || in.Session.EndedAt == nil {
		return 0, false
	}
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	return in.Session.EndedAt.In(loc).Hour(), true
}

// Predicate decides whether a rule holds. Predicates that need no I/O are wrapped with Sync.
type Predicate func(ctx context.Context, in Input) (bool, error)

// Sync lifts a pure predicate into a Predicate.
func Sync(fn func(in Input) bool) Predicate {
	return func(_ context.Context, in Input) (bool, error) {
		return fn(in), nil
	}
}

// Rule is a registry entry: display metadata plus the unlock predicate.
type Rule struct {
	entity.Achievement
	Predicate Predicate
}

// Registry is the ordered, immutable set of achievement rules.
type Registry struct {
	rules []Rule
	byID  map[string]Rule
}

// NewRegistry validates and indexes rules. IDs must be unique.
func NewRegistry(rules ...Rule) (*Registry, error) {
	r := &Registry{byID: make(map[string]Rule, len(rules))}
	for _, rule := range rules {
		id := strings.TrimSpace(rule.ID)
		if id == "" {
			return nil, fmt.Errorf("achievement rule without id")
		}
		if rule.Predicate == nil {
			return nil, fmt.Errorf("achievement %q has no predicate", id)
		}
		if _, dup := r.byID[id]; dup {
			return nil, fmt.Errorf("duplicate achievement id %q", id)
		}
		rule.ID = id
		r.byID[id] = rule
		r.rules = append(r.rules, rule)
	}
	return r, nil
}

// Rules returns the rules in registration order.
func (r *Registry) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Achievements returns the display metadata of every rule.
func (r *Registry) Achievements() []entity.Achievement {
	return lo.Map(r.rules, func(rule Rule, _ int) entity.Achievement { return rule.Achievement })
}

// Lookup finds a rule by id.
func (r *Registry) Lookup(id string) (Rule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}
