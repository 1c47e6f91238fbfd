package app

import (
	"testing"

	"github.com/eslsoft/vocengage/internal/infrastructure/config"
	"github.com/eslsoft/vocengage/internal/usecase/achievement"
)

func TestNewRegistryAddsConfiguredRules(t *testing.T) {
	cfg := &config.Config{Achievements: config.AchievementsConfig{Rules: []config.RuleConfig{
		{ID: "marathon", Title: "Marathon", Kind: "milestone", Expr: "minutes >= 600"},
	}}}
	registry, err := NewRegistry(cfg)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if got, want := len(registry.Rules()), len(achievement.Builtin())+1; got != want {
		t.Fatalf("expected %d rules, got %d", want, got)
	}
	if _, ok := registry.Lookup("marathon"); !ok {
		t.Fatalf("expected configured rule to be registered")
	}
}

func TestNewRegistryRejectsBadRules(t *testing.T) {
	for _, rule := range []config.RuleConfig{
		{ID: "first_lesson", Title: "Clash", Expr: "sessions >= 1"},
		{ID: "broken", Title: "Broken", Expr: "words >="},
	} {
		cfg := &config.Config{Achievements: config.AchievementsConfig{Rules: []config.RuleConfig{rule}}}
		if _, err := NewRegistry(cfg); err == nil {
			t.Fatalf("expected error for rule %+v", rule)
		}
	}
}

func TestNewEngagementOptions(t *testing.T) {
	cfg := &config.Config{Engagement: config.EngagementConfig{Timezone: "Europe/Berlin", MaxRetries: 5, RecomputeWorkers: 2}}
	opts, err := NewEngagementOptions(cfg)
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	if opts.Location.String() != "Europe/Berlin" || opts.MaxRetries != 5 || opts.Workers != 2 {
		t.Fatalf("unexpected options %+v", opts)
	}
}
