package app

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/eslsoft/vocengage/internal/infrastructure/config"
	"github.com/eslsoft/vocengage/internal/usecase"
	"github.com/eslsoft/vocengage/internal/usecase/achievement"
)

// NewRegistry combines the built-in achievements with the CEL rules from config.
func NewRegistry(cfg *config.Config) (*achievement.Registry, error) {
	custom, err := achievement.CompileRules(lo.Map(cfg.Achievements.Rules, func(r config.RuleConfig, _ int) achievement.Definition {
		return achievement.Definition{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Icon:        r.Icon,
			Kind:        r.Kind,
			Expr:        r.Expr,
		}
	}))
	if err != nil {
		return nil, fmt.Errorf("achievement rules: %w", err)
	}
	return achievement.NewRegistry(append(achievement.Builtin(), custom...)...)
}

// NewEngagementOptions maps the engagement config section onto usecase options.
func NewEngagementOptions(cfg *config.Config) (usecase.EngagementOptions, error) {
	loc, err := cfg.Location()
	if err != nil {
		return usecase.EngagementOptions{}, err
	}
	return usecase.EngagementOptions{
		Location:   loc,
		MaxRetries: cfg.Engagement.MaxRetries,
		Workers:    cfg.Engagement.RecomputeWorkers,
	}, nil
}
