package achievement

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/eslsoft/vocengage/internal/entity"
)

// Definition describes an achievement whose predicate is a CEL expression over the engagement totals
// and, when present, the triggering session.
type Definition struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Kind        string
	Expr        string
}

var celVariables = []cel.EnvOption{
	cel.Variable("words", cel.IntType),
	cel.Variable("sessions", cel.IntType),
	cel.Variable("minutes", cel.IntType),
	cel.Variable("accuracy", cel.IntType),
	cel.Variable("streak", cel.IntType),
	cel.Variable("max_streak", cel.IntType),
	cel.Variable("has_session", cel.BoolType),
	cel.Variable("session_words", cel.IntType),
	cel.Variable("session_accuracy", cel.IntType),
	cel.Variable("session_minutes", cel.IntType),
	cel.Variable("session_type", cel.StringType),
	cel.Variable("session_language", cel.StringType),
	cel.Variable("session_hour", cel.IntType),
}

// CompileRule turns a definition into a synchronous rule.
func CompileRule(def Definition) (Rule, error) {
	kind := entity.AchievementKind(strings.TrimSpace(def.Kind))
	switch kind {
	case "":
		kind = entity.AchievementKindAchievement
	case entity.AchievementKindMilestone, entity.AchievementKindStreak, entity.AchievementKindAchievement:
	default:
		return Rule{}, fmt.Errorf("achievement %q: unknown kind %q", def.ID, def.Kind)
	}

	env, err := cel.NewEnv(celVariables...)
	if err != nil {
		return Rule{}, fmt.Errorf("achievement %q: %w", def.ID, err)
	}
	ast, issues := env.Compile(def.Expr)
	if issues != nil && issues.Err() != nil {
		return Rule{}, fmt.Errorf("achievement %q: invalid expression: %w", def.ID, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return Rule{}, fmt.Errorf("achievement %q: expression must evaluate to bool, got %s", def.ID, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return Rule{}, fmt.Errorf("achievement %q: %w", def.ID, err)
	}

	return Rule{
		Achievement: entity.Achievement{
			ID:          def.ID,
			Title:       def.Title,
			Description: def.Description,
			Icon:        def.Icon,
			Kind:        kind,
		},
		Predicate: func(ctx context.Context, in Input) (bool, error) {
			out, _, err := prg.ContextEval(ctx, celActivation(in))
			if err != nil {
				return false, fmt.Errorf("evaluate achievement %q: %w", def.ID, err)
			}
			ok, isBool := out.Value().(bool)
			if !isBool {
				return false, fmt.Errorf("evaluate achievement %q: non-bool result %v", def.ID, out.Value())
			}
			return ok, nil
		},
	}, nil
}

// CompileRules compiles every definition, stopping at the first invalid one.
func CompileRules(defs []Definition) ([]Rule, error) {
	rules := make([]Rule, 0, len(defs))
	for _, def := range defs {
		rule, err := CompileRule(def)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func celActivation(in Input) map[string]any {
	vars := map[string]any{
		"words":            int64(in.Stats.TotalWordsLearned),
		"sessions":         int64(in.Stats.TotalSessionsCompleted),
		"minutes":          int64(in.Stats.TotalStudyTimeMinutes),
		"accuracy":         int64(in.Stats.AverageAccuracy),
		"streak":           int64(in.Stats.CurrentStreakDays),
		"max_streak":       int64(in.Stats.MaxStreakDays),
		"has_session":      in.Session != nil,
		"session_words":    int64(0),
		"session_accuracy": int64(0),
		"session_minutes":  int64(0),
		"session_type":     "",
		"session_language": "",
		"session_hour":     int64(-1),
	}
	if s := in.Session; s != nil {
		vars["session_words"] = int64(s.WordsStudied)
		vars["session_accuracy"] = int64(s.Accuracy)
		vars["session_minutes"] = int64(s.TimeSpentMinutes)
		vars["session_type"] = string(s.Type)
		vars["session_language"] = s.Language.Code()
	}
	if hour, ok := in.SessionHour(); ok {
		vars["session_hour"] = int64(hour)
	}
	return vars
}
