// Package migrate holds the table definitions of the engagement store and applies them.
package migrate

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// ItemProgressColumns holds the columns for the "item_progress" table.
	ItemProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "language", Type: field.TypeString, Size: 16},
		{Name: "item_id", Type: field.TypeString, Size: 128},
		{Name: "word", Type: field.TypeString},
		{Name: "translation", Type: field.TypeString},
		{Name: "correct_answers", Type: field.TypeInt, Default: 0},
		{Name: "total_attempts", Type: field.TypeInt, Default: 0},
		{Name: "mastery_level", Type: field.TypeInt, Default: 0},
		{Name: "last_reviewed_at", Type: field.TypeTime, Nullable: true},
		{Name: "next_review_due_at", Type: field.TypeTime, Nullable: true},
		{Name: "difficulty", Type: field.TypeString, Size: 16, Default: "medium"},
		{Name: "category", Type: field.TypeString, Default: "general"},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ItemProgressTable holds the schema information for the "item_progress" table.
	ItemProgressTable = &schema.Table{
		Name:       "item_progress",
		Columns:    ItemProgressColumns,
		PrimaryKey: []*schema.Column{ItemProgressColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "itemprogress_user_id_language_item_id",
				Unique:  true,
				Columns: []*schema.Column{ItemProgressColumns[1], ItemProgressColumns[2], ItemProgressColumns[3]},
			},
			{
				Name:    "itemprogress_user_id_next_review_due_at",
				Unique:  false,
				Columns: []*schema.Column{ItemProgressColumns[1], ItemProgressColumns[10]},
			},
		},
	}
	// SessionsColumns holds the columns for the "sessions" table.
	SessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "language", Type: field.TypeString, Size: 16},
		{Name: "session_type", Type: field.TypeString, Size: 32},
		{Name: "words_studied", Type: field.TypeInt, Default: 0},
		{Name: "correct_answers", Type: field.TypeInt, Default: 0},
		{Name: "total_answers", Type: field.TypeInt, Default: 0},
		{Name: "accuracy", Type: field.TypeInt, Default: 0},
		{Name: "time_spent_minutes", Type: field.TypeInt, Default: 0},
		{Name: "completed", Type: field.TypeBool, Default: false},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "ended_at", Type: field.TypeTime, Nullable: true},
	}
	// SessionsTable holds the schema information for the "sessions" table.
	SessionsTable = &schema.Table{
		Name:       "sessions",
		Columns:    SessionsColumns,
		PrimaryKey: []*schema.Column{SessionsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "session_user_id_completed_ended_at",
				Unique:  false,
				Columns: []*schema.Column{SessionsColumns[1], SessionsColumns[9], SessionsColumns[11]},
			},
		},
	}
	// EngagementStatsColumns holds the columns for the "engagement_stats" table.
	EngagementStatsColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "total_words_learned", Type: field.TypeInt, Default: 0},
		{Name: "total_sessions_completed", Type: field.TypeInt, Default: 0},
		{Name: "total_study_time_minutes", Type: field.TypeInt, Default: 0},
		{Name: "average_accuracy", Type: field.TypeInt, Default: 0},
		{Name: "current_streak_days", Type: field.TypeInt, Default: 0},
		{Name: "max_streak_days", Type: field.TypeInt, Default: 0},
		{Name: "last_session_day", Type: field.TypeInt32, Nullable: true},
		{Name: "version", Type: field.TypeInt64, Default: 0},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// EngagementStatsTable holds the schema information for the "engagement_stats" table.
	EngagementStatsTable = &schema.Table{
		Name:       "engagement_stats",
		Columns:    EngagementStatsColumns,
		PrimaryKey: []*schema.Column{EngagementStatsColumns[0]},
	}
	// AchievementUnlocksColumns holds the columns for the "achievement_unlocks" table.
	AchievementUnlocksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "achievement_id", Type: field.TypeString, Size: 64},
		{Name: "unlocked_at", Type: field.TypeTime},
	}
	// AchievementUnlocksTable holds the schema information for the "achievement_unlocks" table.
	AchievementUnlocksTable = &schema.Table{
		Name:       "achievement_unlocks",
		Columns:    AchievementUnlocksColumns,
		PrimaryKey: []*schema.Column{AchievementUnlocksColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "achievementunlock_user_id_achievement_id",
				Unique:  true,
				Columns: []*schema.Column{AchievementUnlocksColumns[1], AchievementUnlocksColumns[2]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ItemProgressTable,
		SessionsTable,
		EngagementStatsTable,
		AchievementUnlocksTable,
	}
)

// TablesByName resolves table names; an empty selection means every table.
func TablesByName(names []string) ([]*schema.Table, error) {
	if len(names) == 0 {
		return Tables, nil
	}
	index := make(map[string]*schema.Table, len(Tables))
	for _, t := range Tables {
		index[t.Name] = t
	}
	selected := make([]*schema.Table, 0, len(names))
	for _, name := range names {
		t, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("unknown table %q", name)
		}
		selected = append(selected, t)
	}
	return selected, nil
}

// Create creates or upgrades the given tables; nil means all of them.
func Create(ctx context.Context, drv dialect.Driver, tables []*schema.Table, opts ...schema.MigrateOption) error {
	if tables == nil {
		tables = Tables
	}
	migrate, err := schema.NewMigrate(drv, opts...)
	if err != nil {
		return fmt.Errorf("ent/migrate: %w", err)
	}
	if err := migrate.Create(ctx, tables...); err != nil {
		return fmt.Errorf("ent/migrate: create tables: %w", err)
	}
	return nil
}
