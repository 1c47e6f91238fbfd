package config

import (
	"testing"
	"time"
)

func TestDatabaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{"explicit dsn", DatabaseConfig{Driver: "postgres", DSN: "postgres://a@b/c"}, "postgres://a@b/c"},
		{"sqlite default", DatabaseConfig{Driver: "sqlite3"}, defaultSQLiteDSN},
		{"postgres parts", DatabaseConfig{Driver: "pgx", User: "u", Password: "p", Host: "db", Port: 5433, Name: "eng", SSLMode: "disable"},
			"postgres://u:p@db:5433/eng?sslmode=disable"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Database: tc.cfg}
			if got := cfg.DatabaseURL(); got != tc.want {
				t.Fatalf("DatabaseURL() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	good := Config{Database: DatabaseConfig{Driver: "SQLite3"}, Engagement: EngagementConfig{Timezone: "Europe/Madrid"}}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loc, err := good.Location()
	if err != nil || loc.String() != "Europe/Madrid" {
		t.Fatalf("unexpected location %v, %v", loc, err)
	}

	for name, cfg := range map[string]Config{
		"driver":   {Database: DatabaseConfig{Driver: "mysql"}},
		"timezone": {Database: DatabaseConfig{Driver: "pgx"}, Engagement: EngagementConfig{Timezone: "Mars/Olympus"}},
		"retries":  {Database: DatabaseConfig{Driver: "pgx"}, Engagement: EngagementConfig{MaxRetries: -1}},
	} {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLocationDefaultsToUTC(t *testing.T) {
	loc, err := (&Config{}).Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("expected UTC, got %v, %v", loc, err)
	}
}
