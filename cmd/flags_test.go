package cmd

import (
	"reflect"
	"testing"
)

func TestNormalizeTables(t *testing.T) {
	cases := []struct {
		in   []string
		want []string
	}{
		{nil, nil},
		{[]string{" ", ""}, nil},
		{[]string{"Sessions", " engagement_stats "}, []string{"sessions", "engagement_stats"}},
		{[]string{"sessions,achievement_unlocks"}, []string{"sessions", "achievement_unlocks"}},
	}
	for _, c := range cases {
		if got := normalizeTables(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("normalizeTables(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "db-init", "recompute", "seed"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("command %q not registered: %v", name, err)
		}
	}
}
