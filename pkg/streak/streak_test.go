package streak

import (
	"math/rand"
	"testing"

	"github.com/eslsoft/vocengage/internal/entity"
)

const d = entity.Day(20000)

func days(offsets ...int) []entity.Day {
	out := make([]entity.Day, 0, len(offsets))
	for _, o := range offsets {
		out = append(out, d.AddDays(o))
	}
	return out
}

func TestCompute(t *testing.T) {
	cases := []struct {
		name string
		in   []entity.Day
		asOf entity.Day
		want Result
	}{
		{name: "empty", in: nil, asOf: d, want: Result{}},
		{name: "single today", in: days(0), asOf: d, want: Result{Current: 1, Max: 1}},
		{name: "three consecutive", in: days(-2, -1, 0), asOf: d, want: Result{Current: 3, Max: 3}},
		{name: "old run then isolated today", in: days(-10, -9, -8, 0), asOf: d, want: Result{Current: 1, Max: 3}},
		// the run anchored at the newest day counts in full while asOf is one day later
		{name: "grace day", in: days(-1, 0), asOf: d.AddDays(1), want: Result{Current: 2, Max: 2}},
		{name: "lapsed", in: days(-1, 0), asOf: d.AddDays(2), want: Result{Current: 0, Max: 2}},
		{name: "current is longest", in: days(-9, -3, -2, -1, 0), asOf: d, want: Result{Current: 4, Max: 4}},
		{name: "gap of two breaks run", in: days(-4, -2, 0), asOf: d, want: Result{Current: 1, Max: 1}},
		{name: "lapsed keeps historical max", in: days(-30, -29, -28, -27, -10), asOf: d, want: Result{Current: 0, Max: 4}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Compute(c.in, c.asOf); got != c.want {
				t.Fatalf("Compute = %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestComputeGraceWindow(t *testing.T) {
	in := days(-1, 0)
	if got := Compute(in, d.AddDays(1)).Current; got == 0 {
		t.Fatalf("streak should survive one idle day, got %d", got)
	}
	if got := Compute(in, d.AddDays(2)).Current; got != 0 {
		t.Fatalf("streak should lapse after two idle days, got %d", got)
	}
}

func TestComputeOrderIndependent(t *testing.T) {
	base := days(-40, -39, -20, -19, -18, -17, -5, -3, -2, -1, 0)
	want := Compute(base, d)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := append([]entity.Day(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := Compute(shuffled, d); got != want {
			t.Fatalf("permutation %v gave %+v, want %+v", shuffled, got, want)
		}
	}
	if again := Compute(base, d); again != want {
		t.Fatalf("Compute is not idempotent: %+v vs %+v", again, want)
	}
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	in := days(0, -2, -1)
	_ = Compute(in, d)
	if in[0] != d || in[1] != d.AddDays(-2) || in[2] != d.AddDays(-1) {
		t.Fatalf("input was reordered: %v", in)
	}
}

func TestFromDaysCollapsesSameDay(t *testing.T) {
	in := days(-1, -1, 0, 0, 0)
	if got, want := FromDays(in, d), (Result{Current: 2, Max: 2}); got != want {
		t.Fatalf("FromDays = %+v, want %+v", got, want)
	}
	if n := len(Distinct(in)); n != 2 {
		t.Fatalf("Distinct kept %d dates, want 2", n)
	}
}
