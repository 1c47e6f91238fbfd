package filterexpr

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

type listRequest struct {
	Filter  string
	OrderBy string
}

func (r listRequest) GetFilter() string  { return r.Filter }
func (r listRequest) GetOrderBy() string { return r.OrderBy }

type progressParams struct {
	Language      *string
	Keyword       *string
	MasteryMin    *int
	MasteryMax    *int
	Difficulties  []string
	DueBefore     *time.Time
	Completed     *bool
	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}

var progressSchema = ResourceSchema{
	Filter: map[string]FilterField{
		"language":   {Kind: KindString, Ops: map[Op]string{OpEQ: "Language"}},
		"keyword":    {Kind: KindString, Ops: map[Op]string{OpEQ: "Keyword", OpSW: "Keyword"}},
		"mastery":    {Kind: KindNumber, Ops: map[Op]string{OpGTE: "MasteryMin", OpLTE: "MasteryMax"}},
		"difficulty": {Kind: KindString, Ops: map[Op]string{OpEQ: "Difficulties", OpIN: "Difficulties"}},
		"due_time":   {Kind: KindTimestamp, Ops: map[Op]string{OpLTE: "DueBefore"}},
		"completed":  {Kind: KindBool, Ops: map[Op]string{OpEQ: "Completed"}},
	},
	Order: OrderSchema{
		DefaultPrimary:     "update_time",
		DefaultPrimaryDesc: true,
		FallbackKey:        "id",
		Fields: map[string]OrderField{
			"update_time": {Column: "updated_at"},
			"mastery":     {Column: "mastery_level"},
			"id":          {Column: "id"},
		},
	},
}

func TestBindPopulatesFilterAndDefaults(t *testing.T) {
	var params progressParams
	req := listRequest{Filter: "language == 'es' && mastery >= 40 && mastery <= 80 && due_time <= timestamp('2025-03-01T00:00:00Z')"}

	if err := Bind(req, &params, progressSchema); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	if params.Language == nil || *params.Language != "es" {
		t.Fatalf("expected language es, got %v", params.Language)
	}
	if params.MasteryMin == nil || *params.MasteryMin != 40 || params.MasteryMax == nil || *params.MasteryMax != 80 {
		t.Fatalf("unexpected mastery bounds %v..%v", params.MasteryMin, params.MasteryMax)
	}
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if params.DueBefore == nil || !params.DueBefore.Equal(want) {
		t.Fatalf("expected due before %v, got %v", want, params.DueBefore)
	}
	if params.Keyword != nil {
		t.Fatalf("expected keyword unset, got %q", *params.Keyword)
	}
	if params.PrimaryKey != "update_time" || !params.PrimaryDesc || params.SecondaryKey != "id" || params.SecondaryDesc {
		t.Fatalf("unexpected default order %+v", params)
	}
}

func TestBindStartsWithAndIn(t *testing.T) {
	var params progressParams
	req := listRequest{Filter: "keyword.startsWith('hab') && difficulty in ['easy', 'hard'] && completed == true"}

	if err := Bind(req, &params, progressSchema); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	if params.Keyword == nil || *params.Keyword != "hab" {
		t.Fatalf("expected keyword prefix hab, got %v", params.Keyword)
	}
	if !reflect.DeepEqual(params.Difficulties, []string{"easy", "hard"}) {
		t.Fatalf("unexpected difficulties %v", params.Difficulties)
	}
	if params.Completed == nil || !*params.Completed {
		t.Fatalf("expected completed=true, got %v", params.Completed)
	}
}

func TestBindOrderBy(t *testing.T) {
	tests := []struct {
		orderBy       string
		primary       string
		primaryDesc   bool
		secondary     string
		secondaryDesc bool
	}{
		{"mastery desc", "mastery", true, "id", false},
		{"mastery, update_time desc", "mastery", false, "update_time", true},
		{"id desc", "id", true, "update_time", true},
	}
	for _, tc := range tests {
		t.Run(tc.orderBy, func(t *testing.T) {
			var params progressParams
			if err := Bind(listRequest{OrderBy: tc.orderBy}, &params, progressSchema); err != nil {
				t.Fatalf("Bind returned error: %v", err)
			}
			if params.PrimaryKey != tc.primary || params.PrimaryDesc != tc.primaryDesc ||
				params.SecondaryKey != tc.secondary || params.SecondaryDesc != tc.secondaryDesc {
				t.Fatalf("unexpected order %+v", params)
			}
		})
	}
}

func TestOrderSchemaColumn(t *testing.T) {
	if got := progressSchema.Order.Column("mastery"); got != "mastery_level" {
		t.Fatalf("expected mastery_level, got %q", got)
	}
	if got := progressSchema.Order.Column("bogus"); got != "updated_at" {
		t.Fatalf("expected fallback to updated_at, got %q", got)
	}
}

func TestBindErrors(t *testing.T) {
	tests := []struct {
		name string
		req  listRequest
		want string
	}{
		{"unknown field", listRequest{Filter: "unknown == 'x'"}, "not allowed"},
		{"operator not allowed", listRequest{Filter: "language <= 'a'"}, "operator"},
		{"bad literal type", listRequest{Filter: "language == 1"}, "expected string"},
		{"or is rejected", listRequest{Filter: "language == 'es' || mastery <= 10"}, "only and"},
		{"non literal", listRequest{Filter: "mastery <= foo"}, "right-hand side"},
		{"fractional integer", listRequest{Filter: "mastery >= 10.5"}, "non-integer"},
		{"list of numbers", listRequest{Filter: "difficulty in [1]"}, "list literal elements must be strings"},
		{"unknown order key", listRequest{OrderBy: "word"}, "cannot be used for ordering"},
		{"bad direction", listRequest{OrderBy: "mastery sideways"}, "invalid order segment"},
		{"duplicate order key", listRequest{OrderBy: "mastery, mastery desc"}, "duplicate"},
		{"three keys", listRequest{OrderBy: "mastery, id, update_time"}, "at most two"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var params progressParams
			err := Bind(tc.req, &params, progressSchema)
			if err == nil {
				t.Fatalf("expected error for %+v", tc.req)
			}
			if !strings.Contains(strings.ToLower(err.Error()), tc.want) {
				t.Fatalf("expected error to contain %q, got %v", tc.want, err)
			}
		})
	}
}

func TestBindNilParams(t *testing.T) {
	var params *progressParams
	if err := Bind(listRequest{}, params, progressSchema); err == nil {
		t.Fatalf("expected error for nil params")
	}
}
