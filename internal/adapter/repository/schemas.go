package repository

import "github.com/eslsoft/vocengage/pkg/filterexpr"

var listItemProgressSchema = filterexpr.ResourceSchema{
	Filter: map[string]filterexpr.FilterField{
		"language": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Language"},
		},
		"keyword": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Keyword"},
		},
		"word": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpSW: "WordPrefix"},
		},
		"mastery": {
			Kind: filterexpr.KindNumber,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpGTE: "MasteryMin",
				filterexpr.OpLTE: "MasteryMax",
			},
		},
		"difficulty": {
			Kind: filterexpr.KindString,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpEQ: "Difficulty",
				filterexpr.OpIN: "Difficulties",
			},
		},
		"category": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Category"},
		},
		"next_review_time": {
			Kind: filterexpr.KindTimestamp,
			Ops:  map[filterexpr.Op]string{filterexpr.OpLTE: "DueBefore"},
		},
	},
	Order: filterexpr.OrderSchema{
		DefaultPrimary:     "update_time",
		DefaultPrimaryDesc: true,
		FallbackKey:        "id",
		FallbackDesc:       false,
		Fields: map[string]filterexpr.OrderField{
			"update_time":      {Column: "updated_at"},
			"next_review_time": {Column: "next_review_due_at"},
			"mastery":          {Column: "mastery_level"},
			"word":             {Column: "word"},
			"id":               {Column: "id"},
		},
	},
}

var listSessionsSchema = filterexpr.ResourceSchema{
	Filter: map[string]filterexpr.FilterField{
		"language": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Language"},
		},
		"session_type": {
			Kind: filterexpr.KindString,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpEQ: "Type",
				filterexpr.OpIN: "Types",
			},
		},
		"completed": {
			Kind: filterexpr.KindBool,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Completed"},
		},
		"start_time": {
			Kind: filterexpr.KindTimestamp,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpGTE: "StartedAfter",
				filterexpr.OpLTE: "StartedBefore",
			},
		},
	},
	Order: filterexpr.OrderSchema{
		DefaultPrimary:     "start_time",
		DefaultPrimaryDesc: true,
		FallbackKey:        "id",
		FallbackDesc:       false,
		Fields: map[string]filterexpr.OrderField{
			"start_time": {Column: "started_at"},
			"end_time":   {Column: "ended_at"},
			"accuracy":   {Column: "accuracy"},
			"id":         {Column: "id"},
		},
	},
}

type orderTerm struct {
	column string
	desc   bool
}

func orderTerms(schema filterexpr.OrderSchema, primary string, primaryDesc bool, secondary string, secondaryDesc bool) []string {
	terms := []orderTerm{
		{column: schema.Column(primary), desc: primaryDesc},
		{column: schema.Column(secondary), desc: secondaryDesc},
	}
	out := make([]string, 0, len(terms)+1)
	seen := map[string]bool{}
	for _, t := range terms {
		if seen[t.column] {
			continue
		}
		seen[t.column] = true
		out = append(out, orderExpr(t.column, t.desc))
	}
	if !seen["id"] {
		out = append(out, orderExpr("id", false))
	}
	return out
}
