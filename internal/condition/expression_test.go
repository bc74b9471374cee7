package condition

import (
	"errors"
	"testing"

	"github.com/mfcabral/rulegate/internal/fact"
)

func snap(kv ...any) fact.Snapshot {
	s := make(fact.Snapshot)
	for i := 0; i < len(kv)-1; i += 2 {
		s[kv[i].(string)] = kv[i+1]
	}
	return s
}

type evalCase struct {
	name string
	cond string
	snap fact.Snapshot
	want bool
}

func TestEval(t *testing.T) {
	cases := []evalCase{
		// Numeric comparisons
		{
			name: "gt true",
			cond: "temp > 30",
			snap: snap("temp", float64(35)),
			want: true,
		},
		{
			name: "gt false",
			cond: "temp > 30",
			snap: snap("temp", float64(20)),
			want: false,
		},
		{
			name: "gte equal",
			cond: "temp >= 30",
			snap: snap("temp", float64(30)),
			want: true,
		},
		{
			name: "lt true",
			cond: "humidity < 50",
			snap: snap("humidity", float64(40)),
			want: true,
		},
		{
			name: "lte false",
			cond: "humidity <= 40",
			snap: snap("humidity", float64(41)),
			want: false,
		},
		{
			name: "int fact compares with float literal",
			cond: "temp > 30",
			snap: snap("temp", 35),
			want: true,
		},
		// String equality
		{
			name: "eq string true",
			cond: `status == "open"`,
			snap: snap("status", "open"),
			want: true,
		},
		{
			name: "neq string",
			cond: `status != "open"`,
			snap: snap("status", "closed"),
			want: true,
		},
		// Boolean
		{
			name: "bool eq true",
			cond: "armed == true",
			snap: snap("armed", true),
			want: true,
		},
		{
			name: "bool eq false literal",
			cond: "armed == false",
			snap: snap("armed", true),
			want: false,
		},
		// AND / OR / parens
		{
			name: "AND both true",
			cond: "temp > 30 AND humidity < 50",
			snap: snap("temp", float64(35), "humidity", float64(40)),
			want: true,
		},
		{
			name: "AND second false",
			cond: "temp > 30 AND humidity < 50",
			snap: snap("temp", float64(35), "humidity", float64(60)),
			want: false,
		},
		{
			name: "OR first true",
			cond: "temp > 30 OR humidity < 50",
			snap: snap("temp", float64(35), "humidity", float64(90)),
			want: true,
		},
		{
			name: "OR both false",
			cond: "temp > 30 OR humidity < 50",
			snap: snap("temp", float64(10), "humidity", float64(90)),
			want: false,
		},
		{
			name: "parens change precedence",
			cond: `(temp > 30 OR temp < 0) AND status == "open"`,
			snap: snap("temp", float64(-5), "status", "open"),
			want: true,
		},
		{
			name: "lowercase keywords",
			cond: "temp > 30 and humidity < 50",
			snap: snap("temp", float64(35), "humidity", float64(40)),
			want: true,
		},
		// NOT
		{
			name: "NOT true",
			cond: "NOT temp > 30",
			snap: snap("temp", float64(20)),
			want: true,
		},
		// contains / matches
		{
			name: "contains true",
			cond: `tags contains "vip"`,
			snap: snap("tags", "vip-member"),
			want: true,
		},
		{
			name: "matches true",
			cond: `email matches ".*@example\\.com"`,
			snap: snap("email", "user@example.com"),
			want: true,
		},
		// Missing facts fail open to false, never error.
		{
			name: "missing fact is false",
			cond: "temp > 30 AND humidity < 50",
			snap: snap("temp", float64(35)),
			want: false,
		},
		{
			name: "missing fact under NOT",
			cond: "NOT humidity < 50",
			snap: snap(),
			want: true,
		},
		{
			name: "missing fact rescued by OR",
			cond: "humidity < 50 OR temp > 30",
			snap: snap("temp", float64(35)),
			want: true,
		},
		// Type mismatches are false, not errors.
		{
			name: "numeric op on string fact",
			cond: "status > 10",
			snap: snap("status", "open"),
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EvalString(tc.cond, tc.snap)
			if err != nil {
				t.Fatalf("EvalString(%q) error: %v", tc.cond, err)
			}
			if got != tc.want {
				t.Errorf("EvalString(%q) = %v, want %v", tc.cond, got, tc.want)
			}
		})
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	cases := []string{
		``,
		`"unterminated`,
		`temp 30`,              // missing operator
		`(temp > 30`,           // unbalanced parens
		`temp > 30 AND`,        // dangling keyword
		`temp > 30) OR x == 1`, // stray close paren
		`temp = 30`,            // single '=' is not an operator
	}
	for _, cond := range cases {
		t.Run(cond, func(t *testing.T) {
			_, err := Parse(cond)
			if err == nil {
				t.Fatalf("expected parse error for %q, got nil", cond)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Errorf("expected *SyntaxError, got %T: %v", err, err)
			}
		})
	}
}

// A malformed condition must surface as a SyntaxError at evaluation,
// never as a silent false.
func TestEvalString_SurfacesSyntaxError(t *testing.T) {
	_, err := EvalString("(temp > 30 AND humidity < 50", snap("temp", float64(35)))
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
	}
}

func TestEval_Deterministic(t *testing.T) {
	s := snap("temp", float64(35), "humidity", float64(40))
	ast, err := Parse("temp > 30 AND humidity < 50")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		got, err := Eval(ast, s)
		if err != nil || !got {
			t.Fatalf("run %d: got (%v, %v), want (true, nil)", i, got, err)
		}
	}
}
