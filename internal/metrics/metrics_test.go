package metrics

import "testing"

func TestDecisionLabel(t *testing.T) {
	if got := DecisionLabel(nil); got != "none" {
		t.Fatalf(`expected "none", got %q`, got)
	}
	if got := DecisionLabel([]string{"gaz"}); got != "gaz" {
		t.Fatalf(`expected "gaz", got %q`, got)
	}
	if got := DecisionLabel([]string{"electricite", "gaz"}); got != "dual" {
		t.Fatalf(`expected "dual", got %q`, got)
	}
}
