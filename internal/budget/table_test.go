package budget

import (
	"errors"
	"reflect"
	"testing"

	"budgetwatch/internal/core"
)

func TestParseTable(t *testing.T) {
	table, err := ParseTable(" Food:3000, Transport : 1500 ,,Gifts:0")
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if got := table.Categories(); !reflect.DeepEqual(got, []string{"Food", "Gifts", "Transport"}) {
		t.Fatalf("Categories() = %v", got)
	}
	if c, ok := table.Ceiling("Transport"); !ok || !c.Equal(d("1500")) {
		t.Errorf("Ceiling(Transport) = %s, %v", c, ok)
	}
	if _, ok := table.Ceiling("Gifts"); ok {
		t.Error("zero ceiling should not participate")
	}
	if _, ok := table.Ceiling("Travel"); ok {
		t.Error("absent category should not participate")
	}
	if _, ok := table.Ceiling(""); ok {
		t.Error("empty category should not participate")
	}

	for _, bad := range []string{"Food", ":3000", "Food:abc"} {
		if _, err := ParseTable(bad); err == nil {
			t.Errorf("ParseTable(%q) expected error", bad)
		}
	}
	if _, err := ParseTable("Food:x"); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("ParseTable(Food:x) error = %v, want ErrInvalidAmount", err)
	}
}

func TestParseThresholds(t *testing.T) {
	overrides, err := ParseThresholds("Food:0.9, Living:0.5")
	if err != nil {
		t.Fatalf("ParseThresholds() error = %v", err)
	}
	if len(overrides) != 2 {
		t.Fatalf("overrides = %v", overrides)
	}
	if got, _ := overrides["Living"].Classify(d("50"), d("100")); got != NearLimit {
		t.Errorf("Living override Classify(50, 100) = %v", got)
	}

	if _, err := ParseThresholds("Food:1.5"); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("ParseThresholds(Food:1.5) error = %v", err)
	}
	if empty, err := ParseThresholds(""); err != nil || len(empty) != 0 {
		t.Errorf("ParseThresholds(\"\") = %v, %v", empty, err)
	}
}
