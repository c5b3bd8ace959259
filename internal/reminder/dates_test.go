package reminder

import (
	"testing"
	"time"
)

func TestResolveRepaymentDateISO(t *testing.T) {
	now := time.Date(2025, 5, 20, 15, 30, 0, 0, time.UTC)

	at, err := ResolveRepaymentDate("2025-06-05", now, 9, 0, time.UTC)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Fatalf("got %v, want %v", at, want)
	}
}

func TestResolveRepaymentDateLayouts(t *testing.T) {
	now := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	cases := []string{
		"05-06-2025",
		"05/06/2025",
		"June 5, 2025",
		"June 5 2025",
		"5 June 2025",
	}
	want := time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC)
	for _, raw := range cases {
		at, err := ResolveRepaymentDate(raw, now, 9, 0, time.UTC)
		if err != nil {
			t.Fatalf("resolve %q: %v", raw, err)
		}
		if !at.Equal(want) {
			t.Fatalf("resolve %q: got %v, want %v", raw, at, want)
		}
	}
}

func TestResolveRepaymentDateFuzzy(t *testing.T) {
	now := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)

	at, err := ResolveRepaymentDate("June 5th", now, 9, 0, time.UTC)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if at.Year() != 2025 || at.Month() != time.June || at.Day() != 5 {
		t.Fatalf("got date %v, want 2025-06-05", at)
	}
	if at.Hour() != 9 || at.Minute() != 0 {
		t.Fatalf("got clock %02d:%02d, want 09:00", at.Hour(), at.Minute())
	}
}

func TestResolveRepaymentDatePinsClock(t *testing.T) {
	now := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	at, err := ResolveRepaymentDate("2025-06-05", now, 8, 30, loc)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if at.Hour() != 8 || at.Minute() != 30 {
		t.Fatalf("got clock %02d:%02d, want 08:30", at.Hour(), at.Minute())
	}
	if at.Location() != loc {
		t.Fatalf("got location %v, want %v", at.Location(), loc)
	}
}

func TestResolveRepaymentDateGarbage(t *testing.T) {
	now := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	if _, err := ResolveRepaymentDate("no date was agreed", now, 9, 0, time.UTC); err == nil {
		t.Fatal("expected an error for unparseable input")
	}
}
