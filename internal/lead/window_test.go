package lead

import (
	"testing"
	"time"
)

func TestWindowValidate(t *testing.T) {
	tests := []struct {
		name    string
		w       Window
		wantErr bool
	}{
		{"hours only", Window{Hours: 48}, false},
		{"days only", Window{Days: 7}, false},
		{"since midnight only", Window{SinceMidnight: true}, false},
		{"hours and days", Window{Hours: 24, Days: 1}, true},
		{"nothing set", Window{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWindowBoundsSinceMidnight(t *testing.T) {
	ref := time.Date(2025, time.September, 26, 14, 30, 0, 0, time.Local)
	start, end := Window{SinceMidnight: true, Reference: ref}.Bounds()

	wantStart := time.Date(2025, time.September, 25, 0, 0, 0, 0, time.Local)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(ref) {
		t.Errorf("end = %v, want %v", end, ref)
	}
}

func TestFilterInclusiveBounds(t *testing.T) {
	ref := time.Date(2025, time.September, 26, 12, 0, 0, 0, time.Local)
	w := Window{Hours: 48, Reference: ref}

	at := func(t time.Time) *Lead { return &Lead{PaidAt: t, HasPaidAt: true} }
	exactStart := at(ref.Add(-48 * time.Hour))
	justBefore := at(ref.Add(-48*time.Hour - time.Second))
	inside := at(ref.Add(-time.Hour))
	exactEnd := at(ref)
	after := at(ref.Add(time.Second))
	noDate := &Lead{}

	got := Filter([]*Lead{exactStart, justBefore, inside, exactEnd, after, noDate}, w)
	if len(got) != 3 {
		t.Fatalf("Filter kept %d leads, want 3", len(got))
	}
	if got[0] != exactStart || got[1] != inside || got[2] != exactEnd {
		t.Error("Filter kept the wrong leads; bounds must be inclusive")
	}
}

func TestFilterDays(t *testing.T) {
	ref := time.Date(2025, time.September, 26, 12, 0, 0, 0, time.Local)
	w := Window{Days: 7, Reference: ref}

	in := &Lead{PaidAt: ref.AddDate(0, 0, -7), HasPaidAt: true}
	out := &Lead{PaidAt: ref.AddDate(0, 0, -8), HasPaidAt: true}
	got := Filter([]*Lead{in, out}, w)
	if len(got) != 1 || got[0] != in {
		t.Errorf("Filter with Days=7 kept %d leads", len(got))
	}
}

func TestDedupeKeepsFirst(t *testing.T) {
	a := &Lead{ID: "100", Email: "first@example.com"}
	b := &Lead{ID: "100", Email: "second@example.com"}
	c := &Lead{ID: "200"}

	got := Dedupe([]*Lead{a, b, c})
	if len(got) != 2 {
		t.Fatalf("Dedupe kept %d leads, want 2", len(got))
	}
	if got[0].Email != "first@example.com" {
		t.Errorf("Dedupe kept %q, want the first occurrence", got[0].Email)
	}
	if got[1] != c {
		t.Error("unique lead dropped")
	}
}

func TestDedupeEmptyIDsExempt(t *testing.T) {
	a := &Lead{Email: "a@example.com"}
	b := &Lead{Email: "b@example.com"}
	got := Dedupe([]*Lead{a, b})
	if len(got) != 2 {
		t.Errorf("Dedupe removed leads with empty identifiers: kept %d", len(got))
	}
}

func TestDedupeTrimsIDs(t *testing.T) {
	a := &Lead{ID: "100"}
	b := &Lead{ID: " 100 "}
	got := Dedupe([]*Lead{a, b})
	if len(got) != 1 {
		t.Errorf("Dedupe kept %d leads, want 1 (identifiers compare trimmed)", len(got))
	}
}
