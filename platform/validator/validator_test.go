package validator

import "testing"

type tripWindow struct {
	Month string  `validate:"omitempty,yearmonth"`
	Time  string  `validate:"omitempty,hhmm"`
	Date  *string `validate:"omitempty,isodate"`
}

func TestCustomTags(t *testing.T) {
	v := New()
	date := "2025-12-20"
	if err := v.Struct(tripWindow{Month: "2025-12", Time: "09:05", Date: &date}); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}

	bad := []tripWindow{
		{Month: "2025-13"},
		{Time: "24:00"},
		{Time: "9:05"},
		{Date: strPtr("20-12-2025")},
	}
	for _, b := range bad {
		if err := v.Struct(b); err == nil {
			t.Fatalf("expected validation error for %+v", b)
		}
	}
}

func strPtr(s string) *string { return &s }
