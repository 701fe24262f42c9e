package extract

import (
	"fmt"
	"strings"
	"testing"
)

func TestFallbackDoorExtraction_InchConversion(t *testing.T) {
	records := fallbackDoorExtraction("D-101 single leaf 36 x 84 2 HR hollow metal")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	door := records[0]
	if door["mark"] != "D-101" {
		t.Errorf("mark got %v", door["mark"])
	}
	// Inch dimensions convert to mm, truncated.
	if door["width_mm"] != 914 {
		t.Errorf("width_mm got %v, want 914", door["width_mm"])
	}
	if door["height_mm"] != 2133 {
		t.Errorf("height_mm got %v, want 2133", door["height_mm"])
	}
	if door["fire_rating"] != "2 HR" {
		t.Errorf("fire_rating got %v", door["fire_rating"])
	}
}

func TestFallbackDoorExtraction_MillimetersPassThrough(t *testing.T) {
	// The bare "915" also reads as a mark token, so two records come back;
	// the first carries the dimensions.
	records := fallbackDoorExtraction("door 105A size 915 x 2134")
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["mark"] != "105A" {
		t.Errorf("mark got %v", records[0]["mark"])
	}
	if records[0]["width_mm"] != 915 || records[0]["height_mm"] != 2134 {
		t.Errorf("mm values should pass through, got %v x %v", records[0]["width_mm"], records[0]["height_mm"])
	}
}

func TestFallbackDoorExtraction_RatingNormalized(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"door 301 rated 90 min, painted", "90 MIN"},
		{"door 302 rated 2HR", "2 HR"},
		{"door 303 rated 1  hour", "1 HOUR"},
	}

	for _, tt := range tests {
		records := fallbackDoorExtraction(tt.text)
		if len(records) != 1 {
			t.Fatalf("%q: expected 1 record, got %d", tt.text, len(records))
		}
		if records[0]["fire_rating"] != tt.expected {
			t.Errorf("%q: fire_rating got %v, want %s", tt.text, records[0]["fire_rating"], tt.expected)
		}
	}
}

func TestFallbackDoorExtraction_MissingAttributesAreNil(t *testing.T) {
	records := fallbackDoorExtraction("D-7 corridor door")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	door := records[0]
	for _, field := range []string{"location", "width_mm", "height_mm", "fire_rating", "material"} {
		v, ok := door[field]
		if !ok {
			t.Errorf("field %s missing from record", field)
		}
		if v != nil {
			t.Errorf("field %s should be nil, got %v", field, v)
		}
	}
}

func TestFallbackDoorExtraction_WindowStopsAtLine(t *testing.T) {
	// Dimensions on the next line belong to the next mark, not this one.
	records := fallbackDoorExtraction("D-201 stairwell\n36 x 84")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0]["width_mm"] != nil {
		t.Errorf("dimensions across a line break should not attach, got %v", records[0]["width_mm"])
	}
}

func TestFallbackDoorExtraction_CapsMarkCount(t *testing.T) {
	var b strings.Builder
	for i := 101; i <= 130; i++ {
		fmt.Fprintf(&b, "door %d\n", i)
	}

	records := fallbackDoorExtraction(b.String())
	if len(records) != maxFallbackMarks {
		t.Errorf("expected cap at %d records, got %d", maxFallbackMarks, len(records))
	}
}

func TestFallbackDoorExtraction_NoMarks(t *testing.T) {
	records := fallbackDoorExtraction("no door information in this text")
	if records == nil || len(records) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", records)
	}
}
