package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/specwright/ConstructQA/internal/domain/docModel"
)

// Deterministic regex fallback for door schedules, used when the model's
// output cannot be parsed. It scans for mark-like tokens, then searches each
// mark's trailing context independently for dimensions and a fire rating.
// It never fails; a mark with no matching attributes still yields a record.

const (
	maxFallbackMarks = 20  //bound the noise from false-positive mark tokens
	markWindowLen    = 200 //trailing context searched per mark
	inchThreshold    = 100 //dimension values below this are taken as inches
	mmPerInch        = 25.4
)

var (
	// "D-101", "D101", "D101A", or bare 3-digit marks like "101"/"101A".
	markPattern = regexp.MustCompile(`\b(?:D-?\d+[A-Z]?|\d{3}[A-Z]?)\b`)
	dimPattern  = regexp.MustCompile(`(\d+)\s*[xX×]\s*(\d+)`)
	ratePattern = regexp.MustCompile(`(?i)(\d+)\s*(HR|HOUR|MIN)`)
)

func fallbackDoorExtraction(text string) []docModel.ExtractedRecord {
	doors := []docModel.ExtractedRecord{}

	matches := markPattern.FindAllStringIndex(text, maxFallbackMarks)
	for _, loc := range matches {
		mark := text[loc[0]:loc[1]]
		window := trailingWindow(text, loc[1])

		door := docModel.ExtractedRecord{
			"mark":        mark,
			"location":    nil,
			"width_mm":    nil,
			"height_mm":   nil,
			"fire_rating": nil,
			"material":    nil,
		}

		if dims := dimPattern.FindStringSubmatch(window); dims != nil {
			w, _ := strconv.Atoi(dims[1])
			h, _ := strconv.Atoi(dims[2])
			// Small first value means the pair is in inches.
			if w < inchThreshold {
				door["width_mm"] = toMillimeters(w)
				door["height_mm"] = toMillimeters(h)
			} else {
				door["width_mm"] = w
				door["height_mm"] = h
			}
		}

		// Normalized to "<digits> <UNIT>" with a single space.
		if rating := ratePattern.FindStringSubmatch(window); rating != nil {
			door["fire_rating"] = rating[1] + " " + strings.ToUpper(rating[2])
		}

		doors = append(doors, door)
	}

	return doors
}

// trailingWindow returns up to markWindowLen characters after the mark,
// stopping at the end of its line.
func trailingWindow(text string, from int) string {
	end := from + markWindowLen
	if end > len(text) {
		end = len(text)
	}
	window := text[from:end]
	if nl := strings.IndexByte(window, '\n'); nl >= 0 {
		window = window[:nl]
	}
	return window
}

// toMillimeters converts inches, truncating toward zero the way the rest of
// the pipeline rounds dimensions.
func toMillimeters(inches int) int {
	return int(float64(inches) * mmPerInch)
}
