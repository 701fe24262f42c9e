package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/specwright/ConstructQA/internal/domain/docModel"
)

// Models wrap JSON output unpredictably: fenced code blocks, prose around the
// array, or the bare array. Locate the most specific shape first.
var (
	fencedArrayPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")
	bareArrayPattern   = regexp.MustCompile(`(?s)\[.*\]`)
)

// parseRecordArray extracts the JSON array from a model response and decodes
// it. Non-object elements are skipped; anything else is passed through.
func parseRecordArray(response string) ([]docModel.ExtractedRecord, error) {
	jsonStr := locateArray(strings.TrimSpace(response))

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("decoding record array: %w", err)
	}

	records := make([]docModel.ExtractedRecord, 0, len(raw))
	for _, item := range raw {
		var rec docModel.ExtractedRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func locateArray(response string) string {
	if m := fencedArrayPattern.FindStringSubmatch(response); m != nil {
		return m[1]
	}
	if m := bareArrayPattern.FindString(response); m != "" {
		return m
	}
	return response
}
