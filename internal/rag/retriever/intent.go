package retriever

import (
	"strings"

	"github.com/specwright/ConstructQA/internal/domain/docModel"
)

// Keyword vocabulary per extraction category, checked in this fixed order;
// the first category with any matching keyword wins. This is a coarse
// substring heuristic, not NLU.
var intentTable = []struct {
	category docModel.Category
	keywords []string
}{
	{docModel.CategoryDoorSchedule, []string{"door schedule", "door table", "list doors", "generate door"}},
	{docModel.CategoryRoomSummary, []string{"room summary", "room list", "list rooms", "room schedule"}},
	{docModel.CategoryEquipmentList, []string{"equipment list", "equipment schedule", "mep equipment"}},
}

// DetectExtractionIntent reports whether the query asks for a structured
// extraction and which category it targets.
func DetectExtractionIntent(query string) (bool, docModel.Category) {
	queryLower := strings.ToLower(query)

	for _, entry := range intentTable {
		for _, keyword := range entry.keywords {
			if strings.Contains(queryLower, keyword) {
				return true, entry.category
			}
		}
	}
	return false, docModel.CategoryNone
}
