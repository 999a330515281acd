package checker

import "strings"

// Symptom is a selectable catalog entry.
type Symptom struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

var catalog = []Symptom{
	{ID: "fever", Name: "Fever", Icon: "fa-thermometer-half"},
	{ID: "headache", Name: "Headache", Icon: "fa-head-side-virus"},
	{ID: "cough", Name: "Cough", Icon: "fa-lungs"},
	{ID: "fatigue", Name: "Fatigue", Icon: "fa-bed"},
	{ID: "nausea", Name: "Nausea", Icon: "fa-stomach"},
	{ID: "chest-pain", Name: "Chest Pain", Icon: "fa-heart-pulse"},
	{ID: "body-aches", Name: "Body Aches", Icon: "fa-person-dots-from-line"},
	{ID: "shortness-breath", Name: "Shortness of Breath", Icon: "fa-wind"},
	{ID: "sore-throat", Name: "Sore Throat", Icon: "fa-mouth"},
}

// Catalog returns a copy of the symptom catalog in display order.
func Catalog() []Symptom {
	return append([]Symptom(nil), catalog...)
}

// LookupSymptom finds a catalog entry by id.
func LookupSymptom(id string) (Symptom, bool) {
	for _, s := range catalog {
		if s.ID == id {
			return s, true
		}
	}
	return Symptom{}, false
}

// SymptomNames maps ids to display names, skipping ids not in the catalog.
func SymptomNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if s, ok := LookupSymptom(id); ok {
			names = append(names, s.Name)
		}
	}
	return names
}

// MatchesQuery is the grid filter: case-insensitive substring on the name.
func (s Symptom) MatchesQuery(query string) bool {
	return strings.Contains(strings.ToLower(s.Name), strings.ToLower(query))
}
