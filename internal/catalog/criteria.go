package catalog

// Criterion is a named predicate over one numeric field of an entry.
type Criterion struct {
	ID    string           `json:"id"`
	Label string           `json:"label"`
	Match func(v int) bool `json:"-"`
}

const All = "all"

func always(int) bool { return true }

// Prices are in cents.
var PriceCriteria = []Criterion{
	{ID: All, Label: "All prices", Match: always},
	{ID: "under-100", Label: "Under $100", Match: func(v int) bool { return v < 10000 }},
	{ID: "100-200", Label: "$100 - $200", Match: func(v int) bool { return v >= 10000 && v < 20000 }},
	{ID: "200-plus", Label: "$200+", Match: func(v int) bool { return v >= 20000 }},
}

// Durations are in minutes.
var DurationCriteria = []Criterion{
	{ID: All, Label: "Any duration", Match: always},
	{ID: "up-to-30", Label: "Up to 30 min", Match: func(v int) bool { return v <= 30 }},
	{ID: "30-60", Label: "30 - 60 min", Match: func(v int) bool { return v > 30 && v <= 60 }},
	{ID: "60-plus", Label: "Over 60 min", Match: func(v int) bool { return v > 60 }},
}

// lookupCriterion returns the criterion with the given id, falling back to
// the first ("all") entry of the table.
func lookupCriterion(table []Criterion, id string) Criterion {
	for _, c := range table {
		if c.ID == id {
			return c
		}
	}
	return table[0]
}

func knownCriterion(table []Criterion, id string) bool {
	for _, c := range table {
		if c.ID == id {
			return true
		}
	}
	return false
}
