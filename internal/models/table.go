package models

import "fmt"

// OvalTableNumber identifies the special oval table. It can never be
// combined with other tables, regardless of what the payload says.
const OvalTableNumber = "3"

// Table is a restaurant table as managed by the admin backend.
// TableNumber is a string on purpose: numbers like "3" name special
// tables and are not guaranteed to be numeric.
type Table struct {
	TableNumber    string   `json:"table_number"`
	Area           string   `json:"area"`               // restaurant, terrasse, event
	SubArea        string   `json:"sub_area,omitempty"` // saal, wintergarten (restaurant only)
	SeatsMax       int      `json:"seats_max"`
	SeatsDefault   int      `json:"seats_default"`
	Combinable     bool     `json:"combinable"`
	CombinableWith []string `json:"combinable_with,omitempty"`
	Fixed          bool     `json:"fixed"`
	Active         bool     `json:"active"`
}

// Normalize enforces the hard business rules on a table record as it
// arrives from the backend or from user input:
//   - table "3" is never combinable
//   - seats_default may not exceed seats_max
//   - sub_area is only meaningful inside the restaurant area
func (t *Table) Normalize() {
	if t.TableNumber == OvalTableNumber {
		t.Combinable = false
		t.CombinableWith = nil
	}
	if t.SeatsDefault > t.SeatsMax {
		t.SeatsDefault = t.SeatsMax
	}
	if t.Area != AreaRestaurant {
		t.SubArea = ""
	}
}

// CombinationWarnings returns human-readable warnings for combination
// sets that cross sub-areas. The backend rejects such sets; the admin
// surface only warns.
func CombinationWarnings(t Table, all []Table) []string {
	if len(t.CombinableWith) == 0 {
		return nil
	}

	bySub := make(map[string]string, len(all))
	for _, other := range all {
		bySub[other.TableNumber] = other.SubArea
	}

	var warnings []string
	for _, number := range t.CombinableWith {
		sub, ok := bySub[number]
		if !ok {
			continue
		}
		if sub != t.SubArea {
			warnings = append(warnings, fmt.Sprintf(
				"table %s (%s) and table %s (%s) are in different sub-areas",
				t.TableNumber, t.SubArea, number, sub))
		}
	}
	return warnings
}
