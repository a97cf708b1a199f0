package models

type Category struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
	Color  string `json:"color_code,omitempty"`
}

// DefaultCategories seeds the three lab service categories.
func DefaultCategories() []Category {
	return []Category{
		{ID: 1, Name: "Periksa Lab", Prefix: "A", Color: "#2563eb"},
		{ID: 2, Name: "PCR / Swab Test", Prefix: "B", Color: "#059669"},
		{ID: 3, Name: "Result Collection", Prefix: "C", Color: "#f97316"},
	}
}
