package domain

// Category is an entry of the static category vocabulary exposed to clients
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// DefaultCategories returns the built-in category list
func DefaultCategories() []Category {
	return []Category{
		{ID: "politique", Label: "Politique"},
		{ID: "sport", Label: "Sports"},
		{ID: "sante", Label: "Santé"},
		{ID: "religion", Label: "Religion"},
		{ID: "culture", Label: "Culture"},
		{ID: "soc", Label: "Société"},
		{ID: "eco", Label: "Économie"},
	}
}
