package models

// Category is a static taxonomy entry. Reference data only; categories are
// never persisted or mutated at runtime.
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Slug  string `json:"slug" yaml:"slug"`
	Color string `json:"color" yaml:"color"`
	Image string `json:"image" yaml:"image"`
}
