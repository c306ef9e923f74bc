package models

// Category представляет категорию отчётов. Иерархии нет.
type Category struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	IconURL *string `json:"icon_url,omitempty" yaml:"icon_url,omitempty"`
}
