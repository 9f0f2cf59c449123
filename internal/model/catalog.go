package model

import "strings"

// CatalogItem is one row of the food catalog as captured in a run snapshot.
// The authoritative copy lives in the store and may change between runs; a
// snapshot is read-only for the duration of one run.
type CatalogItem struct {
	ID         string `json:"id"`
	Name       string `json:"name_jp"`
	Remarks    string `json:"remarks,omitempty"`
	FoodCode   string `json:"food_code,omitempty"`
	IndexCode  string `json:"index_code,omitempty"`
	GroupID    string `json:"group_id"`
	GroupName  string `json:"group_name"`
	GroupOrder int    `json:"group_order"`
}

// EmbeddingText returns the text that gets embedded for this item:
// the display name plus remarks, if any.
func (c CatalogItem) EmbeddingText() string {
	return strings.TrimSpace(c.Name + " " + c.Remarks)
}
