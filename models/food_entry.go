package models

import "time"

// FoodEntry is one logged food item. Entries are immutable once stored:
// they are either removed explicitly or moved into an IntakeArchive at the
// day boundary, never edited in place.
type FoodEntry struct {
	ID          string    `json:"id"`
	UserID      uint      `json:"user_id"`
	Name        string    `json:"name"`
	Calories    float64   `json:"calories"`
	Protein     float64   `json:"protein"`
	Carbs       float64   `json:"carbs"`
	Fat         float64   `json:"fat"`
	ServingSize string    `json:"serving_size,omitempty"`
	HealthScore *int      `json:"health_score,omitempty"` // 0–10 when the analysis supplied one
	ImageURL    string    `json:"image_url,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}

// MacroTotals is the derived sum over a set of entries. It is always
// recomputed from the entries, never adjusted in place.
type MacroTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}
