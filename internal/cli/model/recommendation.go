package model

// RecommendItem is one suggested piece of the day's outfit.
type RecommendItem struct {
	Category string
	Reason   string
	ItemID   int64  // closet item picked for the category, 0 when none
	Name     string // closet item name
	ImageURI string
}

// Recommendation is the home screen suggestion.
type Recommendation struct {
	Title   string
	Summary string
	Items   []RecommendItem
	Tips    []string
	Season  string
	FromAI  bool
}
