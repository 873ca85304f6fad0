package view

// OutfitRow is an outfit card ready for printing.
type OutfitRow struct {
	ID       int64
	Title    string
	Tags     string
	Meta     string // "gender · style · season · scene · weather"
	Favorite bool
}

// SwapHistoryRow is one line of the try-on history.
type SwapHistoryRow struct {
	ID          int64
	Title       string
	Status      string
	ResultPath  string
	HasResult   bool
	CreatedAt   string
	SourceLabel string
}

// ClosetRow is one closet item ready for printing.
type ClosetRow struct {
	ID       int64
	Name     string
	Category string
	Meta     string
	Favorite bool
	Synced   bool
}
