package model

// Tag provenance values stored in Outfit.TagSource.
const (
	TagSourceSeed      = "SEED"
	TagSourceHeuristic = "HEURISTIC"
	TagSourceAI        = "AI"
)

// Gender codes shared by outfits and the profile preference.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderUnisex = "UNISEX"
)

// Outfit is a curated outfit card from the bundled catalog.
type Outfit struct {
	ID           int64
	Title        string
	Tags         string // " · " separated keywords
	Gender       string
	Style        string
	Season       string
	Scene        string
	Weather      string
	ColorHex     string
	CoverRef     string
	TagSource    string
	TagModel     string
	AITagsJSON   string
	TagUpdatedAt int64
	CreatedAt    int64
}

// OutfitCard is an outfit together with the viewer's favorite flag.
type OutfitCard struct {
	Outfit
	IsFavorite bool
	// FavoritedAt is set for rows loaded from the favorites list.
	FavoritedAt int64
}

// OutfitFilter narrows the outfit list. Empty fields do not filter.
type OutfitFilter struct {
	Query   string
	Gender  string
	Style   string
	Season  string
	Scene   string
	Weather string
}

// OutfitTags is the tagging result written back to an outfit.
type OutfitTags struct {
	Gender     string
	Style      string
	Season     string
	Scene      string
	Weather    string
	Tags       string
	TagSource  string
	TagModel   string
	AITagsJSON string
	UpdatedAt  int64
}
