package model

// Source types of a try-on job.
const (
	SourceOutfit = "OUTFIT"
	SourceCloset = "CLOSET"
	SourceCustom = "CUSTOM"
)

// Try-on job statuses.
const (
	StatusPending     = "生成中"
	StatusDone        = "已生成"
	StatusPlaceholder = "已生成（占位）"
	StatusFailed      = "失败"
)

// SwapJob records one try-on attempt.
type SwapJob struct {
	ID             int64
	Owner          string
	OutfitID       int64 // set only when SourceType is OUTFIT
	SourceType     string
	SourceRefID    int64
	SourceTitle    string
	SourceImageURI string
	PersonImageURI string
	ResultImageURI string
	Status         string
	CreatedAt      int64
}
