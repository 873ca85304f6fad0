package model

import (
	"time"

	"gorm.io/datatypes"
)

// ClosetItem — серверная копия вещи из гардероба пользователя.
type ClosetItem struct {
	ID     int64 `gorm:"primaryKey"`
	UserID int64 `gorm:"not null;index"` // ссылка на users.id

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	// Owner — логин владельца на стороне клиента
	Owner      string `gorm:"index"`
	Name       string `gorm:"not null"`
	Category   string
	Color      string
	Season     string
	Style      string
	Scene      string
	IsFavorite bool `gorm:"not null;default:false"`

	// ImageKey — имя объекта в хранилище, ImageURL — публичная ссылка на него
	ImageKey string
	ImageURL string

	Tags     datatypes.JSON
	TagModel string

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// ClosetPatch — частичное обновление вещи; nil-поля не меняются.
type ClosetPatch struct {
	Name       *string
	Category   *string
	Color      *string
	Season     *string
	Style      *string
	Scene      *string
	IsFavorite *bool
}

// Columns возвращает изменяемые колонки для gorm Updates.
func (p ClosetPatch) Columns() map[string]any {
	cols := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	set("name", p.Name)
	set("category", p.Category)
	set("color", p.Color)
	set("season", p.Season)
	set("style", p.Style)
	set("scene", p.Scene)
	if p.IsFavorite != nil {
		cols["is_favorite"] = *p.IsFavorite
	}
	return cols
}
