// Package viewstate turns repository streams into what the commands print.
package viewstate

import (
	"context"
	"strings"
	"time"

	"DressCode/internal/cli/live"
	"DressCode/internal/cli/model"
	"DressCode/internal/cli/model/view"
	"DressCode/internal/cli/service"
)

// OutfitSource streams outfit cards.
type OutfitSource interface {
	Browse(ctx context.Context, f model.OutfitFilter) <-chan []model.OutfitCard
}

// OutfitBrowser maps filter events to outfit rows. An empty gender filter means the
// profile gender unless AllGenders is set.
type OutfitBrowser struct {
	src           OutfitSource
	profileGender string
}

func NewOutfitBrowser(src OutfitSource, profileGender string) *OutfitBrowser {
	return &OutfitBrowser{src: src, profileGender: profileGender}
}

// OutfitQuery is one state of the search box and filter chips.
type OutfitQuery struct {
	model.OutfitFilter
	AllGenders bool
}

func (b *OutfitBrowser) filter(q OutfitQuery) model.OutfitFilter {
	f := q.OutfitFilter
	f.Query = strings.TrimSpace(f.Query)
	if f.Gender == "" && !q.AllGenders {
		f.Gender = b.profileGender
	}
	return f
}

// Rows follows queries and emits the rows of the latest one.
func (b *OutfitBrowser) Rows(ctx context.Context, queries <-chan OutfitQuery) <-chan []view.OutfitRow {
	cards := live.Switch(ctx, queries, func(sub context.Context, q OutfitQuery) <-chan []model.OutfitCard {
		return b.src.Browse(sub, b.filter(q))
	})
	return live.Map(ctx, cards, OutfitRows)
}

// Snapshot returns the rows of one query.
func (b *OutfitBrowser) Snapshot(ctx context.Context, q OutfitQuery) ([]view.OutfitRow, error) {
	sub, cancel := context.WithCancel(ctx)
	defer cancel()
	return live.First(sub, live.Map(sub, b.src.Browse(sub, b.filter(q)), OutfitRows))
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " · ")
}

// OutfitRows converts cards for printing.
func OutfitRows(cards []model.OutfitCard) []view.OutfitRow {
	rows := make([]view.OutfitRow, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, view.OutfitRow{
			ID:       c.ID,
			Title:    c.Title,
			Tags:     c.Tags,
			Meta:     joinNonEmpty(c.Gender, c.Style, c.Season, c.Scene, c.Weather),
			Favorite: c.IsFavorite,
		})
	}
	return rows
}

// ClosetRows converts closet items for printing.
func ClosetRows(items []model.ClosetItem) []view.ClosetRow {
	rows := make([]view.ClosetRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, view.ClosetRow{
			ID:       it.ID,
			Name:     it.Name,
			Category: it.Category,
			Meta:     joinNonEmpty(it.Color, it.Season, it.Style, it.Scene),
			Favorite: it.IsFavorite,
			Synced:   it.Synced(),
		})
	}
	return rows
}

// ClosetSource streams the closet.
type ClosetSource interface {
	List(ctx context.Context, category string) <-chan []model.ClosetItem
}

// HomeState is the home screen: weather plus the recommendation built from it.
type HomeState struct {
	Weather        model.WeatherSnapshot
	Recommendation model.Recommendation
	// Err is the remote recommendation error; Recommendation then holds the local one.
	Err error
}

// Home combines the weather snapshots with the closet stream.
type Home struct {
	closet ClosetSource
	rec    *service.RecommendService
	gender string
}

func NewHome(closet ClosetSource, rec *service.RecommendService, gender string) *Home {
	return &Home{closet: closet, rec: rec, gender: gender}
}

// States emits a new state whenever the weather or the closet changes.
func (h *Home) States(ctx context.Context, weather <-chan model.WeatherSnapshot) <-chan HomeState {
	inputs := live.Latest2(ctx, weather, h.closet.List(ctx, ""), func(w model.WeatherSnapshot, items []model.ClosetItem) service.RecommendInput {
		return service.RecommendInput{Closet: items, Gender: h.gender, Weather: w}
	})
	return live.Map(ctx, inputs, func(in service.RecommendInput) HomeState {
		r, err := h.rec.Recommend(ctx, in)
		return HomeState{Weather: in.Weather, Recommendation: r, Err: err}
	})
}

// Snapshot returns the state for one weather snapshot.
func (h *Home) Snapshot(ctx context.Context, w model.WeatherSnapshot) (HomeState, error) {
	sub, cancel := context.WithCancel(ctx)
	defer cancel()
	weather := make(chan model.WeatherSnapshot, 1)
	weather <- w
	return live.First(sub, h.States(sub, weather))
}

// HistorySource streams try-on jobs.
type HistorySource interface {
	History(ctx context.Context) <-chan []model.SwapJob
}

var sourceLabels = map[string]string{
	model.SourceCloset: "衣橱",
	model.SourceOutfit: "穿搭",
	model.SourceCustom: "自选",
}

// SwapHistoryRows converts jobs for printing. loc is the display time zone.
func SwapHistoryRows(jobs []model.SwapJob, loc *time.Location) []view.SwapHistoryRow {
	if loc == nil {
		loc = time.Local
	}
	rows := make([]view.SwapHistoryRow, 0, len(jobs))
	for _, j := range jobs {
		label := sourceLabels[j.SourceType]
		if label == "" {
			label = j.SourceType
		}
		rows = append(rows, view.SwapHistoryRow{
			ID:          j.ID,
			Title:       j.SourceTitle,
			Status:      j.Status,
			ResultPath:  j.ResultImageURI,
			HasResult:   j.ResultImageURI != "",
			CreatedAt:   time.UnixMilli(j.CreatedAt).In(loc).Format("2006-01-02 15:04"),
			SourceLabel: label,
		})
	}
	return rows
}

// SwapHistory streams history rows.
func SwapHistory(ctx context.Context, src HistorySource) <-chan []view.SwapHistoryRow {
	return live.Map(ctx, src.History(ctx), func(jobs []model.SwapJob) []view.SwapHistoryRow {
		return SwapHistoryRows(jobs, time.Local)
	})
}
