package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"DressCode/internal/cli/api"
	"DressCode/internal/cli/model"
)

const (
	recommendTitle  = "今日推荐"
	fromBackend     = "来自后端推荐"
	emptyClosetHint = "衣橱还是空的，先添加几件衣物，就能按天气给你搭配"
	sampleTip       = "早晚温差大，出门前看一眼天气，适当增减衣物"

	maxSummaryRunes = 80
	maxTips         = 4
	maxTipRunes     = 36
	// identical AI requests inside this window are not repeated
	dedupeWindow = 4 * time.Second
)

// Recommender is the remote recommendation endpoint.
type Recommender interface {
	Recommend(ctx context.Context, req api.RecommendRequest) (*model.Recommendation, error)
}

// RecommendInput — всё, от чего зависит рекомендация.
type RecommendInput struct {
	Closet  []model.ClosetItem
	Gender  string
	Weather model.WeatherSnapshot
}

// RecommendService строит рекомендацию на день: локально по правилам, затем через сервер.
type RecommendService struct {
	remote Recommender
	log    *zap.SugaredLogger
	now    func() time.Time

	mu      sync.Mutex
	lastKey string
	lastAt  time.Time
	lastAI  *model.Recommendation
}

// NewRecommendService создаёт сервис. remote может быть nil: тогда только локальные правила.
func NewRecommendService(remote Recommender, log *zap.SugaredLogger) *RecommendService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &RecommendService{remote: remote, log: log, now: time.Now}
}

var nonTempChars = regexp.MustCompile(`[^0-9-]`)

// ParseTemp extracts the integer temperature from text such as "21℃". Unparsable input gives 16.
func ParseTemp(temp string) int {
	digits := nonTempChars.ReplaceAllString(temp, "")
	if digits == "" || digits == "-" {
		return 16
	}
	t, err := strconv.Atoi(digits)
	if err != nil {
		return 16
	}
	return t
}

// SeasonFromTemp: <=10 秋冬, <=18 春秋, иначе 春夏.
func SeasonFromTemp(temp string) string {
	t := ParseTemp(temp)
	switch {
	case t <= 10:
		return "秋冬"
	case t <= 18:
		return "春秋"
	default:
		return "春夏"
	}
}

func genderLabel(code string) string {
	switch code {
	case model.GenderMale:
		return "男"
	case model.GenderFemale:
		return "女"
	default:
		return "不限"
	}
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

// pickPreferSeason returns the first item of category whose season contains hint,
// or the first item of category.
func pickPreferSeason(items []model.ClosetItem, category, hint string) *model.ClosetItem {
	var fallback *model.ClosetItem
	for i := range items {
		it := &items[i]
		if it.Category != category {
			continue
		}
		if fallback == nil {
			fallback = it
		}
		if strings.Contains(it.Season, hint) {
			return it
		}
	}
	return fallback
}

func closetPick(it *model.ClosetItem, category, name, reason string) model.RecommendItem {
	return model.RecommendItem{Category: category, Reason: reason, ItemID: it.ID, Name: name, ImageURI: it.ImageURI}
}

// Local builds the rule-based recommendation.
func (s *RecommendService) Local(in RecommendInput) model.Recommendation {
	city := orDefault(in.Weather.City, "杭州")
	temp := orDefault(in.Weather.Temp, "--℃")
	desc := orDefault(in.Weather.Desc, "天气")
	meta := city + " " + temp + " · " + desc + " · " + genderLabel(in.Gender)

	rec := model.Recommendation{Title: recommendTitle, Summary: meta, Tips: []string{sampleTip}}
	if len(in.Closet) == 0 {
		rec.Items = []model.RecommendItem{{Name: recommendTitle, Reason: emptyClosetHint}}
		return rec
	}

	season := SeasonFromTemp(temp)
	rec.Season = season
	rainy := strings.Contains(desc, "雨")
	cold := ParseTemp(temp) <= 10
	fromCloset := meta + " · " + season + " · 来自你的衣橱"

	dress := pickPreferSeason(in.Closet, "连衣裙", season)
	top := pickPreferSeason(in.Closet, "上衣", season)
	bottom := pickPreferSeason(in.Closet, "下装", season)
	outer := pickPreferSeason(in.Closet, "外套", season)
	shoes := pickPreferSeason(in.Closet, "鞋子", season)

	if dress != nil {
		rec.Items = append(rec.Items, closetPick(dress, "连衣裙", "衣橱推荐："+dress.Name, fromCloset))
	}
	if top != nil && bottom != nil {
		rec.Items = append(rec.Items, closetPick(top, "上衣", "衣橱推荐："+top.Name+" + "+bottom.Name, fromCloset))
	}
	if outer != nil && (cold || rainy || top != nil) {
		prefix := "叠穿推荐："
		if rainy {
			prefix = "雨天外套："
		}
		rec.Items = append(rec.Items, closetPick(outer, "外套", prefix+outer.Name, meta+" · "+season+" · 出门更稳"))
	}
	if shoes != nil && len(rec.Items) > 0 {
		rec.Items[0].Reason += " · 搭配 " + shoes.Name
	}
	if len(rec.Items) == 0 {
		first := &in.Closet[0]
		rec.Items = append(rec.Items, closetPick(first, first.Category, "衣橱推荐："+first.Name, fromCloset))
	}

	if rainy {
		rec.Tips = append(rec.Tips, "有雨，记得带伞，鞋子选防水的")
	}
	if cold {
		rec.Tips = append(rec.Tips, "气温偏低，外套别忘了")
	}
	return rec
}

func requestKey(in RecommendInput) string {
	g := orDefault(in.Gender, model.GenderUnisex)
	return strings.Join([]string{
		strings.TrimSpace(in.Weather.City),
		strings.TrimSpace(in.Weather.Temp),
		strings.TrimSpace(in.Weather.Desc),
		g,
		strconv.Itoa(len(in.Closet)),
	}, "|")
}

// Recommend returns the local recommendation overridden by the server one when it answers.
// A failed remote call still returns the local result together with the error.
func (s *RecommendService) Recommend(ctx context.Context, in RecommendInput) (model.Recommendation, error) {
	local := s.Local(in)
	if s.remote == nil || len(in.Closet) == 0 {
		return local, nil
	}

	key := requestKey(in)
	now := s.now()
	s.mu.Lock()
	if key == s.lastKey && now.Sub(s.lastAt) < dedupeWindow {
		last := s.lastAI
		s.mu.Unlock()
		if last != nil {
			return *last, nil
		}
		return local, nil
	}
	s.lastKey, s.lastAt, s.lastAI = key, now, nil
	s.mu.Unlock()

	req := api.RecommendRequest{
		Weather: api.RecommendWeather{
			City: strings.TrimSpace(in.Weather.City),
			Temp: strings.TrimSpace(in.Weather.Temp),
			Desc: strings.TrimSpace(in.Weather.Desc),
		},
		Gender: orDefault(in.Gender, model.GenderUnisex),
	}
	for _, it := range in.Closet {
		req.ClosetItems = append(req.ClosetItems, api.RecommendClosetItem{
			ID:       it.ID,
			Name:     it.Name,
			Category: it.Category,
			Color:    it.Color,
			Season:   it.Season,
			Style:    it.Style,
			Scene:    it.Scene,
		})
	}
	ai, err := s.remote.Recommend(ctx, req)
	if err != nil {
		s.log.Warnw("remote recommendation failed, local one kept", "error", err)
		return local, err
	}
	rec := mergeAI(*ai, in.Closet, local.Season)

	s.mu.Lock()
	if s.lastKey == key {
		s.lastAI = &rec
	}
	s.mu.Unlock()
	return rec, nil
}

// mergeAI cleans up a server result and attaches closet photos by category.
func mergeAI(ai model.Recommendation, closet []model.ClosetItem, season string) model.Recommendation {
	out := model.Recommendation{
		Title:  orDefault(ai.Title, recommendTitle),
		Season: season,
		FromAI: true,
	}
	out.Summary = trimRunes(orDefault(ai.Summary, fromBackend), maxSummaryRunes)
	for _, it := range ai.Items {
		cat := strings.TrimSpace(it.Category)
		name := "推荐单品"
		if cat != "" {
			name += "：" + cat
		}
		item := model.RecommendItem{Category: cat, Name: name, Reason: orDefault(it.Reason, fromBackend)}
		for _, c := range closet {
			if cat != "" && c.Category == cat {
				item.ItemID, item.ImageURI = c.ID, c.ImageURI
				break
			}
		}
		out.Items = append(out.Items, item)
	}
	out.Tips = formatTips(ai.Tips)
	if len(out.Tips) == 0 {
		out.Tips = []string{sampleTip}
	}
	return out
}

var spaces = regexp.MustCompile(`\s+`)

func formatTips(tips []string) []string {
	var out []string
	for _, t := range tips {
		line := strings.TrimSpace(spaces.ReplaceAllString(t, " "))
		if line == "" {
			continue
		}
		out = append(out, trimRunes(line, maxTipRunes))
		if len(out) >= maxTips {
			break
		}
	}
	return out
}

// trimRunes cuts s to max runes, the last one replaced by "…".
func trimRunes(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max < 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
