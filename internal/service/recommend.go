package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// HeuristicRecommender собирает образ по температуре: слои от холода к жаре,
// по одной вещи на категорию из присланного гардероба.
type HeuristicRecommender struct{}

func (HeuristicRecommender) Name() string { return HeuristicModel }

var tempDigits = regexp.MustCompile(`-?\d+`)

// parseTemp достаёт число градусов из строки вида "6℃"; ok=false если числа нет.
func parseTemp(s string) (int, bool) {
	m := tempDigits.FindString(s)
	if m == "" {
		return 0, false
	}
	t, err := strconv.Atoi(m)
	return t, err == nil
}

func seasonFor(temp int) string {
	switch {
	case temp <= 10:
		return "秋冬"
	case temp <= 18:
		return "春秋"
	default:
		return "春夏"
	}
}

// pick возвращает вещь категории, предпочитая подходящий сезон.
func pick(items []RecommendClosetItem, category, season string) (RecommendClosetItem, bool) {
	var first *RecommendClosetItem
	for i := range items {
		it := &items[i]
		if it.Category != category {
			continue
		}
		if season != "" && it.Season != "" && (strings.Contains(season, it.Season) || strings.Contains(it.Season, season)) {
			return *it, true
		}
		if first == nil {
			first = it
		}
	}
	if first == nil {
		return RecommendClosetItem{}, false
	}
	return *first, true
}

func describe(it RecommendClosetItem) string {
	parts := []string{it.Name}
	if it.Color != "" {
		parts = append(parts, it.Color+"色")
	}
	return strings.Join(parts, "，")
}

func (HeuristicRecommender) Recommend(_ context.Context, in RecommendInput) (Recommendation, error) {
	temp, known := parseTemp(in.Weather.Temp)
	if !known {
		temp = 16
	}
	season := seasonFor(temp)
	rainy := strings.Contains(in.Weather.Desc, "雨")
	city := strings.TrimSpace(in.Weather.City)
	if city == "" {
		city = "今天"
	}

	rec := Recommendation{
		Title:   "今日推荐",
		Summary: city + " " + strings.TrimSpace(in.Weather.Temp) + " " + strings.TrimSpace(in.Weather.Desc) + "，适合" + season + "穿搭",
	}
	rec.Summary = strings.Join(strings.Fields(rec.Summary), " ")

	add := func(category, reason string) {
		it, ok := pick(in.ClosetItems, category, season)
		if !ok {
			return
		}
		rec.Items = append(rec.Items, RecommendPick{Category: category, Reason: describe(it) + "：" + reason})
	}

	if temp <= 18 || rainy {
		reason := "气温偏低，外面加一层"
		if rainy {
			reason = "有雨，选一件能挡风雨的外套"
		}
		add("外套", reason)
	}
	if _, ok := pick(in.ClosetItems, "连衣裙", season); ok && temp > 18 && !strings.EqualFold(in.Gender, "MALE") {
		add("连衣裙", "天气暖和，一件连衣裙就够")
	} else {
		add("上衣", "作为内搭，"+season+"都合适")
		add("下装", "和上衣搭配，简洁不出错")
	}
	add("鞋子", "走路多也舒服")
	if len(rec.Items) == 0 && len(in.ClosetItems) > 0 {
		it := in.ClosetItems[0]
		rec.Items = append(rec.Items, RecommendPick{Category: it.Category, Reason: describe(it) + "：先从这件开始搭配"})
	}

	if rainy {
		rec.Tips = append(rec.Tips, "有雨，记得带伞")
	}
	if temp <= 10 {
		rec.Tips = append(rec.Tips, "气温低，注意保暖")
	}
	if temp >= 28 {
		rec.Tips = append(rec.Tips, "天气热，注意防晒补水")
	}
	if len(rec.Tips) == 0 {
		rec.Tips = []string{"早晚温差大，适当增减衣物"}
	}
	return rec, nil
}
