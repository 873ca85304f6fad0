package tagging

import (
	"sort"
	"strings"
)

var styleRules = []rule{
	{needles: []string{"casual", "relax", "leisure"}, value: "休闲"},
	{needles: []string{"commute", "work", "office", "business", "formal"}, value: "通勤"},
	{needles: []string{"sport", "athlet", "gym"}, value: "运动"},
	{needles: []string{"date", "romantic"}, value: "约会"},
	{needles: []string{"street", "hip-hop", "hiphop"}, value: "街头"},
	{needles: []string{"techwear", "functional", "utility", "outdoor"}, value: "机能"},
}

var seasonRules = []rule{
	{needles: []string{"spring", "summer"}, value: "春夏", all: true},
	{needles: []string{"autumn", "winter"}, value: "秋冬", all: true},
	{needles: []string{"fall", "winter"}, value: "秋冬", all: true},
	{needles: []string{"spring", "autumn"}, value: "春秋", all: true},
	{needles: []string{"spring", "fall"}, value: "春秋", all: true},
	{needles: []string{"winter"}, value: "冬"},
	{needles: []string{"summer"}, value: "夏"},
	{needles: []string{"spring"}, value: "春"},
	{needles: []string{"autumn", "fall"}, value: "秋"},
	{needles: []string{"all"}, value: "春秋"},
}

var sceneRules = []rule{
	{needles: []string{"everyday", "daily", "street", "outing"}, value: "出街"},
	{needles: []string{"campus", "school", "college"}, value: "校园"},
	{needles: []string{"commute", "work", "office"}, value: "通勤"},
	{needles: []string{"sport", "gym", "running"}, value: "运动"},
	{needles: []string{"date", "party"}, value: "约会"},
}

var weatherRules = []rule{
	{needles: []string{"rain", "shower", "storm", "drizzle", "阵雨", "雷"}, value: "雨"},
	{needles: []string{"snow", "cold", "freez", "chill", "雪", "寒"}, value: "冷"},
	{needles: []string{"hot", "heat", "炎"}, value: "热"},
	{needles: []string{"cloud", "overcast", "阴"}, value: "多云"},
	{needles: []string{"sun", "clear"}, value: "晴"},
}

// female is checked first: "female" and "women" contain "male" and "men".
var genderRules = []rule{
	{needles: []string{"female", "woman", "women", "girl", "lady", "女"}, value: "FEMALE"},
	{needles: []string{"male", "man", "men", "boy", "男"}, value: "MALE"},
	{needles: []string{"unisex", "neutral", "any", "中性", "通用"}, value: "UNISEX"},
}

var categoryRules = []rule{
	{needles: []string{"top", "shirt", "blouse", "sweater", "hoodie"}, value: "上衣"},
	{needles: []string{"bottom", "pants", "jeans", "trousers", "shorts"}, value: "下装"},
	{needles: []string{"outer", "coat", "jacket"}, value: "外套"},
	{needles: []string{"dress"}, value: "连衣裙"},
	{needles: []string{"shoe", "sneaker", "boot"}, value: "鞋子"},
	{needles: []string{"accessory", "bag", "hat", "scarf", "belt"}, value: "配饰"},
}

var keywordCategoryRules = []rule{
	{needles: []string{"dress", "skirt"}, value: "连衣裙"},
	{needles: []string{"coat", "jacket", "outer"}, value: "外套"},
	{needles: []string{"pants", "jeans", "trousers"}, value: "下装"},
	{needles: []string{"shoe", "sneaker", "boot"}, value: "鞋子"},
	{needles: []string{"top", "shirt", "t-shirt", "tank"}, value: "上衣"},
}

var colorRules = []rule{
	{needles: []string{"black"}, value: "黑"},
	{needles: []string{"white", "ivory"}, value: "白"},
	{needles: []string{"gray", "grey"}, value: "灰"},
	{needles: []string{"blue", "navy"}, value: "蓝"},
	{needles: []string{"red"}, value: "红"},
	{needles: []string{"green"}, value: "绿"},
	{needles: []string{"brown", "khaki"}, value: "棕"},
}

func containsFold(lower, needle string) bool {
	return strings.Contains(lower, needle)
}

// normalize resolves raw against set. Order: exact member, English rules, then the longest
// member contained in raw. Anything else yields fallback.
func normalize(raw, fallback string, set []string, rules []rule) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return fallback
	}
	if Allowed(set, s) {
		return s
	}
	if Allowed(set, strings.ToUpper(s)) {
		return strings.ToUpper(s)
	}
	lower := strings.ToLower(s)
	for _, r := range rules {
		if r.match(lower) && Allowed(set, r.value) {
			return r.value
		}
	}
	byLen := append([]string(nil), set...)
	sort.SliceStable(byLen, func(i, j int) bool { return len(byLen[i]) > len(byLen[j]) })
	for _, v := range byLen {
		if strings.Contains(s, v) {
			return v
		}
	}
	return fallback
}

// NormalizeStyle maps raw onto Styles.
func NormalizeStyle(raw, fallback string) string { return normalize(raw, fallback, Styles, styleRules) }

// NormalizeSeason maps raw onto Seasons.
func NormalizeSeason(raw, fallback string) string {
	return normalize(raw, fallback, Seasons, seasonRules)
}

// NormalizeScene maps raw onto Scenes.
func NormalizeScene(raw, fallback string) string { return normalize(raw, fallback, Scenes, sceneRules) }

// NormalizeWeather maps raw onto Weathers.
func NormalizeWeather(raw, fallback string) string {
	return normalize(raw, fallback, Weathers, weatherRules)
}

// NormalizeGender maps raw onto Genders.
func NormalizeGender(raw, fallback string) string {
	return normalize(raw, fallback, Genders, genderRules)
}

// NormalizeCategory maps raw onto Categories.
func NormalizeCategory(raw, fallback string) string {
	return normalize(raw, fallback, Categories, categoryRules)
}

// NormalizeColor maps raw onto Colors.
func NormalizeColor(raw, fallback string) string {
	return normalize(raw, fallback, Colors, colorRules)
}

// InferCategory guesses a category from free keywords, or returns "".
func InferCategory(keywords []string) string {
	lower := strings.ToLower(strings.Join(keywords, " "))
	if strings.TrimSpace(lower) == "" {
		return ""
	}
	for _, r := range keywordCategoryRules {
		if r.match(lower) {
			return r.value
		}
	}
	return ""
}
