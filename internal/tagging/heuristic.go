package tagging

import (
	"encoding/json"
	"strings"
)

// HeuristicModel identifies results produced by OutfitTagger.
const HeuristicModel = "heuristic-v1"

type pick struct {
	needle string
	value  string
}

var (
	genderPicks  = []pick{{"男", "MALE"}, {"女", "FEMALE"}, {"unisex", "UNISEX"}}
	stylePicks   = []pick{{"通勤", "通勤"}, {"运动", "运动"}, {"约会", "约会"}, {"街头", "街头"}, {"机能", "机能"}, {"休闲", "休闲"}}
	seasonPicks  = []pick{{"春夏", "春夏"}, {"春秋", "春秋"}, {"秋冬", "秋冬"}, {"春", "春"}, {"夏", "夏"}, {"秋", "秋"}, {"冬", "冬"}}
	scenePicks   = []pick{{"通勤", "通勤"}, {"校园", "校园"}, {"约会", "约会"}, {"运动", "运动"}, {"出街", "出街"}}
	weatherPicks = []pick{{"雨", "雨"}, {"晴", "晴"}, {"多云", "多云"}, {"冷", "冷"}, {"热", "热"}}

	extraKeywords = []string{"极简", "显瘦", "透气", "轻便", "叠穿", "温柔", "气质", "百搭", "防风", "实用"}
)

func pickFirst(text string, picks []pick, def string) string {
	for _, p := range picks {
		if strings.Contains(text, p.needle) {
			return p.value
		}
	}
	return def
}

// OutfitInput is what the tagger reads and may fill.
type OutfitInput struct {
	Title   string
	Tags    string
	Gender  string
	Style   string
	Season  string
	Scene   string
	Weather string
}

// OutfitTagging is the tagger output.
type OutfitTagging struct {
	Gender     string
	Style      string
	Season     string
	Scene      string
	Weather    string
	Tags       string
	AITagsJSON string
	Model      string
}

// TagOutfit derives taxonomy fields from an outfit's title and tags by keyword lookup.
// Fields that already hold a value are kept unless overwrite is set.
func TagOutfit(in OutfitInput, overwrite bool) OutfitTagging {
	title := strings.TrimSpace(in.Title)
	tags := strings.TrimSpace(in.Tags)
	text := title + " " + tags

	gender := pickFirst(text, genderPicks, DefaultGender)
	style := pickFirst(text, stylePicks, DefaultStyle)
	season := pickFirst(text, seasonPicks, DefaultSeason)
	scene := pickFirst(text, scenePicks, DefaultScene)
	weather := pickFirst(text, weatherPicks, DefaultWeather)

	keywords := []string{}
	seen := map[string]bool{}
	for _, k := range append([]string{style, season, scene}, extraKeywords...) {
		if k == "" || seen[k] {
			continue
		}
		if k == style || k == season || k == scene || strings.Contains(text, k) {
			seen[k] = true
			keywords = append(keywords, k)
		}
	}
	tagsOut := strings.Join(keywords, Separator)
	if tagsOut == "" {
		tagsOut = tags
	}

	aiJSON, _ := json.Marshal(Result{
		Gender:     gender,
		Style:      style,
		Season:     season,
		Scene:      scene,
		Weather:    weather,
		Keywords:   keywords,
		Confidence: 0.2,
		Source:     "HEURISTIC",
	})

	fill := func(existing, derived string) string {
		if overwrite || strings.TrimSpace(existing) == "" {
			return derived
		}
		return existing
	}
	return OutfitTagging{
		Gender:     fill(in.Gender, gender),
		Style:      fill(in.Style, style),
		Season:     fill(in.Season, season),
		Scene:      fill(in.Scene, scene),
		Weather:    fill(in.Weather, weather),
		Tags:       fill(in.Tags, tagsOut),
		AITagsJSON: string(aiJSON),
		Model:      HeuristicModel,
	}
}
