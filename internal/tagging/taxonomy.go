// Package tagging maps free-form tag vocabulary onto the fixed filter taxonomy.
//
// Every Normalize function returns either a member of its taxonomy or the fallback it was
// given, never the raw input.
package tagging

import "slices"

// Taxonomy values.
var (
	Styles     = []string{"休闲", "通勤", "运动", "约会", "街头", "机能"}
	Seasons    = []string{"春", "夏", "秋", "冬", "春夏", "春秋", "秋冬"}
	Scenes     = []string{"通勤", "校园", "约会", "运动", "出街"}
	Weathers   = []string{"晴", "多云", "雨", "冷", "热"}
	Genders    = []string{"MALE", "FEMALE", "UNISEX"}
	Categories = []string{"上衣", "下装", "外套", "连衣裙", "鞋子", "配饰"}
	Colors     = []string{"黑", "白", "灰", "蓝", "红", "绿", "棕"}
)

// Defaults used by the outfit tagger when nothing matches.
const (
	DefaultGender  = "UNISEX"
	DefaultStyle   = "休闲"
	DefaultSeason  = "春秋"
	DefaultScene   = "通勤"
	DefaultWeather = "晴"
)

// Separator joins keywords in outfit tag strings.
const Separator = " · "

// Allowed reports whether v belongs to set.
func Allowed(set []string, v string) bool {
	return slices.Contains(set, v)
}

// rule maps any of its needles onto value. all requires every needle to be present.
type rule struct {
	needles []string
	value   string
	all     bool
}

func (r rule) match(lower string) bool {
	if r.all {
		for _, n := range r.needles {
			if !containsFold(lower, n) {
				return false
			}
		}
		return true
	}
	for _, n := range r.needles {
		if containsFold(lower, n) {
			return true
		}
	}
	return false
}
