package tagging

import (
	"encoding/json"
	"strings"
)

// Result is the structured output of an image tagging model.
// Models are loose about types, so Colors and Keywords accept a string or a list.
type Result struct {
	Category   string     `json:"category,omitempty"`
	Gender     string     `json:"gender,omitempty"`
	Style      string     `json:"style,omitempty"`
	Season     string     `json:"season,omitempty"`
	Scene      string     `json:"scene,omitempty"`
	Weather    string     `json:"weather,omitempty"`
	Colors     StringList `json:"colors,omitempty"`
	Keywords   StringList `json:"keywords,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
	Source     string     `json:"source,omitempty"`
}

// StringList decodes either a JSON string or an array of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var many []any
	if err := json.Unmarshal(b, &many); err == nil {
		out := make([]string, 0, len(many))
		for _, v := range many {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		*l = out
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		// numbers, objects: treat as no data
		*l = nil
		return nil
	}
	if one = strings.TrimSpace(one); one != "" {
		*l = StringList{one}
	} else {
		*l = nil
	}
	return nil
}

// ParseResult decodes raw model output. Markdown code fences around the JSON are stripped.
// Malformed input yields ok=false.
func ParseResult(raw string) (Result, bool) {
	txt := strings.TrimSpace(raw)
	if strings.Contains(txt, "```") {
		txt = strings.ReplaceAll(txt, "```json", "")
		txt = strings.ReplaceAll(txt, "```", "")
		txt = strings.TrimSpace(txt)
	}
	if txt == "" {
		return Result{}, false
	}
	var r Result
	if err := json.Unmarshal([]byte(txt), &r); err != nil {
		return Result{}, false
	}
	return r, true
}

// ClosetFields are the editable tag fields of a closet item.
type ClosetFields struct {
	Name     string
	Category string
	Color    string
	Season   string
	Style    string
	Scene    string
}

// Apply maps r onto f. Mapped values replace the current ones only when they are in the
// taxonomy; otherwise the current value stays. An empty name becomes "category · style".
func (r Result) Apply(f ClosetFields, defaultCategory string) ClosetFields {
	category := strings.TrimSpace(r.Category)
	if category == "" {
		category = InferCategory(r.Keywords)
	}
	if category != "" {
		f.Category = NormalizeCategory(category, f.Category)
	}
	f.Style = NormalizeStyle(r.Style, f.Style)
	f.Season = NormalizeSeason(r.Season, f.Season)
	f.Scene = NormalizeScene(r.Scene, f.Scene)
	if len(r.Colors) > 0 {
		f.Color = NormalizeColor(r.Colors[0], f.Color)
	}
	if strings.TrimSpace(f.Name) == "" {
		if f.Category == "" {
			f.Name = ClosetFields{Category: defaultCategory, Style: f.Style}.DefaultName()
		} else {
			f.Name = f.DefaultName()
		}
	}
	return f
}

// DefaultName is "category · style", or just the category when the style is empty.
func (f ClosetFields) DefaultName() string {
	n := strings.TrimSpace(f.Category)
	if f.Style != "" {
		if n == "" {
			return f.Style
		}
		n += Separator + f.Style
	}
	return n
}
