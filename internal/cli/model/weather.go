package model

// WeatherSnapshot is the last weather shown to the user.
type WeatherSnapshot struct {
	City      string `json:"city"`
	Temp      string `json:"temp"`  // e.g. "21℃"
	Desc      string `json:"desc"`  // provider text, e.g. "小雨"
	Extra     string `json:"extra"` // air quality, humidity and wind summary
	UpdatedAt int64  `json:"updated_at"`
}

// Empty reports whether nothing has been fetched yet.
func (w WeatherSnapshot) Empty() bool {
	return w.City == "" && w.Temp == "" && w.Desc == ""
}
