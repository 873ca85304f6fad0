package weather

import (
	"fmt"
	"strings"
)

// extra formats the secondary line: air quality, humidity and wind.
func extra(aqi, humidity, windDir, windPower string) string {
	aqi = strings.TrimSpace(aqi)
	if aqi == "" {
		aqi = "--"
	}
	var sb strings.Builder
	sb.WriteString("空气质量 " + aqi)
	if h := strings.TrimSpace(humidity); h != "" {
		sb.WriteString(" · 湿度 " + h + "%")
	}
	windDir, windPower = strings.TrimSpace(windDir), strings.TrimSpace(windPower)
	if windDir != "" || windPower != "" {
		sb.WriteString(" · ")
		sb.WriteString(windDir)
		if windPower != "" {
			if windDir != "" {
				sb.WriteString(" ")
			}
			sb.WriteString(windPower + "级")
		}
	}
	return sb.String()
}

func formatTemp(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		t = "--"
	}
	return t + "℃"
}

func formatTempFloat(t float64) string {
	return fmt.Sprintf("%.0f℃", t)
}

func descOrDefault(d string) string {
	if d = strings.TrimSpace(d); d == "" {
		return "天气"
	}
	return d
}

// wmoText maps an Open-Meteo WMO weather code onto a short description.
func wmoText(code int) string {
	switch {
	case code == 0:
		return "晴"
	case code == 1:
		return "晴间多云"
	case code == 2:
		return "多云"
	case code == 3:
		return "阴"
	case code == 45 || code == 48:
		return "雾"
	case code >= 51 && code <= 57:
		return "毛毛雨"
	case code == 61 || code == 66:
		return "小雨"
	case code == 63:
		return "中雨"
	case code == 65 || code == 67:
		return "大雨"
	case code >= 71 && code <= 77:
		return "雪"
	case code >= 80 && code <= 82:
		return "阵雨"
	case code == 85 || code == 86:
		return "阵雪"
	case code >= 95:
		return "雷阵雨"
	}
	return "天气"
}
