package editor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultTextColor       = "#000000"
	DefaultBackgroundColor = "#ffffff"
)

var namedColors = map[string]string{
	"black":       "#000000",
	"white":       "#ffffff",
	"red":         "#ff0000",
	"green":       "#008000",
	"blue":        "#0000ff",
	"yellow":      "#ffff00",
	"orange":      "#ffa500",
	"purple":      "#800080",
	"gray":        "#808080",
	"grey":        "#808080",
	"silver":      "#c0c0c0",
	"maroon":      "#800000",
	"olive":       "#808000",
	"lime":        "#00ff00",
	"aqua":        "#00ffff",
	"cyan":        "#00ffff",
	"teal":        "#008080",
	"navy":        "#000080",
	"fuchsia":     "#ff00ff",
	"magenta":     "#ff00ff",
	"pink":        "#ffc0cb",
	"brown":       "#a52a2a",
	"gold":        "#ffd700",
	"indigo":      "#4b0082",
	"violet":      "#ee82ee",
	"crimson":     "#dc143c",
	"coral":       "#ff7f50",
	"salmon":      "#fa8072",
	"tomato":      "#ff6347",
	"khaki":       "#f0e68c",
	"beige":       "#f5f5dc",
	"ivory":       "#fffff0",
	"lavender":    "#e6e6fa",
	"turquoise":   "#40e0d0",
	"tan":         "#d2b48c",
	"chocolate":   "#d2691e",
	"darkred":     "#8b0000",
	"darkgreen":   "#006400",
	"darkblue":    "#00008b",
	"darkgray":    "#a9a9a9",
	"darkgrey":    "#a9a9a9",
	"lightgray":   "#d3d3d3",
	"lightgrey":   "#d3d3d3",
	"lightblue":   "#add8e6",
	"lightgreen":  "#90ee90",
	"lightyellow": "#ffffe0",
	"skyblue":     "#87ceeb",
	"steelblue":   "#4682b4",
	"slategray":   "#708090",
	"slategrey":   "#708090",
	"dimgray":     "#696969",
	"dimgrey":     "#696969",
	"whitesmoke":  "#f5f5f5",
	"gainsboro":   "#dcdcdc",
}

// NormalizeColor 将 #rgb / #rrggbb / rgb() / rgba() / 颜色名统一为小写 #rrggbb，无法识别时返回 fallback
func NormalizeColor(value, fallback string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return fallback
	}
	if hex, ok := namedColors[v]; ok {
		return hex
	}
	if strings.HasPrefix(v, "#") {
		if hex, ok := normalizeHex(v[1:]); ok {
			return hex
		}
		return fallback
	}
	if strings.HasPrefix(v, "rgb(") || strings.HasPrefix(v, "rgba(") {
		if hex, ok := parseRGBFunc(v); ok {
			return hex
		}
	}
	return fallback
}

func normalizeHex(digits string) (string, bool) {
	for _, r := range digits {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return "", false
		}
	}
	switch len(digits) {
	case 3, 4:
		var b strings.Builder
		b.WriteByte('#')
		for _, r := range digits[:3] {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		return b.String(), true
	case 6, 8:
		return "#" + digits[:6], true
	default:
		return "", false
	}
}

func parseRGBFunc(v string) (string, bool) {
	open := strings.IndexByte(v, '(')
	if open < 0 || !strings.HasSuffix(v, ")") {
		return "", false
	}
	body := v[open+1 : len(v)-1]
	// 兼容 rgb(1 2 3 / 50%) 写法
	if slash := strings.IndexByte(body, '/'); slash >= 0 {
		body = body[:slash]
	}
	parts := strings.FieldsFunc(body, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(parts) < 3 || len(parts) > 4 {
		return "", false
	}
	var channels [3]int
	for i := 0; i < 3; i++ {
		c, ok := parseChannel(parts[i])
		if !ok {
			return "", false
		}
		channels[i] = c
	}
	return fmt.Sprintf("#%02x%02x%02x", channels[0], channels[1], channels[2]), true
}

func parseChannel(raw string) (int, bool) {
	scale := 1.0
	if strings.HasSuffix(raw, "%") {
		raw = strings.TrimSuffix(raw, "%")
		scale = 255.0 / 100
	}
	f, err := strconv.ParseFloat(raw, 64)
	// ParseFloat 接受 nan/inf，这里只认有限数值
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return clampChannel(f * scale), true
}

func clampChannel(f float64) int {
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return int(f + 0.5)
}
