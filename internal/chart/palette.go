package chart

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// trendDarken is subtracted from each RGB channel of a scatter colour to get
// its trend colour in the extended palette
const trendDarken = 40

var baseScatter = []string{
	"#E85252", "#6868CF", "#A8ECA8", "#F8B15F", "#D3ACEE", "#84EDED",
	"#F392C6", "#E6E97B", "#66AA63", "#FF6B35", "#4ECDC4", "#45B7D1",
}

var baseTrend = []string{
	"#E70E0E", "#2B2BD0", "#6BEC6B", "#FA8C0F", "#BA71EF", "#00FFFF",
	"#F8349C", "#ECF406", "#335C33", "#CC4A00", "#2E8B8B", "#1E5799",
}

// extended is used once more than len(baseScatter) vessels are plotted:
// ColorBrewer Set3, then Pastel, then Set1.
var extended = []string{
	"#8DD3C7", "#FFFFB3", "#BEBADA", "#FB8072", "#80B1D3", "#FDB462",
	"#B3DE69", "#FCCDE5", "#D9D9D9", "#BC80BD", "#CCEBC5", "#FFED6F",
	"#66C5CC", "#F6CF71", "#F89C74", "#DCB0F2", "#87C55F", "#9EB9F3",
	"#FE88B1", "#C9DB74", "#8BE0A4", "#B497E7", "#B3B3B3",
	"#E41A1C", "#377EB8", "#4DAF4A", "#984EA3", "#FF7F00", "#FFFF33",
	"#A65628", "#F781BF", "#999999",
}

// Pair is the scatter and trend colour assigned to one vessel
type Pair struct {
	Scatter drawing.Color
	Trend   drawing.Color
}

// Palette returns n distinct colour pairs. Up to twelve vessels get the fixed
// hand-picked pairs; beyond that every vessel draws from the extended list and
// its trend colour is a darker shade of its scatter colour. The extended list
// repeats when n exceeds its length.
func Palette(n int) []Pair {
	if n <= 0 {
		return nil
	}
	out := make([]Pair, n)
	if n <= len(baseScatter) {
		for i := range out {
			out[i] = Pair{
				Scatter: drawing.ColorFromHex(baseScatter[i][1:]),
				Trend:   drawing.ColorFromHex(baseTrend[i][1:]),
			}
		}
		return out
	}
	for i := range out {
		c := drawing.ColorFromHex(extended[i%len(extended)][1:])
		out[i] = Pair{Scatter: c, Trend: darken(c, trendDarken)}
	}
	return out
}

func darken(c drawing.Color, by uint8) drawing.Color {
	sub := func(v uint8) uint8 {
		if v < by {
			return 0
		}
		return v - by
	}
	return drawing.Color{R: sub(c.R), G: sub(c.G), B: sub(c.B), A: c.A}
}

// Hex formats a colour as #RRGGBB
func Hex(c drawing.Color) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
