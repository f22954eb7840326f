package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/tapesim/internal/storage"
)

// Palette colors one polyline per tape, cycling when there are more tapes.
var Palette = []string{"#00ff00", "#ff00ff", "#00ffff", "#ffaa00", "#ff4444", "#4488ff"}

// TraceToSVG draws head position against step for every tape of a trace.
// It returns an empty string when there is nothing to draw.
func TraceToSVG(rows []storage.TraceRow, tapes, width, height int) string {
	if len(rows) < 2 || tapes < 1 {
		return ""
	}

	minStep, maxStep := rows[0].Step, rows[len(rows)-1].Step
	minPos, maxPos := 0, 0
	first := true
	for _, r := range rows {
		for i := 0; i < tapes && i < len(r.Heads); i++ {
			if first || r.Heads[i] < minPos {
				minPos = r.Heads[i]
			}
			if first || r.Heads[i] > maxPos {
				maxPos = r.Heads[i]
			}
			first = false
		}
	}

	rangeX := float64(maxStep - minStep)
	rangeY := float64(maxPos - minPos)
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	// 10% padding on the position axis
	lo := float64(minPos) - rangeY*0.1
	rangeY *= 1.2

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for tape := 0; tape < tapes; tape++ {
		color := Palette[tape%len(Palette)]
		sb.WriteString(fmt.Sprintf(`<path id="head%d" fill="none" stroke="%s" stroke-width="1.5" d="`, tape, color))
		n := 0
		for _, r := range rows {
			if tape >= len(r.Heads) {
				continue
			}
			x := float64(r.Step-minStep) / rangeX * float64(width)
			y := float64(height) - (float64(r.Heads[tape])-lo)/rangeY*float64(height)
			if n == 0 {
				sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
			n++
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
