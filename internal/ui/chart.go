package ui

import (
	"fmt"
	"strconv"
	"strings"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"crash-dash/internal/domain"
)

// Chart geometry in SVG user units.
const (
	chartWidth   = 720
	chartHeight  = 340
	marginLeft   = 56
	marginRight  = 16
	marginTop    = 20
	marginBottom = 56
	yTicks       = 4
)

// distributionChart draws d as an inline SVG bar or line chart with the
// categories along x in distribution order and counts along y.
func distributionChart(d domain.Distribution, kind domain.ChartType, xLabel, yLabel string) Node {
	if len(d) == 0 {
		return P(Class("muted"), Text("No "+strings.ToLower(xLabel)+" values to chart."))
	}

	plotW := float64(chartWidth - marginLeft - marginRight)
	plotH := float64(chartHeight - marginTop - marginBottom)
	band := plotW / float64(len(d))
	maxY := niceMax(d.MaxCount())

	y := func(count int) float64 {
		return marginTop + plotH - plotH*float64(count)/float64(maxY)
	}
	center := func(i int) float64 {
		return marginLeft + band*float64(i) + band/2
	}

	nodes := make([]Node, 0, 4*len(d)+2*yTicks+8)

	for t := 0; t <= yTicks; t++ {
		v := maxY * t / yTicks
		ty := y(v)
		nodes = append(nodes,
			svgLine("grid", marginLeft, ty, chartWidth-marginRight, ty),
			svgText("", marginLeft-6, ty+4, "end", strconv.Itoa(v)),
		)
	}
	nodes = append(nodes,
		svgLine("axis", marginLeft, marginTop, marginLeft, marginTop+plotH),
		svgLine("axis", marginLeft, marginTop+plotH, chartWidth-marginRight, marginTop+plotH),
	)

	switch kind {
	case domain.ChartLine:
		points := make([]string, len(d))
		for i, b := range d {
			points[i] = num(center(i)) + "," + num(y(b.Count))
		}
		nodes = append(nodes, El("polyline", Class("line"), Attr("points", strings.Join(points, " "))))
		for i, b := range d {
			nodes = append(nodes,
				El("circle", Class("point"), Attr("cx", num(center(i))), Attr("cy", num(y(b.Count))), Attr("r", "3.5"),
					El("title", Text(categoryLabel(b)))),
				svgText("value", center(i), y(b.Count)-8, "middle", strconv.Itoa(b.Count)),
			)
		}
	default:
		barW := band * 0.7
		for i, b := range d {
			top := y(b.Count)
			nodes = append(nodes,
				El("rect", Class("bar"),
					Attr("x", num(center(i)-barW/2)), Attr("y", num(top)),
					Attr("width", num(barW)), Attr("height", num(marginTop+plotH-top)),
					El("title", Text(categoryLabel(b)))),
				svgText("value", center(i), top-6, "middle", strconv.Itoa(b.Count)),
			)
		}
	}

	for i, b := range d {
		nodes = append(nodes, svgText("", center(i), marginTop+plotH+16, "middle", domain.FormatValue(b.Category)))
	}
	nodes = append(nodes,
		svgText("", marginLeft+plotW/2, chartHeight-8, "middle", xLabel),
		El("text", Attr("transform", fmt.Sprintf("translate(14,%s) rotate(-90)", num(marginTop+plotH/2))),
			Attr("text-anchor", "middle"), Text(yLabel)),
	)

	return El("svg",
		Attr("xmlns", "http://www.w3.org/2000/svg"),
		Attr("viewBox", fmt.Sprintf("0 0 %d %d", chartWidth, chartHeight)),
		Role("img"),
		Aria("label", fmt.Sprintf("%s by %s", yLabel, xLabel)),
		Group(nodes),
	)
}

func svgLine(class string, x1, y1, x2, y2 float64) Node {
	return El("line", Class(class),
		Attr("x1", num(x1)), Attr("y1", num(y1)), Attr("x2", num(x2)), Attr("y2", num(y2)))
}

func svgText(class string, x, y float64, anchor, text string) Node {
	return El("text",
		If(class != "", Class(class)),
		Attr("x", num(x)), Attr("y", num(y)), Attr("text-anchor", anchor),
		Text(text))
}

func categoryLabel(b domain.Bucket) string {
	return fmt.Sprintf("%s: %d", domain.FormatValue(b.Category), b.Count)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// niceMax rounds n up to a y-axis maximum that divides evenly into yTicks
// steps of 1, 2 or 5 times a power of ten.
func niceMax(n int) int {
	if n <= 0 {
		return yTicks
	}
	for mag := 1; ; mag *= 10 {
		for _, m := range []int{1, 2, 5} {
			step := m * mag
			if step*yTicks >= n {
				return step * yTicks
			}
		}
	}
}
