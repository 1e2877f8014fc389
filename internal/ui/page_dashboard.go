package ui

import (
	"fmt"
	"strconv"
	"strings"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"

	"crash-dash/internal/domain"
	"crash-dash/internal/service/dashboard"
)

const noDataMessage = "No data available to display"

// autoSubmit re-submits the filter form whenever a selector changes.
var autoSubmit = Attr("data-on:change", "el.form.requestSubmit()")

func dashboardPage(view *dashboard.View, req dashboard.Request) Node {
	return appPage(
		sidebar(view, req),
		statusSection(view),
		If(view.HasData(), chartSection(view)),
		If(view.HasData(), tableSection(view, req)),
	)
}

func sidebar(view *dashboard.View, req dashboard.Request) Node {
	var filters Node
	if view.HasData() {
		controls := make([]Node, 0, len(view.Controls)+1)
		for _, c := range view.Controls {
			controls = append(controls, selectField(c.Param, c.Label, c.Options, c.Selected))
		}
		controls = append(controls, chartTypeField(view.Chart))
		filters = Form(
			ID("filters"),
			Method("get"),
			Action("/"),
			Group(controls),
			Button(Type("submit"), Class("btn btn-primary"), Text("Apply")),
		)
	}

	hidden := make([]Node, 0, len(req.Selections)+1)
	for k, v := range req.Values() {
		hidden = append(hidden, Input(Type("hidden"), Name(k), Value(v[0])))
	}

	return Group{
		H2(Text("Filters")),
		filters,
		Form(
			Method("post"),
			Action("/refresh"),
			Group(hidden),
			Button(Type("submit"), Class("btn"), Text("Reload data")),
		),
		P(Class("muted"), Text("Fetched "+formatTime(view.FetchedAt))),
	}
}

// emptyOptionLabel names an option whose value is the empty string.
const emptyOptionLabel = "(empty)"

func selectField(name, label string, options []domain.Value, selected domain.Value) Node {
	opts := make([]Node, 0, len(options))
	for _, o := range options {
		text := domain.FormatValue(o)
		label := text
		if label == "" {
			label = emptyOptionLabel
		}
		opts = append(opts, Option(
			Value(text),
			If(sameOption(o, selected), Selected()),
			Text(label),
		))
	}
	id := "filter-" + name
	return Div(Class("field"),
		Label(For(id), Text(label)),
		Select(ID(id), Name(name), autoSubmit, Group(opts)),
	)
}

func sameOption(option, selected domain.Value) bool {
	if domain.IsAll(option) || domain.IsAll(selected) {
		return domain.IsAll(option) && domain.IsAll(selected)
	}
	return option == selected
}

func chartTypeField(current domain.ChartType) Node {
	opts := make([]Node, 0, len(domain.ChartTypes))
	for _, ct := range domain.ChartTypes {
		opts = append(opts, Option(
			Value(string(ct)),
			If(ct == current, Selected()),
			Text(ct.Label()),
		))
	}
	return Div(Class("field"),
		Label(For("filter-chart"), Text("Chart Type")),
		Select(ID("filter-chart"), Name(dashboard.ChartParam), autoSubmit, Group(opts)),
	)
}

func statusSection(view *dashboard.View) Node {
	nodes := make([]Node, 0, len(view.Warnings)+2)
	if view.Err != nil {
		nodes = append(nodes, Div(Class("flash flash-error"), Role("alert"), Text(dashboard.ErrorMessage(view.Err))))
	}
	if !view.HasData() {
		nodes = append(nodes, Div(Class("flash flash-warn"), Text(noDataMessage)))
	}
	for _, w := range view.Warnings {
		nodes = append(nodes, Div(Class("flash flash-warn"), Text(w)))
	}
	return Group(nodes)
}

func chartSection(view *dashboard.View) Node {
	return Div(Class("card chart"),
		H3(Text("Accident Distribution by Age Range")),
		distributionChart(view.Distribution, view.Chart, "Age Range", "Count"),
	)
}

func tableSection(view *dashboard.View, req dashboard.Request) Node {
	t := view.Filtered
	columns := t.Columns()

	headers := make([]Node, 0, len(columns))
	for _, c := range columns {
		headers = append(headers, Th(Text(c)))
	}

	rows := make([]Node, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		values := t.Values(i)
		cells := make([]Node, 0, len(values))
		texts := make([]string, 0, len(values))
		for _, v := range values {
			if v == nil {
				cells = append(cells, Td(Class("null"), Text("null")))
				continue
			}
			s := domain.FormatValue(v)
			texts = append(texts, s)
			cells = append(cells, Td(Text(s)))
		}
		rows = append(rows, Tr(data.Show(containsExpr(strings.Join(texts, " "))), Group(cells)))
	}

	exportHref := "/export.csv"
	if q := req.Values().Encode(); q != "" {
		exportHref += "?" + q
	}

	return Div(Class("card"),
		data.Signals(map[string]any{"q": ""}),
		Div(Class("topbar"),
			H3(Text("Filtered Data")),
			Div(Class("actions"),
				Input(Type("text"), data.Bind("q"), Placeholder("Search rows")),
				A(Class("btn btn-sm"), Href(exportHref), Text("Download CSV")),
			),
		),
		P(Class("muted"), Text(fmt.Sprintf("%d of %d rows", t.Len(), view.BaseRows))),
		Div(Class("table-wrap"),
			Table(Class("data"),
				THead(Tr(Group(headers))),
				TBody(Group(rows)),
			),
		),
	)
}

// containsExpr is a datastar expression showing an element only when the
// search signal is empty or occurs in value.
func containsExpr(value string) string {
	lower := strings.ToLower(value)
	return "$q === '' || " + strconv.Quote(lower) + ".includes($q.toLowerCase())"
}
