package ui

import (
	"time"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const (
	appTitle    = "Traffic Accident Analysis Dashboard"
	datastarURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.7/bundles/datastar.js"
)

// appPage lays out the sidebar and the main column.
func appPage(sidebar Node, body ...Node) Node {
	return Doctype(HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(appTitle)),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("preconnect"), Href("https://fonts.googleapis.com")),
			Link(Rel("preconnect"), Href("https://fonts.gstatic.com"), Attr("crossorigin", "")),
			Link(Rel("stylesheet"), Href("https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700&display=swap")),
			Link(Rel("stylesheet"), Href(uiStylesheetHref())),
			Script(Type("module"), Src(datastarURL)),
		),
		Body(
			Main(Class("app-shell"),
				Aside(Class("app-sidebar"), sidebar),
				Section(
					Class("app-main"),
					Div(
						Class("topbar"),
						H1(Class("page-title"), Text(appTitle)),
					),
					Div(Class("content"), Group(body)),
				),
			),
		),
	))
}

func errorPage(title, message string) Node {
	return Doctype(HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | "+appTitle)),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("stylesheet"), Href(uiStylesheetHref())),
		),
		Body(
			Main(
				Class("app-main"),
				H1(Class("page-title"), Text(title)),
				Div(Class("flash flash-error"), Text(message)),
				P(A(Href("/"), Text("Back to dashboard"))),
			),
		),
	))
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(time.RFC3339)
}
