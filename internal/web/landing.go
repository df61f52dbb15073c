package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datalens/internal/analysis"
)

type endpoint struct {
	Method, Path, Desc string
}

// LandingPage lists the API endpoints and analysis actions.
func LandingPage(rowStore, sqlExec bool) templ.Component {
	endpoints := []endpoint{
		{"POST", "/upload", "Upload a CSV or Excel file (multipart field \"file\")"},
		{"POST", "/upload-dataset", "Upload and mirror name/age/city rows into uploaded_data"},
		{"GET", "/analyze?action=&column=", "Run one analysis action on the current dataset"},
		{"POST", "/execute-sql", "Run {\"sql\": \"...\"} against the row store"},
		{"GET", "/health", "Service and database status"},
	}

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>datalens</title>\n")
		b.WriteString("<style>body{font-family:sans-serif;max-width:48rem;margin:2rem auto}code{background:#f3f3f3;padding:0 .2rem}td{padding:.2rem .6rem}</style>\n")
		b.WriteString("</head>\n<body>\n<h1>datalens</h1>\n<table>\n")
		for _, e := range endpoints {
			b.WriteString("<tr><td><code>" + e.Method + "</code></td><td><code>" + templ.EscapeString(e.Path) + "</code></td><td>" + templ.EscapeString(e.Desc) + "</td></tr>\n")
		}
		b.WriteString("</table>\n<h2>Actions</h2>\n<ul>\n")
		for _, t := range analysis.Tags {
			item := string(t)
			if t.NeedsColumn() {
				item += " (column)"
			}
			b.WriteString("<li><code>" + templ.EscapeString(item) + "</code></li>\n")
		}
		b.WriteString("</ul>\n<p>Row store: " + onOff(rowStore) + ". SQL execution: " + onOff(sqlExec) + ".</p>\n</body>\n</html>\n")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func onOff(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}
