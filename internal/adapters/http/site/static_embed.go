package site

import (
	"embed"
	"html/template"
	"strconv"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	// prob prints a rounded probability without trailing zeros, e.g. 0.719.
	"prob": func(p float64) string { return strconv.FormatFloat(p, 'f', -1, 64) },
}

var pageTemplate = template.Must(template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/index.html"))
