package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var htmlPage = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

var md = goldmark.New(goldmark.WithExtensions(extension.Linkify))

// HTML converts a rendered markdown document into a standalone HTML page.
func HTML(markdown string) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("failed to process markdown: %w", err)
	}

	var page bytes.Buffer
	err := htmlPage.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: Title,
		Body:  template.HTML(body.String()), //nolint:gosec // produced by goldmark, which escapes raw HTML by default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render html page: %w", err)
	}
	return page.Bytes(), nil
}
