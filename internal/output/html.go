package output

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/garagon/perfscan/internal/scanner"
)

// HTMLFormatter renders the Markdown summary to a standalone HTML page.
type HTMLFormatter struct {
	Title string
}

func (f *HTMLFormatter) Format(w io.Writer, result *scanner.Result) error {
	var md bytes.Buffer
	if err := (&MarkdownFormatter{}).Format(&md, result); err != nil {
		return err
	}

	title := f.Title
	if title == "" {
		title = "perfscan report"
	}

	var body bytes.Buffer
	gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := gm.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}

	fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", html.EscapeString(title))
	if _, err := body.WriteTo(w); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "</body>\n</html>\n")
	return err
}
