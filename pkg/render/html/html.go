// Package html renders an annotated file as highlighted, linked HTML.
package html

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/walteh/clang-highlight/pkg/annotate"
	"github.com/walteh/clang-highlight/pkg/token"
	"gitlab.com/tozd/go/errors"
)

const CppRefBase = "https://en.cppreference.com/w/"

const header = `<!doctype html>
<html>
    <head>
        <meta charset="UTF-8" />
        <title>%s</title>
        <link rel="stylesheet" href="https://fonts.googleapis.com/css?family=Source+Sans+Pro:400,400i,600,600i%%7CSource+Code+Pro:400,400i,600&amp;subset=latin-ext" />
        <link rel="stylesheet" href="https://static.magnum.graphics/m-dark.compiled.css" />
        <link rel="stylesheet" href="https://static.magnum.graphics/m-dark.documentation.compiled.css" />
        <style>
            .m-code a {
                color: inherit;
                text-decoration: none;
            }
            .m-code a:hover {
                text-decoration: underline;
            }
        </style>
    </head>
    <body>
`

const footer = "</body></html>\n"

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"/", "&#47;",
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape escapes the characters that may not appear verbatim in HTML text or attributes
func Escape(s string) string {
	return escaper.Replace(s)
}

type Options struct {
	// Embed writes only the <pre> block
	Embed bool

	// Title of the full document; the file name when empty
	Title string

	// TabSize sets the CSS tab-size of the code block when positive
	TabSize int
}

// Href returns the link target of l
func Href(l *token.Link) string {
	if l.CppRef != "" {
		return CppRefBase + l.CppRef
	}
	return fmt.Sprintf("file://%s#%d_%s", l.File, l.Line, l.Name)
}

// Render writes doc as HTML. Text between tokens is copied verbatim, escaped.
func Render(w io.Writer, doc *annotate.Result, opts Options) error {
	bw := bufio.NewWriter(w)

	if !opts.Embed {
		title := opts.Title
		if title == "" {
			title = doc.File
		}
		fmt.Fprintf(bw, header, Escape(title))
	}

	if opts.TabSize > 0 {
		fmt.Fprintf(bw, `<pre class="m-code" style="tab-size: %d">`, opts.TabSize)
	} else {
		bw.WriteString(`<pre class="m-code">`)
	}

	buf := doc.Buffer
	pos := 0
	for tok := range doc.Index.All() {
		if tok.Offset > pos {
			bw.WriteString(Escape(string(buf[pos:tok.Offset])))
		}

		css := tok.Kind.CSSClass()
		if css != "" {
			fmt.Fprintf(bw, `<span class="%s">`, css)
		}
		if tok.Link != nil {
			fmt.Fprintf(bw, `<a href="%s">`, attrEscaper.Replace(Href(tok.Link)))
		}

		bw.WriteString(Escape(string(tok.Text(buf))))

		if tok.Link != nil {
			bw.WriteString("</a>")
		}
		if css != "" {
			bw.WriteString("</span>")
		}
		pos = tok.End()
	}
	if pos < len(buf) {
		bw.WriteString(Escape(string(buf[pos:])))
	}

	bw.WriteString("</pre>")
	if !opts.Embed {
		bw.WriteString(footer)
	}

	if err := bw.Flush(); err != nil {
		return errors.Errorf("writing HTML: %w", err)
	}
	return nil
}
