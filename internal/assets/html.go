package assets

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"github.com/wolfeidau/assetforge/internal/buildconfig"
)

const liveReloadScript = `<script>new EventSource("/esbuild").addEventListener("change", () => location.reload())</script>`

// renderHTML executes the page template and injects references to every
// entry's scripts and stylesheets.
func (p *Pipeline) renderHTML(meta *BuildMetadata, plugin buildconfig.HTMLPlugin) error {
	tmplPath := p.abs(plugin.Template)

	tmpl, err := template.New(filepath.Base(tmplPath)).
		Delims(plugin.LeftDelim, plugin.RightDelim).
		Funcs(templateFuncs()).
		ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	var scripts, styles []string
	for _, entry := range p.config.Entry {
		s, err := p.scripts(meta, entry.Name)
		if err != nil {
			return err
		}
		scripts = append(scripts, s...)
		styles = append(styles, p.styles(meta, entry.Name)...)
	}

	data := map[string]any{
		"Mode":    p.config.Mode.String(),
		"Scripts": scripts,
		"Styles":  styles,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	page := injectTags(buf.String(), scripts, styles, plugin.LiveReload)

	if plugin.CollapseWhitespace {
		page, err = collapseWhitespace(page)
		if err != nil {
			return err
		}
	}

	dst := filepath.Join(p.outdir, filepath.FromSlash(plugin.Filename))
	if err := os.WriteFile(dst, []byte(page), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write %s: %w", plugin.Filename, err)
	}
	return nil
}

// injectTags places stylesheet links before </head> and scripts before
// </body>, falling back to the start and end of the document.
func injectTags(page string, scripts, styles []string, liveReload bool) string {
	var head strings.Builder
	for _, href := range styles {
		fmt.Fprintf(&head, `<link href="%s" rel="stylesheet">`, template.HTMLEscapeString(href))
	}

	var body strings.Builder
	for _, src := range scripts {
		fmt.Fprintf(&body, `<script type="module" src="%s"></script>`, template.HTMLEscapeString(src))
	}
	if liveReload {
		body.WriteString(liveReloadScript)
	}

	page = insertBefore(page, "</head>", head.String(), false)
	return insertBefore(page, "</body>", body.String(), true)
}

func insertBefore(page, marker, tags string, appendIfMissing bool) string {
	if tags == "" {
		return page
	}

	i := strings.LastIndex(strings.ToLower(page), marker)
	if i < 0 {
		if appendIfMissing {
			return page + tags
		}
		return tags + page
	}
	return page[:i] + tags + page[i:]
}

func collapseWhitespace(page string) (string, error) {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})

	out, err := m.String("text/html", page)
	if err != nil {
		return "", fmt.Errorf("failed to minify html: %w", err)
	}
	return out, nil
}
