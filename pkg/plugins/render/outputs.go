package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"text/template"
	"time"

	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/arthur-debert/gather/pkg/save"
	"github.com/arthur-debert/gather/pkg/table"
	"github.com/arthur-debert/gather/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"
)

const defaultTemplate = `{{range .Records}}{{index . "title"}}{{with index . "url"}} <{{.}}>{{end}}
{{end}}`

// TemplateData is what templates are executed against.
type TemplateData struct {
	Fields  []string
	Records []map[string]any
	Options types.Options
}

var templateFuncs = template.FuncMap{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"join":  strings.Join,
	"date": func(layout string, v any) string {
		if t, ok := v.(time.Time); ok {
			return t.Format(layout)
		}
		return fmt.Sprint(v)
	},
}

// Template renders every record through a text template.
// Params: [file, templatePath?]. Without a template path a plain list of
// titles and URLs is produced.
func (r *Renderer) Template(job *types.Job, params []any) error {
	file, err := fileParam(params, 0, ActionTemplate)
	if err != nil {
		return err
	}
	tbl, err := prepare(job)
	if err != nil {
		return err
	}

	source := defaultTemplate
	if path := optionalParam(params, 1); path != "" {
		data, err := r.fs.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrNotFound, "cannot read template %s", path)
		}
		source = string(data)
	}

	tmpl, err := template.New(file).Funcs(templateFuncs).Option("missingkey=zero").Parse(source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "invalid template for %s", file)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, TemplateData{Fields: tbl.Fields(), Records: rows(tbl, true), Options: job.Options}); err != nil {
		return errors.Wrapf(err, errors.ErrRunFailure, "template execution failed for %s", file)
	}
	job.Add(&types.Savable{File: file, Content: buf.Bytes()})
	return nil
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Linkify),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// HTML renders the records as a single page. Titles become headings, linked
// to the record URL, and summaries are treated as markdown.
// Params: [file, pageTitle?].
func (r *Renderer) HTML(job *types.Job, params []any) error {
	file, err := fileParam(params, 0, ActionHTML)
	if err != nil {
		return err
	}
	tbl, err := prepare(job)
	if err != nil {
		return err
	}

	var md strings.Builder
	tbl.Reset()
	for rec, ok := tbl.Next(); ok; rec, ok = tbl.Next() {
		title := cell(rec, table.RoleTitle)
		if title == "" {
			title = cell(rec, table.RoleID)
		}
		if link := cell(rec, table.RoleURL); link != "" {
			fmt.Fprintf(&md, "## [%s](%s)\n\n", title, link)
		} else {
			fmt.Fprintf(&md, "## %s\n\n", title)
		}
		if date := cell(rec, table.RoleDate); date != "" {
			fmt.Fprintf(&md, "*%s*\n\n", date)
		}
		if summary := cell(rec, table.RoleSummary); summary != "" {
			md.WriteString(summary)
			md.WriteString("\n\n")
		}
	}
	tbl.Reset()

	var body bytes.Buffer
	if err := markdown.Convert([]byte(md.String()), &body); err != nil {
		return errors.Wrapf(err, errors.ErrRunFailure, "markdown conversion failed for %s", file)
	}

	pageTitle := optionalParam(params, 1)
	if pageTitle == "" {
		pageTitle = file
	}
	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n",
		html.EscapeString(pageTitle))
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	job.Add(&types.Savable{File: file, Content: page.Bytes()})
	return nil
}

// YAML dumps the records as a YAML list. Params: [file].
func (r *Renderer) YAML(job *types.Job, params []any) error {
	file, err := fileParam(params, 0, ActionYAML)
	if err != nil {
		return err
	}
	tbl, err := prepare(job)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(map[string]any{"fields": tbl.Fields(), "records": rows(tbl, false)})
	if err != nil {
		return errors.Wrapf(err, errors.ErrRunFailure, "yaml encoding failed for %s", file)
	}
	job.Add(&types.Savable{File: file, Content: out})
	return nil
}

// TOML dumps the records as an array of tables. Params: [file].
func (r *Renderer) TOML(job *types.Job, params []any) error {
	file, err := fileParam(params, 0, ActionTOML)
	if err != nil {
		return err
	}
	tbl, err := prepare(job)
	if err != nil {
		return err
	}
	out, err := toml.Marshal(map[string]any{"fields": tbl.Fields(), "records": rows(tbl, false)})
	if err != nil {
		return errors.Wrapf(err, errors.ErrRunFailure, "toml encoding failed for %s", file)
	}
	job.Add(&types.Savable{File: file, Content: out})
	return nil
}

// Files mirrors the URL behind a role or field of every record into the
// target directory. Downloads are indexed, so each URL is fetched once per
// directory. Params: [symbol?], default the url role.
func (r *Renderer) Files(job *types.Job, params []any) error {
	tbl, err := prepare(job)
	if err != nil {
		return err
	}
	symbol := optionalParam(params, 0)
	if symbol == "" {
		symbol = table.RoleURL
	}

	added := 0
	tbl.Reset()
	for rec, ok := tbl.Next(); ok; rec, ok = tbl.Next() {
		v, err := rec.Get(symbol)
		if err != nil {
			tbl.Reset()
			return err
		}
		url := strings.TrimSpace(fmt.Sprint(v))
		if v == nil || url == "" {
			continue
		}
		job.Add(types.NewFetch(save.FileNameFromURL(url), url, true))
		added++
	}
	tbl.Reset()

	if added == 0 {
		job.Add(&types.Savable{File: ActionFiles, OKEmpty: true})
	}
	return nil
}

func cell(r *table.Record, symbol string) string {
	v, err := r.Get(symbol)
	if err != nil || v == nil {
		return ""
	}
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02")
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
