// Package feed is the built-in input plugin for RSS 2.0 and Atom documents.
package feed

import (
	"strings"
	"time"

	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/arthur-debert/gather/pkg/filesystem"
	"github.com/arthur-debert/gather/pkg/logging"
	"github.com/arthur-debert/gather/pkg/registry"
	"github.com/arthur-debert/gather/pkg/table"
	"github.com/arthur-debert/gather/pkg/types"
	"github.com/beevik/etree"
)

// ID is the provider id of the feed plugin.
const ID = "feed"

// OptionMaxItems caps the number of entries read from a feed.
const OptionMaxItems = "feed_max_items"

// Fields lists the table fields produced for every entry. Each field is
// aliased by the role of the same name.
var Fields = []string{
	table.RoleID,
	table.RoleTitle,
	table.RoleURL,
	table.RoleDate,
	table.RoleSummary,
	table.RoleAuthor,
	table.RoleCategory,
	table.RoleEnclosure,
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC3339Nano,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02",
}

// Plugin returns the registry entry of the feed plugin. Local sources are
// read through fsys.
func Plugin(fsys filesystem.FS) *registry.Plugin {
	return &registry.Plugin{
		ID:           ID,
		Capabilities: []string{"input", "input:rss", "input:atom"},
		Config: map[string]interface{}{
			registry.ConfigOptions: map[string]interface{}{OptionMaxItems: "int"},
			registry.ConfigUsage:   map[string]interface{}{OptionMaxItems: "maximum number of feed entries to read (0 reads all)"},
		},
		NewInput: func() types.InputProvider { return &Reader{fs: fsys} },
	}
}

// Reader turns a feed document into a table.
type Reader struct {
	fs filesystem.FS
}

// Run reads job.Source and parses it. Sources that are not RSS or Atom
// documents are declined.
func (r *Reader) Run(job *types.Job) (types.Result, error) {
	logger := logging.GetLogger("feed").With().Str("source", job.Source).Logger()

	if job.Source == "" {
		logger.Debug().Msg("No source given, declining")
		return nil, nil
	}

	data, err := r.load(job)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		logger.Debug().Err(err).Msg("Source is not XML, declining")
		return nil, nil
	}
	root := doc.Root()
	if root == nil {
		return nil, nil
	}

	tbl := newTable()
	switch root.Tag {
	case "rss", "RDF":
		err = readRSS(root, tbl)
	case "feed":
		err = readAtom(root, tbl)
	default:
		logger.Debug().Str("root", root.Tag).Msg("Unknown document type, declining")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if max := job.Options.Int(OptionMaxItems); max > 0 {
		tbl.Limit(max)
	}

	logger.Info().Int("entries", tbl.Len()).Str("format", root.Tag).Msg("Feed parsed")
	return types.StructuredResult{Table: tbl, Actions: types.ActionSpec{}}, nil
}

func (r *Reader) load(job *types.Job) ([]byte, error) {
	if isURL(job.Source) {
		data, err := job.Fetch(job.Source)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFetch, "cannot fetch feed %s", job.Source)
		}
		return data, nil
	}
	data, err := r.fs.ReadFile(job.Source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "cannot read feed %s", job.Source)
	}
	return data, nil
}

func newTable() *table.Table {
	tbl := table.New()
	tbl.AddFields(Fields...)
	roles := make(map[string]string, len(Fields))
	for _, f := range Fields {
		roles[f] = f
	}
	tbl.AddWellKnown(roles)
	return tbl
}

func readRSS(root *etree.Element, tbl *table.Table) error {
	// RSS 1.0 keeps items beside the channel, 2.0 inside it
	items := root.FindElements("./channel/item")
	items = append(items, root.SelectElements("item")...)

	for _, item := range items {
		var enclosure string
		if e := item.SelectElement("enclosure"); e != nil {
			enclosure = e.SelectAttrValue("url", "")
		}
		link := childText(item, "link")
		id := childText(item, "guid")
		if id == "" {
			id = link
		}
		author := childText(item, "author")
		if author == "" {
			author = childText(item, "creator")
		}
		date := childText(item, "pubDate")
		if date == "" {
			date = childText(item, "date")
		}
		summary := childText(item, "description")
		if summary == "" {
			summary = childText(item, "encoded")
		}

		if err := tbl.AddRecord(
			id,
			childText(item, "title"),
			link,
			parseDate(date),
			summary,
			author,
			joinedText(item, "category"),
			enclosure,
		); err != nil {
			return err
		}
	}
	return nil
}

func readAtom(root *etree.Element, tbl *table.Table) error {
	for _, entry := range root.SelectElements("entry") {
		var link, enclosure string
		for _, l := range entry.SelectElements("link") {
			href := l.SelectAttrValue("href", "")
			switch l.SelectAttrValue("rel", "alternate") {
			case "alternate":
				if link == "" {
					link = href
				}
			case "enclosure":
				if enclosure == "" {
					enclosure = href
				}
			}
		}

		date := childText(entry, "updated")
		if date == "" {
			date = childText(entry, "published")
		}
		summary := childText(entry, "summary")
		if summary == "" {
			summary = childText(entry, "content")
		}
		var author string
		if a := entry.SelectElement("author"); a != nil {
			author = childText(a, "name")
		}
		var categories []string
		for _, c := range entry.SelectElements("category") {
			if term := c.SelectAttrValue("term", ""); term != "" {
				categories = append(categories, term)
			}
		}

		if err := tbl.AddRecord(
			childText(entry, "id"),
			childText(entry, "title"),
			link,
			parseDate(date),
			summary,
			author,
			strings.Join(categories, ", "),
			enclosure,
		); err != nil {
			return err
		}
	}
	return nil
}

// childText returns the trimmed text of the first child with tag, ignoring
// namespace prefixes.
func childText(e *etree.Element, tag string) string {
	if c := e.SelectElement(tag); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}

func joinedText(e *etree.Element, tag string) string {
	var parts []string
	for _, c := range e.SelectElements(tag) {
		if s := strings.TrimSpace(c.Text()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// parseDate returns a time.Time when the value matches a known layout and
// the raw text otherwise.
func parseDate(s string) any {
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return s
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
