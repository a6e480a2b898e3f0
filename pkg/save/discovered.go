package save

import (
	"net/url"
	"path"
	"strings"

	"github.com/arthur-debert/gather/pkg/table"
	"github.com/arthur-debert/gather/pkg/types"
)

// DiscoveredSavables turns every non-empty URL-typed value of every record
// into an indexed fetch Savable. The file name is the last element of the URL
// path; URLs without one fall back to the host name.
func DiscoveredSavables(tbl *table.Table) []*types.Savable {
	fields := tbl.URLFields()
	if len(fields) == 0 {
		return nil
	}

	var out []*types.Savable
	seen := make(map[string]bool)
	for i := 0; i < tbl.Len(); i++ {
		r, err := tbl.Record(i)
		if err != nil {
			break
		}
		for _, field := range fields {
			raw := strings.TrimSpace(r.String(field))
			if raw == "" || seen[raw] {
				continue
			}
			seen[raw] = true
			out = append(out, types.NewFetch(FileNameFromURL(raw), raw, true))
		}
	}
	return out
}

// FileNameFromURL derives a local file name from a URL.
func FileNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return sanitize(raw)
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." || base == "" {
		if u.Host != "" {
			return sanitize(u.Host)
		}
		return sanitize(raw)
	}
	return sanitize(base)
}

func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '?', '*', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "index"
	}
	return name
}
