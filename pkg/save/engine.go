package save

import (
	"fmt"
	"io/fs"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/arthur-debert/gather/pkg/filesystem"
	"github.com/arthur-debert/gather/pkg/logging"
	"github.com/arthur-debert/gather/pkg/save/index"
	"github.com/arthur-debert/gather/pkg/table"
	"github.com/arthur-debert/gather/pkg/types"
	"github.com/rs/zerolog"
)

// File name prefixes of the three-name install scheme.
const (
	StagingPrefix = "N"
	BackupPrefix  = "O"
)

const defaultFileMode fs.FileMode = 0644

// Batch is one save call: the target directory and the Savables to install.
type Batch struct {
	Dir   string
	Items []*types.Savable

	// Satisfied skips the per-item loop; a handler already installed the output.
	Satisfied bool

	// FetchURLs mirrors every URL-typed field of Table before the main loop.
	FetchURLs bool
	Table     *table.Table

	// Group and Mode apply to items that carry none of their own.
	Group string
	Mode  string
}

// GroupLookup resolves a group name to a numeric gid.
type GroupLookup func(name string) (int, error)

// Engine installs Savables into a directory.
type Engine struct {
	fs          filesystem.FS
	fetcher     types.Fetcher
	now         func() time.Time
	lookupGroup GroupLookup
	indexName   string
}

// Option configures an Engine.
type Option func(*Engine)

// WithFS sets the filesystem.
func WithFS(fs filesystem.FS) Option {
	return func(e *Engine) { e.fs = fs }
}

// WithFetcher sets the retrieval capability used for SourceURL items.
func WithFetcher(f types.Fetcher) Option {
	return func(e *Engine) { e.fetcher = f }
}

// WithClock sets the time source used for index timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithGroupLookup sets the group name resolver.
func WithGroupLookup(l GroupLookup) Option {
	return func(e *Engine) { e.lookupGroup = l }
}

// WithIndexName sets the duplicate index file name inside the target directory.
func WithIndexName(name string) Option {
	return func(e *Engine) { e.indexName = name }
}

// New creates an Engine on the OS filesystem.
func New(opts ...Option) *Engine {
	e := &Engine{
		fs:          filesystem.NewOS(),
		now:         time.Now,
		lookupGroup: lookupSystemGroup,
		indexName:   index.DefaultName,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IndexPath returns where the duplicate index for dir lives.
func (e *Engine) IndexPath(dir string) string {
	return index.Path(dir, e.indexName)
}

// Save installs every item of the batch. Items are processed in order and a
// failing item never stops the others. When any item failed, Save returns a
// SAVE error naming each failed file; items that succeeded stay installed.
func (e *Engine) Save(b *Batch) error {
	logger := logging.GetLogger("save")

	if b == nil || b.Dir == "" {
		return errors.New(errors.ErrInvalidInput, "save: no target directory")
	}
	if b.Items == nil && !(b.FetchURLs && b.Table != nil) && !b.Satisfied {
		return errors.New(errors.ErrInvalidInput, "save: nothing to save")
	}
	if b.Satisfied {
		logger.Info().Str("dir", b.Dir).Msg("Batch already satisfied by handler, skipping save")
		return nil
	}
	if err := e.fs.MkdirAll(b.Dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "save: cannot create target directory %s", b.Dir)
	}

	if b.FetchURLs && b.Table != nil {
		discovered := DiscoveredSavables(b.Table)
		logger.Debug().Int("count", len(discovered)).Msg("Mirroring discovered URLs")
		b.Items = append(discovered, b.Items...)
	}

	b.Items = compact(logger, b.Items)

	done := logging.LogOperationStart(logger, "save")
	defer done()

	for _, item := range b.Items {
		if item.Group == "" {
			item.Group = b.Group
		}
		if item.Mode == "" {
			item.Mode = b.Mode
		}
		e.saveOne(logger, b.Dir, item)
	}

	return failures(b.Dir, b.Items)
}

func (e *Engine) saveOne(logger zerolog.Logger, dir string, s *types.Savable) {
	log := logger.With().Str("file", s.File).Logger()

	if s.Failed() {
		// error-only descriptor produced upstream
		s.State = types.StateFailed
		log.Warn().Str("error", s.Error).Msg("Savable carries an error")
		return
	}
	if s.OKEmpty {
		s.State = types.StateCommitted
		s.Skipped = true
		return
	}

	s.State = types.StatePrecheck
	if err := checkName(s.File); err != nil {
		e.fail(log, s, err)
		return
	}
	own, err := e.resolveOwnership(s)
	if err != nil {
		e.fail(log, s, err)
		return
	}

	if s.SourceURL != "" && s.Indexed {
		existing, found, err := index.CheckAndRecord(e.IndexPath(dir), s.SourceURL, index.FormatValue(e.now(), s.File))
		if err != nil {
			e.fail(log, s, err)
			return
		}
		if found {
			s.State = types.StateCommitted
			s.Skipped = true
			log.Debug().Str("url", s.SourceURL).Str("indexed", existing).Msg("URL already indexed, skipping")
			return
		}
	}
	s.State = types.StateIndexChecked

	if !s.HasContent() {
		if s.SourceURL == "" {
			e.fail(log, s, errors.New(errors.ErrInvalidInput, "no content and no source url"))
			return
		}
		if e.fetcher == nil {
			e.fail(log, s, errors.Newf(errors.ErrFetch, "no fetcher configured for %s", s.SourceURL))
			return
		}
		content, err := e.fetcher.Fetch(s.SourceURL)
		if err != nil {
			e.fail(log, s, err)
			return
		}
		s.Content = content
	}
	s.State = types.StateContentResolved

	main, staging, backup := Names(dir, s.File)
	if err := e.fs.MkdirAll(filepath.Dir(main), 0755); err != nil {
		e.fail(log, s, errors.Wrap(err, errors.ErrFileWrite, "cannot create directory"))
		return
	}
	if err := e.fs.WriteFile(staging, s.Content, defaultFileMode); err != nil {
		e.fail(log, s, errors.Wrap(err, errors.ErrFileWrite, "cannot write staging file"))
		return
	}
	s.State = types.StateWritten

	if _, err := e.fs.Stat(backup); err == nil {
		if err := e.fs.Remove(backup); err != nil {
			e.fail(log, s, errors.Wrap(err, errors.ErrFileWrite, "cannot remove old backup"))
			return
		}
	}
	rotated := false
	if _, err := e.fs.Stat(main); err == nil {
		if err := e.fs.Rename(main, backup); err != nil {
			e.fail(log, s, errors.Wrap(err, errors.ErrFileWrite, "cannot rotate current file to backup"))
			return
		}
		rotated = true
	}
	s.State = types.StateBackedUp

	if err := e.applyOwnership(staging, s, own); err != nil {
		e.restore(log, main, backup, rotated)
		e.fail(log, s, err)
		return
	}

	if err := e.fs.Rename(staging, main); err != nil {
		e.restore(log, main, backup, rotated)
		e.fail(log, s, errors.Wrap(err, errors.ErrFileWrite, "cannot install file"))
		return
	}
	s.State = types.StateCommitted
	log.Info().Int("bytes", len(s.Content)).Msg("File installed")
}

// ownership is the resolved form of a Savable's Group and Mode hints.
type ownership struct {
	gid     int
	mode    fs.FileMode
	setMode bool
}

// resolveOwnership validates the hints before anything touches the disk.
func (e *Engine) resolveOwnership(s *types.Savable) (ownership, error) {
	own := ownership{gid: -1}
	if s.Group != "" {
		gid, err := ResolveGroup(s.Group, e.lookupGroup)
		if err != nil {
			return own, err
		}
		own.gid = gid
	}
	if s.Mode != "" {
		mode, err := ParseMode(s.Mode)
		if err != nil {
			return own, err
		}
		own.mode, own.setMode = mode, true
	}
	return own, nil
}

func (e *Engine) applyOwnership(path string, s *types.Savable, own ownership) error {
	if own.gid >= 0 {
		if err := e.fs.Chown(path, -1, own.gid); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot set group %s", s.Group)
		}
	}
	if own.setMode {
		if err := e.fs.Chmod(path, own.mode); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot set mode %s", s.Mode)
		}
	}
	return nil
}

// restore puts the rotated backup back under the main name so the previous
// content stays visible when the install step fails. The staging file is
// left for the next attempt to overwrite.
func (e *Engine) restore(log zerolog.Logger, main, backup string, rotated bool) {
	if !rotated {
		return
	}
	if err := e.fs.Rename(backup, main); err != nil {
		log.Error().Err(err).Str("backup", backup).Msg("Cannot restore previous file from backup")
	}
}

// ResolveGroup turns a group name or numeric gid into a gid. A nil lookup
// uses the system group database.
func ResolveGroup(group string, lookup GroupLookup) (int, error) {
	if gid, err := strconv.Atoi(group); err == nil {
		if gid < 0 {
			return 0, errors.Newf(errors.ErrInvalidInput, "invalid group id %d", gid)
		}
		return gid, nil
	}
	if lookup == nil {
		lookup = lookupSystemGroup
	}
	gid, err := lookup(group)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrInvalidInput, "unknown group %s", group)
	}
	return gid, nil
}

func compact(logger zerolog.Logger, items []*types.Savable) []*types.Savable {
	out := items[:0]
	for i, item := range items {
		if item == nil {
			logger.Warn().Int("item", i).Msg("Nil savable in batch, skipping")
			continue
		}
		out = append(out, item)
	}
	return out
}

func (e *Engine) fail(log zerolog.Logger, s *types.Savable, err error) {
	log.Warn().Err(err).Str("state", s.State.String()).Msg("Save failed")
	s.Fail(err)
}

// Names returns the main, staging and backup paths for file inside dir.
func Names(dir, file string) (main, staging, backup string) {
	main = filepath.Join(dir, file)
	parent, base := filepath.Split(main)
	return main, filepath.Join(parent, StagingPrefix+base), filepath.Join(parent, BackupPrefix+base)
}

// ParseMode parses an octal permission string such as "0644" or "755".
func ParseMode(mode string) (fs.FileMode, error) {
	n, err := strconv.ParseUint(mode, 8, 32)
	if err != nil || n > 0o7777 {
		return 0, errors.Newf(errors.ErrInvalidInput, "invalid file mode '%s'", mode)
	}
	return fs.FileMode(n), nil
}

func checkName(file string) error {
	if file == "" {
		return errors.New(errors.ErrInvalidInput, "empty file name")
	}
	clean := filepath.Clean(file)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return errors.Newf(errors.ErrInvalidInput, "file name '%s' escapes the target directory", file)
	}
	return nil
}

func failures(dir string, items []*types.Savable) error {
	var (
		names []string
		lines []string
	)
	for _, s := range items {
		if !s.Failed() {
			continue
		}
		names = append(names, s.File)
		lines = append(lines, fmt.Sprintf("%s: %s", s.File, s.Error))
	}
	if len(names) == 0 {
		return nil
	}
	return errors.Newf(errors.ErrSave, "%d of %d items failed: %s", len(names), len(items), strings.Join(lines, "; ")).
		WithDetail("dir", dir).
		WithDetail("failed", names)
}

func lookupSystemGroup(name string) (int, error) {
	g, err := user.LookupGroup(name)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(g.Gid)
}
