package types

// SaveState tracks a Savable through the save pipeline. Committed and Failed
// are terminal.
type SaveState int

const (
	StatePending SaveState = iota
	StatePrecheck
	StateIndexChecked
	StateContentResolved
	StateWritten
	StateBackedUp
	StateCommitted
	StateFailed
)

var saveStateNames = map[SaveState]string{
	StatePending:         "pending",
	StatePrecheck:        "precheck",
	StateIndexChecked:    "index-checked",
	StateContentResolved: "content-resolved",
	StateWritten:         "written",
	StateBackedUp:        "backed-up",
	StateCommitted:       "committed",
	StateFailed:          "failed",
}

func (s SaveState) String() string {
	if name, ok := saveStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Savable describes one artifact to install in the target directory. It
// carries either Content or a SourceURL to fetch; ownership and permission
// hints are optional. Error is set when the artifact could not be produced or
// installed.
type Savable struct {
	File      string
	Content   []byte
	SourceURL string

	// Group is a group name or numeric gid applied to the installed file.
	Group string
	// Mode is an octal permission string such as "0644".
	Mode string

	// Indexed enables duplicate suppression by SourceURL.
	Indexed bool
	// OKEmpty marks a descriptor with nothing to do that still counts as success.
	OKEmpty bool

	Error string
	State SaveState
	// Skipped is set when the item finished without writing anything.
	Skipped bool
}

// NewText returns a Savable holding UTF-8 text content.
func NewText(file, content string) *Savable {
	return &Savable{File: file, Content: []byte(content)}
}

// NewFetch returns a Savable whose content is fetched from url at save time.
func NewFetch(file, url string, indexed bool) *Savable {
	return &Savable{File: file, SourceURL: url, Indexed: indexed}
}

// NewFailed returns an error-only Savable, used to report a failure that
// happened before anything could be saved.
func NewFailed(file string, err error) *Savable {
	s := &Savable{File: file}
	s.Fail(err)
	return s
}

// Fail records err and moves the item to StateFailed.
func (s *Savable) Fail(err error) {
	if err != nil {
		s.Error = err.Error()
	}
	s.State = StateFailed
}

// Failed reports whether the item carries an error.
func (s *Savable) Failed() bool {
	return s.Error != ""
}

// HasContent reports whether content is already resolved.
func (s *Savable) HasContent() bool {
	return s.Content != nil
}
