// pkg/cobrax/topics/topics_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: fstest.MapFS, cobra
// PURPOSE: Test topic loading, lookup and the replacement help command

package topics_test

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/arthur-debert/gather/pkg/cobrax/topics"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"sources.md":       {Data: []byte("# Sources\n\nwhere tables come from")},
		"option-dest.md":   {Data: []byte("about --dest")},
		"nested/index.txt": {Data: []byte("the duplicate index")},
		"ignore.json":      {Data: []byte("{}")},
	}
}

func TestNew_LoadsSupportedExtensions(t *testing.T) {
	tm, err := topics.New(testFS(), topics.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"index", "option-dest", "sources"}, tm.ListTopics())

	topic, ok := tm.GetTopic("index")
	require.True(t, ok)
	assert.Equal(t, "the duplicate index", topic.Content)

	_, ok = tm.GetTopic("ignore")
	assert.False(t, ok)
}

func TestNew_CustomExtensions(t *testing.T) {
	tm, err := topics.New(testFS(), topics.Options{Extensions: []string{".json"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ignore"}, tm.ListTopics())
}

func TestGetTopic_FlagStyle(t *testing.T) {
	tm, err := topics.New(testFS(), topics.Options{})
	require.NoError(t, err)

	for _, name := range []string{"--dest", "-dest", "dest", "option-dest"} {
		topic, ok := tm.GetTopic(name)
		require.True(t, ok, name)
		assert.Equal(t, "about --dest", topic.Content)
	}
}

func TestPlainRenderer(t *testing.T) {
	r := &topics.PlainRenderer{}
	assert.Equal(t, "# x", r.Render("# x", ".md"))
}

func TestGlamourRenderer_SkipsNonMarkdown(t *testing.T) {
	r := &topics.GlamourRenderer{Style: "notty"}
	assert.Equal(t, "plain", r.Render("plain", ".txt"))
	assert.Contains(t, r.Render("# Heading", ".md"), "Heading")
}

func TestInstall(t *testing.T) {
	tm, err := topics.New(testFS(), topics.Options{})
	require.NoError(t, err)

	run := func(args ...string) string {
		root := &cobra.Command{Use: "gather", Run: func(*cobra.Command, []string) {}}
		root.AddCommand(&cobra.Command{Use: "version", Short: "Print version", Run: func(*cobra.Command, []string) {}})
		tm.Install(root)

		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs(args)
		require.NoError(t, root.Execute())
		return out.String()
	}

	t.Run("topic", func(t *testing.T) {
		assert.Equal(t, "# Sources\n\nwhere tables come from", run("help", "sources"))
	})

	t.Run("list", func(t *testing.T) {
		out := run("help", "topics")
		assert.Contains(t, out, "General topics:\n  index\n  sources\n")
		assert.Contains(t, out, "Option topics:\n  --dest\n")
		assert.True(t, strings.HasSuffix(out, "Use 'gather help <topic>' to read about a specific topic.\n"))
	})

	t.Run("command", func(t *testing.T) {
		assert.Contains(t, run("help", "version"), "Print version")
	})
}
