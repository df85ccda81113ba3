package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/protocol"
	"github.com/vango-dev/vdiff/pkg/server"
	"github.com/vango-dev/vdiff/pkg/snapshot"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

const (
	oldList = "tag: ul\nchildren:\n  - {tag: li, children: [{text: a}]}\n"
	newList = "tag: ul\nchildren:\n  - {tag: li, children: [{text: b}]}\n  - {tag: li}\n"
)

type cli struct {
	t      *testing.T
	dir    string
	config string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	config := filepath.Join(dir, "vdiff.yaml")
	doc := fmt.Sprintf("store:\n  uri: %q\nlog:\n  level: error\n", filepath.Join(dir, "store"))
	require.NoError(t, os.WriteFile(config, []byte(doc), 0o644))
	return &cli{t: t, dir: dir, config: config}
}

// file writes a snapshot into the test directory and returns its path.
func (c *cli) file(name, doc string) string {
	c.t.Helper()
	path := filepath.Join(c.dir, name)
	require.NoError(c.t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func (c *cli) run(stdin string, args ...string) (stdout, stderr string, err error) {
	c.t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--no-color", "--config", c.config}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestDiffText(t *testing.T) {
	c := newCLI(t)
	out, _, err := c.run("", "diff", c.file("old.yaml", oldList), c.file("new.yaml", newList))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `ChangeText        #text@2 [-a-]{+b+}`, lines[0])
	assert.Equal(t, `AppendChildren    to ul@0 (1)`, lines[1])
	assert.Equal(t, `  + #3 <li/>`, lines[2])
}

func TestDiffNoDifferences(t *testing.T) {
	c := newCLI(t)
	path := c.file("same.yaml", oldList)
	out, _, err := c.run("", "diff", path, path)
	require.NoError(t, err)
	assert.Equal(t, "No differences.\n", out)
}

func TestDiffStdin(t *testing.T) {
	c := newCLI(t)
	out, _, err := c.run("tag: p\n", "diff", "-", c.file("new.yaml", "tag: div\n"))
	require.NoError(t, err)
	assert.Equal(t, "ReplaceNode       p@0 -> #0 <div/>\n", out)
}

func TestDiffHandlerNames(t *testing.T) {
	c := newCLI(t)
	before := c.file("a.yaml", "tag: button\nattrs: [{name: onclick, handler: save}]\n")
	after := c.file("b.yaml", "tag: button\nattrs: [{name: onclick, handler: cancel}]\n")

	out, _, err := c.run("", "diff", before, after)
	require.NoError(t, err)
	assert.Equal(t, "AddAttributes     button@0 onclick={cancel}\n", out)

	out, _, err = c.run("", "diff", before, before)
	require.NoError(t, err)
	assert.Equal(t, "No differences.\n", out)
}

func TestDiffJSON(t *testing.T) {
	c := newCLI(t)
	out, stderr, err := c.run("", "diff", "--format", "json", "--stats",
		c.file("old.yaml", oldList), c.file("new.yaml", newList))
	require.NoError(t, err)

	var resp server.DiffResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Patches, 2)
	assert.Equal(t, "ChangeText", resp.Patches[0].Op)
	assert.Equal(t, map[string]int{"ChangeText": 1, "AppendChildren": 1}, resp.Summary)
	assert.Contains(t, stderr, "Encoded:")
}

func TestDiffBinary(t *testing.T) {
	c := newCLI(t)
	out, _, err := c.run("", "diff", "--format", "binary", "--compress=false",
		c.file("old.yaml", oldList), c.file("new.yaml", newList))
	require.NoError(t, err)

	frame, err := protocol.DecodeFrame([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, protocol.FramePatches, frame.Type)
	assert.False(t, frame.Flags.Has(protocol.FlagCompressed))

	pf, err := protocol.DecodePatches(frame.Payload)
	require.NoError(t, err)
	require.Len(t, pf.Patches, 2)
	assert.Equal(t, protocol.PatchChangeText, pf.Patches[0].Op)
	assert.Equal(t, protocol.PatchAppendChildren, pf.Patches[1].Op)
}

func TestDiffStats(t *testing.T) {
	c := newCLI(t)
	out, _, err := c.run("", "diff", "--stats", c.file("old.yaml", oldList), c.file("new.yaml", newList))
	require.NoError(t, err)

	upper := strings.ToUpper(out)
	assert.Contains(t, upper, "CHANGETEXT")
	assert.Contains(t, upper, "TOTAL")
	assert.Contains(t, out, "Encoded: ")
}

func TestDiffErrors(t *testing.T) {
	c := newCLI(t)
	good := c.file("good.yaml", oldList)
	bad := c.file("bad.yaml", "tag: ''\n")

	_, _, err := c.run("", "diff", "--format", "xml", good, good)
	assert.Equal(t, "E501", errors.Code(err))

	_, _, err = c.run("", "diff", good, bad)
	require.Error(t, err)
	assert.Equal(t, "E202", errors.Code(err))
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, bad, e.Document)

	_, _, err = c.run("", "diff", good, "missing-name")
	assert.Equal(t, "E301", errors.Code(err))

	_, _, err = c.run("", "diff", good)
	assert.Error(t, err)
}

func TestConfigErrors(t *testing.T) {
	c := newCLI(t)
	c.config = filepath.Join(c.dir, "absent.yaml")
	_, _, err := c.run("", "ls")
	assert.Equal(t, "E101", errors.Code(err))

	out, _, err := c.run("", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestPutListAndDiffByName(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run("", "put", "home@1", c.file("old.yaml", oldList))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Stored home@1 ("))

	_, _, err = c.run(newList, "put", "home@2", "-")
	require.NoError(t, err)
	_, _, err = c.run("", "put", "other", c.file("other.yaml", "tag: p\n"))
	require.NoError(t, err)

	out, _, err = c.run("", "ls")
	require.NoError(t, err)
	assert.Equal(t, "home@1\nhome@2\nother\n", out)

	out, _, err = c.run("", "ls", "home")
	require.NoError(t, err)
	assert.Equal(t, "home@1\nhome@2\n", out)

	out, _, err = c.run("", "diff", "home@1", "home@2")
	require.NoError(t, err)
	assert.Contains(t, out, "[-a-]{+b+}")
}

func TestPutRejectsInvalidSnapshots(t *testing.T) {
	c := newCLI(t)
	_, _, err := c.run("tag: [", "put", "broken", "-")
	assert.Equal(t, "E201", errors.Code(err))

	out, _, err := c.run("", "ls")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestTree(t *testing.T) {
	c := newCLI(t)
	out, _, err := c.run("", "tree", c.file("new.yaml", newList))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "[0] <ul>\n"))
	assert.Contains(t, out, "── [1] <li>")
	assert.Contains(t, out, `── [2] "b"`)
	assert.Contains(t, out, "── [3] <li>")
}

func TestRender(t *testing.T) {
	c := newCLI(t)
	path := c.file("new.yaml", newList)

	out, _, err := c.run("", "render", path)
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>b</li><li></li></ul>\n", out)

	out, _, err = c.run("", "render", "--indices", path)
	require.NoError(t, err)
	assert.Contains(t, out, `<li data-vidx="3">`)
}

func TestVersion(t *testing.T) {
	c := newCLI(t)
	out, _, err := c.run("", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "vdiff dev\n"))
	assert.Contains(t, out, "Go version:")
}

func TestPrintTree(t *testing.T) {
	reg := snapshot.NewRegistry()
	assert.Equal(t, "(empty)\n", printTree(nil, reg))

	tree := &vdom.VNode{Kind: vdom.KindElement, Tag: "p", Children: []*vdom.VNode{
		{Kind: vdom.KindText, Text: "hi"},
	}}
	out := printTree(tree, reg)
	assert.True(t, strings.HasPrefix(out, "[0] <p>\n"))
	assert.Contains(t, out, `└── [1] "hi"`)
}

func TestNodeLabel(t *testing.T) {
	reg := snapshot.NewRegistry()
	assert.Equal(t, "<nil>", nodeLabel(nil, reg))
	assert.Equal(t, `"x"`, nodeLabel(&vdom.VNode{Kind: vdom.KindText, Text: "x"}, reg))

	leaf := &vdom.VNode{Kind: vdom.KindElement, Tag: "img", Attrs: []vdom.Attr{{Name: "src", Value: "a.png"}}}
	assert.Equal(t, `<img src="a.png"/>`, nodeLabel(leaf, reg))

	parent := &vdom.VNode{Kind: vdom.KindElement, Tag: "div", Children: []*vdom.VNode{leaf, {Kind: vdom.KindText, Text: "x"}}}
	assert.Equal(t, "<div> +2", nodeLabel(parent, reg))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
}
