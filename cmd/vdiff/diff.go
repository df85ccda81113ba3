package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/protocol"
	"github.com/vango-dev/vdiff/pkg/server"
	"github.com/vango-dev/vdiff/pkg/snapshot"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

// Output formats of the diff command.
const (
	formatText   = "text"
	formatJSON   = "json"
	formatBinary = "binary"
)

var (
	opColors = map[vdom.PatchOp]*color.Color{
		vdom.PatchReplaceNode:      color.New(color.FgMagenta, color.Bold),
		vdom.PatchInsertNode:       color.New(color.FgGreen, color.Bold),
		vdom.PatchAppendChildren:   color.New(color.FgGreen, color.Bold),
		vdom.PatchRemoveNode:       color.New(color.FgRed, color.Bold),
		vdom.PatchAddAttributes:    color.New(color.FgYellow),
		vdom.PatchRemoveAttributes: color.New(color.FgYellow),
		vdom.PatchChangeText:       color.New(color.FgCyan),
	}
	inserted = color.New(color.FgGreen).SprintFunc()
	deleted  = color.New(color.FgRed).SprintFunc()
	dim      = color.New(color.FgHiBlack).SprintFunc()
)

type diffOptions struct {
	format   string
	stats    bool
	compress bool
	force    bool
}

func diffCmd(a *app) *cobra.Command {
	var opts diffOptions

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Print the patches between two snapshots",
		Long: `Compare two snapshots and print the patches that turn <old> into <new>.

Patches address nodes by their preorder index in the old tree. Text
changes are shown character by character: [-removed-]{+added+}.

Formats:
  text    colored, one patch per line (default)
  json    the same document POST /v1/diff returns
  binary  a FramePatches wire frame

Examples:
  vdiff diff before.yaml after.yaml
  vdiff diff s3://snapshots/v1/home.yaml s3://snapshots/v2/home.yaml --stats
  vdiff diff home@1 home@2 --format binary --compress > patches.bin`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("compress") {
				opts.compress = a.cfg.Protocol.Compress
			}
			return a.runDiff(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "Output format: text, json or binary")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print per-op counts and the encoded size")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "LZ4-compress binary frames (default from config)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Write binary output even to a terminal")

	return cmd
}

func (a *app) runDiff(cmd *cobra.Command, oldLoc, newLoc string, opts diffOptions) error {
	switch opts.format {
	case formatText, formatJSON, formatBinary:
	default:
		return errors.New("E501").WithDetailf("Unknown format %q; use text, json or binary.", opts.format)
	}
	out := cmd.OutOrStdout()
	if opts.format == formatBinary && !opts.force && isTerminal(out) {
		return errors.New("E502").WithSuggestion("Redirect stdout to a file or pass --force.")
	}

	reg := snapshot.NewRegistry()
	prev, err := a.loadTree(cmd, oldLoc, reg)
	if err != nil {
		return err
	}
	next, err := a.loadTree(cmd, newLoc, reg)
	if err != nil {
		return err
	}

	patches := vdom.Diff(prev, next)
	a.logger.Debug("diff computed", "old", oldLoc, "new", newLoc, "patches", len(patches))

	threshold := -1
	if opts.compress {
		threshold = a.cfg.Protocol.CompressThreshold
	}
	frame, rawSize, err := encodeFrame(patches, threshold)
	if err != nil {
		return err
	}

	statsOut := out
	switch opts.format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(server.NewDiffResponse(patches, reg)); err != nil {
			return err
		}
		statsOut = cmd.ErrOrStderr()
	case formatBinary:
		if _, err := out.Write(frame); err != nil {
			return errors.New("E303").WithDetail("Cannot write the frame to stdout.").Wrap(err)
		}
		statsOut = cmd.ErrOrStderr()
	default:
		printPatches(out, patches, reg)
	}

	if opts.stats {
		printStats(statsOut, patches, len(frame), rawSize)
	}
	return nil
}

// encodeFrame encodes patches as a FramePatches frame. It returns the frame
// and the size of the uncompressed payload.
func encodeFrame(patches []vdom.Patch, threshold int) ([]byte, int, error) {
	payload := protocol.EncodePatches(&protocol.PatchesFrame{Patches: protocol.FromVDOM(patches)})
	frame, err := protocol.CompressFrame(protocol.FramePatches, payload, threshold)
	if err != nil {
		return nil, 0, errors.New("E402").Wrap(err)
	}
	data, err := frame.Encode()
	if err != nil {
		return nil, 0, errors.New("E402").
			WithDetailf("%d patches encode to %s.", len(patches), humanize.Bytes(uint64(len(frame.Payload)))).
			Wrap(err)
	}
	return data, len(payload), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printPatches writes one line per patch.
func printPatches(w io.Writer, patches []vdom.Patch, reg *snapshot.Registry) {
	if len(patches) == 0 {
		fmt.Fprintln(w, dim("No differences."))
		return
	}
	for _, p := range patches {
		c := opColors[p.Op]
		fmt.Fprintf(w, "%s %s\n", c.Sprintf("%-17s", p.Op), describe(p, reg))
		if p.Op == vdom.PatchAppendChildren {
			for _, child := range p.Children {
				fmt.Fprintf(w, "  %s #%d %s\n", inserted("+"), child.NewIdx, nodeLabel(child.Node, reg))
			}
		}
	}
}

func describe(p vdom.Patch, reg *snapshot.Registry) string {
	switch p.Op {
	case vdom.PatchReplaceNode:
		return fmt.Sprintf("%s -> #%d %s", at(p.Tag, p.OldIdx), p.NewIdx, nodeLabel(p.Node, reg))
	case vdom.PatchInsertNode:
		return fmt.Sprintf("under %s pos %d -> #%d %s", at(p.Tag, p.OldIdx), p.Pos, p.NewIdx, nodeLabel(p.Node, reg))
	case vdom.PatchAppendChildren:
		return fmt.Sprintf("to %s (%d)", at(p.Tag, p.OldIdx), len(p.Children))
	case vdom.PatchRemoveNode:
		return at(p.Tag, p.OldIdx)
	case vdom.PatchAddAttributes, vdom.PatchRemoveAttributes:
		parts := make([]string, len(p.Attrs))
		for i, attr := range p.Attrs {
			parts[i] = attrLabel(attr, reg)
		}
		return fmt.Sprintf("%s %s", at(p.Tag, p.OldIdx), strings.Join(parts, " "))
	case vdom.PatchChangeText:
		return fmt.Sprintf("%s %s", at("#text", p.OldIdx), textDiff(p.OldText, p.NewText))
	default:
		return p.String()
	}
}

func at(tag string, idx int) string {
	if tag == "" {
		tag = "#text"
	}
	return fmt.Sprintf("%s@%d", tag, idx)
}

// textDiff renders the character changes between two strings.
func textDiff(oldText, newText string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldText, newText, false))

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			b.WriteString(inserted("{+" + d.Text + "+}"))
		case diffmatchpatch.DiffDelete:
			b.WriteString(deleted("[-" + d.Text + "-]"))
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// nodeLabel is a one-line summary of a node: the element with its
// attributes and descendant count, or the quoted text.
func nodeLabel(n *vdom.VNode, reg *snapshot.Registry) string {
	switch {
	case n == nil:
		return "<nil>"
	case n.IsText():
		return fmt.Sprintf("%q", n.Text)
	case len(n.Children) == 0:
		return strings.TrimSuffix(openTag(n, reg), ">") + "/>"
	default:
		return fmt.Sprintf("%s +%d", openTag(n, reg), n.Size()-1)
	}
}

func openTag(n *vdom.VNode, reg *snapshot.Registry) string {
	var b strings.Builder
	b.WriteString("<" + n.Tag)
	for i := range n.Attrs {
		if !n.Attrs[i].IsEmpty() {
			b.WriteString(" " + attrLabel(&n.Attrs[i], reg))
		}
	}
	b.WriteString(">")
	return b.String()
}

// attrLabel prints an attribute, naming callbacks through reg.
func attrLabel(attr *vdom.Attr, reg *snapshot.Registry) string {
	if attr.IsCallback() {
		return fmt.Sprintf("%s={%s}", attr.QualifiedName(), snapshot.ToAttr(attr, reg).Handler)
	}
	return attr.String()
}

// printStats writes the per-op table and the encoded frame size.
func printStats(w io.Writer, patches []vdom.Patch, frameSize, rawSize int) {
	counts := vdom.Summarize(patches)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Op", "Count"})
	for _, op := range vdom.PatchOps {
		if n := counts[op]; n > 0 {
			tbl.AppendRow(table.Row{op.String(), n})
		}
	}
	tbl.AppendFooter(table.Row{"Total", len(patches)})
	tbl.Render()

	size := humanize.Bytes(uint64(frameSize))
	if frameSize-protocol.FrameHeaderSize < rawSize {
		size += " (" + humanize.Bytes(uint64(rawSize)) + " uncompressed)"
	}
	fmt.Fprintf(w, "Encoded: %s\n", size)
}
