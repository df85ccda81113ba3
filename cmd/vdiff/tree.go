package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/vango-dev/vdiff/pkg/snapshot"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

func treeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <snapshot>",
		Short: "Print a snapshot as a tree with node indices",
		Long: `Print a snapshot as a tree. Every node is prefixed with its preorder
index, the index patches use to address it.

Example:
  vdiff tree page.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := snapshot.NewRegistry()
			root, err := a.loadTree(cmd, args[0], reg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), printTree(root, reg))
			return nil
		},
	}
	return cmd
}

// printTree renders n with the preorder index of every node.
func printTree(n *vdom.VNode, reg *snapshot.Registry) string {
	if n == nil {
		return "(empty)\n"
	}
	next := 0
	label := func(n *vdom.VNode) string {
		text := fmt.Sprintf("%q", n.Text)
		if n.IsElement() {
			text = openTag(n, reg)
		}
		s := fmt.Sprintf("[%d] %s", next, text)
		next++
		return s
	}

	root := treeprint.NewWithRoot(label(n))
	var walk func(p treeprint.Tree, n *vdom.VNode)
	walk = func(p treeprint.Tree, n *vdom.VNode) {
		for _, c := range n.Children {
			if c == nil {
				continue
			}
			if len(c.Children) == 0 {
				p.AddNode(label(c))
				continue
			}
			walk(p.AddBranch(label(c)), c)
		}
	}
	walk(root, n)
	return root.String()
}
