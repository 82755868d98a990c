package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/yola1107/yut/internal/model"
)

var boardSides int

// CmdBoard 打印棋盘拓扑
var CmdBoard = &cobra.Command{
	Use:   "board",
	Short: "Print the board topology",
	Long: heredoc.Doc(`
		board prints every node of an n-sided board with its role, side,
		position and ordered exits. Without --sides the configured board
		size is used.`),
	Example: heredoc.Doc(`
		yut board
		yut board --sides 6`),
	RunE: func(cmd *cobra.Command, args []string) error {
		sides := bc.Game.Sides
		if cmd.Flags().Changed("sides") {
			sides = boardSides
		}
		g, err := model.NewGraph(sides, bc.Game.Radius)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sides=%d nodes=%d start=%s goal=%s center=%s\n",
			g.Sides(), g.Len(), g.Name(g.Start()), g.Name(g.Goal()), g.Name(g.Center()))

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tROLE\tSIDE\tX\tY\tNEXT")
		for _, n := range g.Nodes() {
			x, y := n.Pos()
			next := lo.Map(n.Next(), func(id model.NodeID, _ int) string { return g.Name(id) })
			fmt.Fprintf(w, "%d\t%s\t%v\t%d\t%.3f\t%.3f\t%s\n", n.ID(), n.Name(), n.Role(), n.Side(), x, y, strings.Join(next, ","))
		}
		return w.Flush()
	},
}

func init() {
	CmdBoard.Flags().IntVar(&boardSides, "sides", 0, "number of sides (>= 3)")
}
