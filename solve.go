package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/lost-knight/game/engine"
)

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "print a shortest knight path between two cells",
		ArgsUsage: "--from A1 --to H8",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "size", Value: engine.DefaultBoardSize, Usage: "board size including the border"},
			&cli.StringFlag{Name: "from", Required: true, Usage: "origin label, e.g. A1"},
			&cli.StringFlag{Name: "to", Required: true, Usage: "destination label, e.g. H8"},
			&cli.BoolFlag{Name: "no-board", Usage: "print only the path"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return solve(cmd.Root().Writer, cmd.Int("size"), cmd.String("from"), cmd.String("to"), !cmd.Bool("no-board"))
		},
	}
}

// solve writes the shortest path from one label to another, optionally drawn
// on the board.
func solve(w io.Writer, size int, from, to string, drawBoard bool) error {
	board, err := engine.NewBoard(size)
	if err != nil {
		return err
	}
	origin, err := board.ParseLabel(from)
	if err != nil {
		return err
	}
	destination, err := board.ParseLabel(to)
	if err != nil {
		return err
	}

	path := engine.NewEngine(board).ShortestPath(origin, destination)
	out := termenv.NewOutput(w)

	if len(path) == 0 {
		fmt.Fprintf(w, "%s -> %s: %s\n", board.Label(origin), board.Label(destination),
			out.String("unreachable").Foreground(out.Color("#fb7185")))
		return nil
	}

	fmt.Fprintf(w, "%s -> %s: %s\n", board.Label(origin), board.Label(destination),
		out.String(pluralMoves(path.Moves())).Bold())
	fmt.Fprintln(w, strings.Join(board.PathLabels(path), " "))

	if drawBoard {
		fmt.Fprintln(w)
		fmt.Fprint(w, renderPath(out, board, path))
	}
	return nil
}

// renderPath draws the interior grid with each path cell marked by its step
// number. Origin and destination are highlighted.
func renderPath(out *termenv.Output, board engine.Board, path engine.Path) string {
	step := make(map[engine.Cell]int, len(path))
	for i, c := range path {
		step[c] = i
	}
	last := len(path) - 1
	width := len(fmt.Sprint(board.Size()-2)) + 1

	var sb strings.Builder
	sb.WriteString("  ")
	for col := 1; col < board.Size()-1; col++ {
		fmt.Fprintf(&sb, "%*d", width, col)
	}
	sb.WriteByte('\n')

	for row := 1; row < board.Size()-1; row++ {
		sb.WriteByte(byte('A' + row - 1))
		sb.WriteByte(' ')
		for col := 1; col < board.Size()-1; col++ {
			i, ok := step[engine.Cell{Row: row, Col: col}]
			if !ok {
				fmt.Fprintf(&sb, "%*s", width, ".")
				continue
			}
			cell := fmt.Sprintf("%*d", width, i)
			switch i {
			case 0:
				sb.WriteString(out.String(cell).Foreground(out.Color("#818cf8")).Bold().String())
			case last:
				sb.WriteString(out.String(cell).Foreground(out.Color("#f472b6")).Bold().String())
			default:
				sb.WriteString(out.String(cell).Foreground(out.Color("#a78bfa")).String())
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func pluralMoves(n int) string {
	if n == 1 {
		return "1 move"
	}
	return fmt.Sprintf("%d moves", n)
}
