// Command analyze prints knight-graph statistics for the boards used by the
// configuration files in the project's configs directory: interior cell
// count, diameter and radius, and the distribution of shortest-path lengths.
// With -sizes it reports every supported board size instead.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/lost-knight/game/engine"
)

func main() {
	dir := flag.String("dir", "configs", "configuration directory")
	sizes := flag.Bool("sizes", false, "analyze every supported board size")
	flag.Parse()

	if *sizes {
		for size := engine.MinBoardSize; size <= engine.MaxBoardSize; size++ {
			board, _ := engine.NewBoard(size)
			writeStats(os.Stdout, board)
		}
		return
	}

	files, err := configFiles(*dir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		if err := analyzeConfig(os.Stdout, file); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func configFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

func analyzeConfig(w io.Writer, path string) error {
	config, err := engine.LoadBoardConfig(path)
	if err != nil {
		return err
	}
	board, err := config.Board()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Name: %s\n", config.Name)
	writeStats(w, board)

	if (config.Start == "" || config.Destination == "") && config.Seed == 0 {
		fmt.Fprintln(w, "Endpoints: random")
		return nil
	}
	start, dest, err := config.Endpoints(nil)
	if err != nil {
		return err
	}
	eng := engine.NewEngine(board)
	route := eng.ShortestPath(start, dest)
	fmt.Fprintf(w, "Endpoints: %s -> %s\n", board.Label(start), board.Label(dest))
	fmt.Fprintf(w, "Shortest path (%d moves): %s\n", route.Moves(), strings.Join(board.PathLabels(route), " "))
	fmt.Fprintf(w, "Start eccentricity: %d\n", eng.Eccentricity(start))
	return nil
}

func writeStats(w io.Writer, board engine.Board) {
	stats := engine.NewEngine(board).Stats()

	fmt.Fprintf(w, "Board: %dx%d, %d interior cells\n", board.Size(), board.Size(), stats.InteriorCells)
	if !stats.Connected {
		fmt.Fprintf(w, "⚠️  WARNING: knight graph is not connected\n")
	}
	fmt.Fprintf(w, "Diameter: %d, Radius: %d\n", stats.Diameter, stats.Radius)

	pairs := 0
	for _, n := range stats.Histogram {
		pairs += n
	}
	for _, d := range stats.SortedDistances() {
		n := stats.Histogram[d]
		fmt.Fprintf(w, "  %2d moves: %6d pairs (%5.1f%%)\n", d, n, 100*float64(n)/float64(pairs))
	}
}
