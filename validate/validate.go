// Command validate checks board configuration files in a configs directory
// (default ../configs). For each .json, .yaml or .yml file it checks:
//   - the file parses and carries the required fields and messages
//   - the board size is in range and the fixed endpoints are interior labels
//   - the destination is reachable from the start
//
// It then reports the resolved endpoints and the move budget a session on
// that board would get. Random endpoints are resolved only when seeded.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/lost-knight/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{File: filepath.Base(filePath), Valid: true}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.DecodeBoardConfig(data, filepath.Ext(filePath))
	if err != nil {
		result.fail("Invalid %s: %v", strings.TrimPrefix(filepath.Ext(filePath), "."), err)
		return result
	}

	if err := engine.ValidateBoardConfig(config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), engine.ErrConfigValidation.Error()+": "))
		return result
	}

	board, _ := config.Board()
	result.note("✓ Name: %s", config.Name)
	result.note("✓ Board: %dx%d (%d interior cells)", board.Size(), board.Size(), len(board.InteriorCells()))
	if config.Messages.Stopped == "" {
		result.note("· messages.stopped not set, a generic message is used")
	}

	fixed := config.Start != "" && config.Destination != ""
	if !fixed && config.Seed == 0 {
		result.note("✓ Endpoints: random")
		return result
	}

	start, dest, err := config.Endpoints(nil)
	if err != nil {
		result.fail("Failed to resolve endpoints: %v", err)
		return result
	}
	if config.Seed != 0 {
		result.note("✓ Endpoints: %s -> %s (seed %d)", board.Label(start), board.Label(dest), config.Seed)
	} else {
		result.note("✓ Endpoints: %s -> %s", board.Label(start), board.Label(dest))
	}

	session, err := engine.NewSession(engine.NewEngine(board), start, dest)
	if err != nil {
		if errors.Is(err, engine.ErrNoRoute) {
			result.fail("Destination %s is unreachable from %s", board.Label(dest), board.Label(start))
		} else {
			result.fail("%v", err)
		}
		return result
	}
	result.note("✓ Moves: minimum %d, budget %d", session.MinMoves(), session.MaxMoves())
	if session.MaxMoves() == 0 {
		result.note("· destination is one move away: any other first move loses")
	}
	return result
}

// configFiles lists the configuration files in dir, sorted by name.
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

// main validates every configuration in the directory given as the first
// argument, exiting non-zero if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := configFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No configuration files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
