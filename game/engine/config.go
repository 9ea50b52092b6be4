package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrConfigValidation = errors.New("config validation")

// BoardConfig describes a playable board: its size, optional fixed endpoints
// and the messages shown to players.
type BoardConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	BoardSize   int    `json:"board_size" yaml:"board_size"`

	// Start and Destination are cell labels such as "B2". Empty means random.
	Start       string `json:"start,omitempty" yaml:"start,omitempty"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`

	// Seed fixes the random endpoints when non-zero.
	Seed uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	Messages struct {
		Welcome string `json:"welcome" yaml:"welcome"`
		Won     string `json:"won" yaml:"won"`
		Lost    string `json:"lost" yaml:"lost"`
		Stopped string `json:"stopped,omitempty" yaml:"stopped,omitempty"`
	} `json:"messages" yaml:"messages"`
}

// ValidateBoardConfig checks a configuration for correctness and playability.
func ValidateBoardConfig(config *BoardConfig) error {
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrConfigValidation)
	}
	if config.Description == "" {
		return fmt.Errorf("%w: description is required", ErrConfigValidation)
	}

	board, err := NewBoard(config.BoardSize)
	if err != nil {
		return fmt.Errorf("%w: board_size: %w", ErrConfigValidation, err)
	}

	var start, dest Cell
	if config.Start != "" {
		if start, err = board.ParseLabel(config.Start); err != nil {
			return fmt.Errorf("%w: start: %w", ErrConfigValidation, err)
		}
	}
	if config.Destination != "" {
		if dest, err = board.ParseLabel(config.Destination); err != nil {
			return fmt.Errorf("%w: destination: %w", ErrConfigValidation, err)
		}
	}
	if config.Start != "" && config.Destination != "" {
		if start == dest {
			return fmt.Errorf("%w: start and destination must differ", ErrConfigValidation)
		}
		if NewEngine(board).Distance(start, dest) == Unreachable {
			return fmt.Errorf("%w: destination %s is unreachable from %s", ErrConfigValidation, config.Destination, config.Start)
		}
	}

	if config.Messages.Welcome == "" {
		return fmt.Errorf("%w: messages.welcome is required", ErrConfigValidation)
	}
	if config.Messages.Won == "" {
		return fmt.Errorf("%w: messages.won is required", ErrConfigValidation)
	}
	if config.Messages.Lost == "" {
		return fmt.Errorf("%w: messages.lost is required", ErrConfigValidation)
	}
	return nil
}

// Board returns the board described by the configuration.
func (c *BoardConfig) Board() (Board, error) {
	return NewBoard(c.BoardSize)
}

// Endpoints resolves the start and destination cells. Labels win; missing
// endpoints are drawn from rng, or from a generator seeded with Seed when set.
func (c *BoardConfig) Endpoints(rng *rand.Rand) (Cell, Cell, error) {
	board, err := c.Board()
	if err != nil {
		return Cell{}, Cell{}, err
	}
	switch {
	case c.Seed != 0:
		rng = rand.New(rand.NewPCG(c.Seed, c.Seed))
	case rng == nil:
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	var start, dest Cell
	if c.Start != "" {
		if start, err = board.ParseLabel(c.Start); err != nil {
			return Cell{}, Cell{}, err
		}
	}
	if c.Destination != "" {
		if dest, err = board.ParseLabel(c.Destination); err != nil {
			return Cell{}, Cell{}, err
		}
	}

	// A random endpoint never lands on the other one.
	switch {
	case c.Start == "" && c.Destination == "":
		start = board.RandomInteriorCell(rng, nil)
		dest = board.RandomInteriorCell(rng, &start)
	case c.Start == "":
		start = board.RandomInteriorCell(rng, &dest)
	case c.Destination == "":
		dest = board.RandomInteriorCell(rng, &start)
	}
	return start, dest, nil
}

// DecodeBoardConfig parses data as YAML when ext is .yaml or .yml and as JSON otherwise.
func DecodeBoardConfig(data []byte, ext string) (*BoardConfig, error) {
	var config BoardConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// LoadBoardConfig loads and validates a configuration file.
func LoadBoardConfig(filename string) (*BoardConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := DecodeBoardConfig(data, filepath.Ext(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	if err := ValidateBoardConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultBoardConfig returns a random-endpoint configuration on the default board.
func DefaultBoardConfig() *BoardConfig {
	config := &BoardConfig{
		Name:        "default",
		Description: "Random start and destination on a 10x10 board",
		BoardSize:   DefaultBoardSize,
	}
	config.Messages.Welcome = "Guide the knight to its destination."
	config.Messages.Won = "The knight made it home."
	config.Messages.Lost = "The knight is lost: the destination can no longer be reached in time."
	config.Messages.Stopped = "Game stopped."
	return config
}
