package engine

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *BoardConfig {
	config := DefaultBoardConfig()
	config.Name = "test"
	config.Start = "A1"
	config.Destination = "H8"
	return config
}

func TestValidateBoardConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BoardConfig)
		ok     bool
	}{
		{"valid", func(*BoardConfig) {}, true},
		{"random endpoints", func(c *BoardConfig) { c.Start, c.Destination = "", "" }, true},
		{"missing name", func(c *BoardConfig) { c.Name = "" }, false},
		{"missing description", func(c *BoardConfig) { c.Description = "" }, false},
		{"degenerate board", func(c *BoardConfig) { c.BoardSize = 4; c.Start, c.Destination = "", "" }, false},
		{"huge board", func(c *BoardConfig) { c.BoardSize = 40 }, false},
		{"border start", func(c *BoardConfig) { c.Start = "@1" }, false},
		{"start off board", func(c *BoardConfig) { c.Start = "Z1" }, false},
		{"same endpoints", func(c *BoardConfig) { c.Destination = "A1" }, false},
		{"missing welcome", func(c *BoardConfig) { c.Messages.Welcome = "" }, false},
		{"missing won", func(c *BoardConfig) { c.Messages.Won = "" }, false},
		{"missing lost", func(c *BoardConfig) { c.Messages.Lost = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)
			err := ValidateBoardConfig(config)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrConfigValidation)
			}
		})
	}
}

func TestBoardConfigEndpoints(t *testing.T) {
	config := validConfig()
	start, dest, err := config.Endpoints(nil)
	require.NoError(t, err)
	assert.Equal(t, Cell{1, 1}, start)
	assert.Equal(t, Cell{8, 8}, dest)

	config.Start, config.Destination = "", ""
	config.Seed = 42
	s1, d1, err := config.Endpoints(nil)
	require.NoError(t, err)
	s2, d2, err := config.Endpoints(rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	assert.Equal(t, s1, s2, "seed overrides the caller's generator")
	assert.Equal(t, d1, d2)
	assert.NotEqual(t, s1, d1)

	config.Seed = 0
	s, d, err := config.Endpoints(rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	board, _ := config.Board()
	assert.True(t, board.IsInterior(s))
	assert.True(t, board.IsInterior(d))
	assert.NotEqual(t, s, d)
}

func TestBoardConfigEndpoints_OneFixedEndpoint(t *testing.T) {
	board, err := NewBoard(DefaultBoardSize)
	require.NoError(t, err)

	tests := []struct {
		name        string
		start, dest string
	}{
		{"destination only", "", "A1"},
		{"start only", "A1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			config.Start, config.Destination = tt.start, tt.dest

			for seed := uint64(1); seed <= 2000; seed++ {
				start, dest, err := config.Endpoints(rand.New(rand.NewPCG(seed, seed)))
				require.NoError(t, err)
				require.NotEqual(t, start, dest, "seed %d", seed)
				fixed := start
				if tt.start == "" {
					fixed = dest
				}
				assert.Equal(t, Cell{1, 1}, fixed)

				_, err = NewSession(NewEngine(board), start, dest)
				require.NoError(t, err, "seed %d", seed)
			}
		})
	}

	config := validConfig()
	config.Start = ""
	config.Seed = 257
	start, dest, err := config.Endpoints(nil)
	require.NoError(t, err)
	assert.NotEqual(t, start, dest)
	assert.Equal(t, Cell{8, 8}, dest)
}

func TestLoadBoardConfig(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "corner.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`name: corner
description: Corner to corner
board_size: 10
start: A1
destination: H8
messages:
  welcome: Go
  won: Home
  lost: Lost
`), 0o644))

	jsonPath := filepath.Join(dir, "corner.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
  "name": "corner",
  "description": "Corner to corner",
  "board_size": 10,
  "start": "A1",
  "destination": "H8",
  "messages": {"welcome": "Go", "won": "Home", "lost": "Lost"}
}`), 0o644))

	fromYAML, err := LoadBoardConfig(yamlPath)
	require.NoError(t, err)
	fromJSON, err := LoadBoardConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, fromJSON, fromYAML)
	assert.Equal(t, "Home", fromYAML.Messages.Won)

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"name": "bad", "board_size": 3}`), 0o644))
	_, err = LoadBoardConfig(badPath)
	assert.ErrorIs(t, err, ErrConfigValidation)

	_, err = LoadBoardConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
