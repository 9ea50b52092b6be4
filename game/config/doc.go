// Package config provides board configuration management for the Lost Knight game.
//
// Configurations live in a directory as JSON (.json) or YAML (.yaml, .yml)
// files. The file name without extension is the config ID used to create
// sessions. Each configuration defines:
//   - the board size (interior cells are 1..size-2 on both axes)
//   - optional fixed start and destination labels such as "A1" and "H8"
//   - an optional seed that makes random endpoints reproducible
//   - the welcome, won, lost and stopped messages
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	boardConfig, err := manager.LoadConfig("classic")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// Loaded configurations are validated with engine.ValidateBoardConfig and
// cached until RefreshCache is called.
package config
