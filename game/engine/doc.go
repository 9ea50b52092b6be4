// Package engine provides the core logic of the Lost Knight puzzle.
//
// A knight must travel from a start cell to a destination cell on a square
// board whose outer ring is off limits. The package is split in two parts:
//
// Engine answers shortest-path queries over the interior knight graph. It
// holds only an immutable Board and may be shared freely between goroutines.
//
// Session tracks one game. It records the trail of visited cells, recomputes
// the remaining distance after each move and moves through the lifecycle
// created, starting, started, autosolving, then won, failed or stopped.
// Observers implement Listener and are told about the new trail before any
// resulting state change.
//
// Usage:
//
//	board, err := engine.NewBoard(10)
//	if err != nil {
//		log.Fatal(err)
//	}
//	eng := engine.NewEngine(board)
//
//	sess, err := engine.NewSession(eng, engine.Cell{Row: 1, Col: 1}, engine.Cell{Row: 8, Col: 8})
//	if err != nil {
//		log.Fatal(err)
//	}
//	_ = sess.Begin()
//	_ = sess.Place()
//	_ = sess.MarkStarted()
//	_ = sess.Move(engine.Cell{Row: 2, Col: 3})
//
// Budget:
//
// A session allows MaxMoves = 2*(MinMoves-1) moves, where MinMoves is the
// knight distance between start and destination. While the player is in
// control the game is lost as soon as the destination can no longer be
// reached within the moves left.
package engine
