package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/lost-knight/game/engine"
)

// eventCollector turns session notifications into GameEvents for one operation.
type eventCollector struct {
	svc    *gameServiceImpl
	sess   *Session
	events []GameEvent
}

func (s *gameServiceImpl) attach(sess *Session) *eventCollector {
	c := &eventCollector{svc: s, sess: sess}
	sess.Game.SetListener(c)
	return c
}

func (c *eventCollector) detach() {
	c.sess.Game.SetListener(nil)
}

func (c *eventCollector) add(ev GameEvent) {
	ev.ID = uuid.NewString()
	ev.Timestamp = time.Now()
	c.events = append(c.events, ev)
}

func (c *eventCollector) TrailUpdated(trail []engine.Cell) {
	last := trail[len(trail)-1]
	board := c.sess.Game.Engine().Board()
	ev := GameEvent{Cell: &last}
	if len(trail) == 1 {
		ev.Type = EventPlaced
		ev.Message = fmt.Sprintf("Knight placed on %s", board.Label(last))
	} else {
		ev.Type = EventMove
		ev.Message = fmt.Sprintf("Knight moved to %s, %d moves from the destination",
			board.Label(last), c.sess.Game.RemainingDistance())
	}
	c.add(ev)
}

func (c *eventCollector) StateChanged(state engine.State) {
	c.add(GameEvent{
		Type:    EventStateChanged,
		State:   state,
		Message: stateMessage(c.sess, state),
	})
	if c.svc.metrics != nil {
		c.svc.metrics.StateChanges.WithLabelValues(string(state)).Inc()
	}
	c.svc.logger.Debug("session state changed", "session", c.sess.ID, "state", state)
}

// stateMessage picks the player-facing message for a state.
func stateMessage(sess *Session, state engine.State) string {
	msgs := sess.Config.Messages
	game := sess.Game
	switch state {
	case engine.StateCreated, engine.StateStarting:
		return msgs.Welcome
	case engine.StateWon:
		return msgs.Won
	case engine.StateFailed:
		return msgs.Lost
	case engine.StateStopped:
		if msgs.Stopped != "" {
			return msgs.Stopped
		}
		return "Game stopped."
	case engine.StateAutosolving:
		return fmt.Sprintf("Autosolving: %d moves to go", game.RemainingDistance())
	}
	return fmt.Sprintf("Moves needed: %d, allowed: %d, made: %d, still needed: %d, left: %d",
		game.MinMoves(), game.MaxMoves(), game.MovesMade(), game.RemainingDistance(), game.MovesLeft())
}
