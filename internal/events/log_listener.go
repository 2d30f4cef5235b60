package events

import (
	"io"
	"log"
)

// LogListener writes a line per battle event
type LogListener struct {
	logger *log.Logger
}

// NewLogListener logs to w, or to the standard logger when w is nil
func NewLogListener(w io.Writer) *LogListener {
	if w == nil {
		return &LogListener{logger: log.Default()}
	}
	return &LogListener{logger: log.New(w, "", 0)}
}

// Register subscribes the listener to every battle event type
func (l *LogListener) Register(bus *Bus) {
	bus.SubscribeAll(l,
		EventTypeBattleStarted,
		EventTypeActionResolved,
		EventTypeActionRejected,
		EventTypeBattleCompleted,
		EventTypeBattleRolledBack,
	)
}

func (l *LogListener) ID() string    { return "log" }
func (l *LogListener) Priority() int { return 1000 }

func (l *LogListener) HandleEvent(event Event) error {
	switch e := event.(type) {
	case *BattleStartedEvent:
		l.logger.Printf("battle %s: started with %d participants", e.BattleID, len(e.Participants))
	case *ActionResolvedEvent:
		l.logger.Printf("battle %s: [%d] round %d %s", e.BattleID, e.Action.Index, e.Action.Round, e.Action.Result)
		for _, m := range e.Action.Messages {
			l.logger.Printf("battle %s:     %s", e.BattleID, m)
		}
	case *ActionRejectedEvent:
		l.logger.Printf("WARN: battle %s: rejected %s: %s", e.BattleID, e.Action.Kind, e.Action.Result)
	case *BattleCompletedEvent:
		l.logger.Printf("battle %s: %s after %d rounds", e.BattleID, e.Outcome, e.Rounds)
	case *BattleRolledBackEvent:
		l.logger.Printf("battle %s: rolled back to action %d, %d actions cancelled", e.BattleID, e.ActionIndex, e.Cancelled)
	default:
		l.logger.Printf("battle %s: %s", event.GetBattleID(), event.GetType())
	}
	return nil
}
