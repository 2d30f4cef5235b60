package battles

import "time"

//go:generate mockgen -destination=mock/mock_time_provider.go -package=mockbattles github.com/KirkDiggler/dnd-battle-engine/internal/repositories/battles TimeProvider

type TimeProvider interface {
	Now() time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now().UTC() }
