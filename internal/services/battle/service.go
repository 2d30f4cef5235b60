// Package battle runs battles against stored state: it loads records from
// the definitions catalog, resolves commands with the engine, persists the
// resulting snapshot and publishes lifecycle events.
package battle

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	engine "github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
	"github.com/KirkDiggler/dnd-battle-engine/internal/events"
	"github.com/KirkDiggler/dnd-battle-engine/internal/repositories/battles"
	"github.com/KirkDiggler/dnd-battle-engine/internal/repositories/definitions"
	"github.com/KirkDiggler/dnd-battle-engine/internal/uuid"
	"golang.org/x/sync/errgroup"
)

// Service defines the battle service interface
type Service interface {
	// StartBattle builds the participants and opens round 1
	StartBattle(ctx context.Context, input *StartBattleInput) (*engine.Battle, error)

	// GetBattle retrieves a battle by ID
	GetBattle(ctx context.Context, battleID string) (*engine.Battle, error)

	// ListActive returns the ids of battles still in progress
	ListActive(ctx context.Context) ([]string, error)

	// Attack resolves a weapon attack
	Attack(ctx context.Context, battleID string, cmd engine.AttackCommand) (*Result, error)

	// CastSpell resolves a spell cast
	CastSpell(ctx context.Context, battleID string, cmd engine.SpellCommand) (*Result, error)

	// UseSkill resolves a bonus-action skill
	UseSkill(ctx context.Context, battleID string, cmd engine.SkillCommand) (*Result, error)

	// EndTurn advances to the next turn
	EndTurn(ctx context.Context, battleID string, cmd engine.EndTurnCommand) (*Result, error)

	// Summon queues a unit to join at the next round
	Summon(ctx context.Context, input *SummonInput) (*Result, error)

	// Rollback rebuilds the battle as it stood before actionIndex
	Rollback(ctx context.Context, battleID string, actionIndex int) (*engine.Battle, error)
}

// Combatant names a source record and how many copies of it fight
type Combatant struct {
	Kind     records.SourceKind
	ID       string
	Quantity int
}

// StartBattleInput contains data for starting a battle
type StartBattleInput struct {
	Allies          []Combatant
	Enemies         []Combatant
	InitiativeRolls []int
	ChanceRolls     []float64
}

// SummonInput contains data for summoning a unit
type SummonInput struct {
	BattleID    string
	UnitID      string
	Side        engine.Side
	ChanceRolls []float64
}

// Result is the outcome of one command. A rejected action comes back with
// the unchanged battle.
type Result struct {
	Battle *engine.Battle
	Action *engine.Action
}

type service struct {
	engine        *engine.Engine
	repository    battles.Repository
	catalog       definitions.Catalog
	publisher     events.Publisher
	uuidGenerator uuid.Generator
	now           func() time.Time
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Engine        *engine.Engine
	Repository    battles.Repository
	Catalog       definitions.Catalog
	Publisher     events.Publisher
	UUIDGenerator uuid.Generator
	Now           func() time.Time
}

// NewService creates a new battle service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.Catalog == nil {
		panic("catalog is required")
	}

	svc := &service{
		engine:        cfg.Engine,
		repository:    cfg.Repository,
		catalog:       cfg.Catalog,
		publisher:     cfg.Publisher,
		uuidGenerator: cfg.UUIDGenerator,
		now:           cfg.Now,
	}
	if svc.engine == nil {
		svc.engine = engine.NewEngine(engine.DefaultRules())
	}
	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if svc.now == nil {
		svc.now = func() time.Time { return time.Now().UTC() }
	}
	return svc
}

func validateCombatants(side string, list []Combatant) error {
	if len(list) == 0 {
		return dnderr.InvalidArgumentf("at least one %s is required", side)
	}
	for _, c := range list {
		if strings.TrimSpace(c.ID) == "" {
			return dnderr.InvalidArgumentf("%s source ID is required", side)
		}
		if c.Kind != records.SourceCharacter && c.Kind != records.SourceUnit {
			return dnderr.InvalidArgumentf("invalid source kind %q", c.Kind).
				WithMeta("source_id", c.ID)
		}
		if c.Quantity < 0 {
			return dnderr.InvalidArgumentf("quantity for %s cannot be negative", c.ID)
		}
	}
	return nil
}

func sourcesQuery(list []Combatant) *definitions.Query {
	q := &definitions.Query{}
	for _, c := range list {
		if c.Kind == records.SourceCharacter {
			q.CharacterIDs = append(q.CharacterIDs, c.ID)
		} else {
			q.UnitIDs = append(q.UnitIDs, c.ID)
		}
	}
	return q
}

func specs(list []Combatant, side engine.Side, lib *records.Library) []engine.ParticipantSpec {
	out := make([]engine.ParticipantSpec, 0, len(list))
	for _, c := range list {
		var src records.Source
		if c.Kind == records.SourceCharacter {
			src = records.CharacterSource(lib.Characters[c.ID])
		} else {
			src = records.UnitSource(lib.Units[c.ID])
		}
		out = append(out, engine.ParticipantSpec{Source: src, Side: side, Quantity: c.Quantity})
	}
	return out
}

// StartBattle builds the participants and opens round 1
func (s *service) StartBattle(ctx context.Context, input *StartBattleInput) (*engine.Battle, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	if err := validateCombatants("ally", input.Allies); err != nil {
		return nil, err
	}
	if err := validateCombatants("enemy", input.Enemies); err != nil {
		return nil, err
	}

	// Both sides load concurrently
	sides := [][]Combatant{input.Allies, input.Enemies}
	libs := make([]*records.Library, len(sides))
	g, gctx := errgroup.WithContext(ctx)
	for i, list := range sides {
		i, list := i, list
		g.Go(func() error {
			lib, err := definitions.LoadWithReferences(gctx, s.catalog, sourcesQuery(list))
			if err != nil {
				return err
			}
			libs[i] = lib
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dnderr.Wrap(err, "failed to load battle records")
	}

	lib := records.NewLibrary()
	for _, l := range libs {
		lib.Merge(l)
	}

	participants := append(specs(input.Allies, engine.SideAlly, lib), specs(input.Enemies, engine.SideEnemy, lib)...)
	b, err := s.engine.StartBattle(engine.StartInput{
		CommandMeta:     engine.CommandMeta{At: s.now(), ChanceRolls: input.ChanceRolls},
		BattleID:        s.uuidGenerator.New(),
		Participants:    participants,
		Lookup:          lib,
		InitiativeRolls: input.InitiativeRolls,
	})
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to start battle")
	}

	if err := s.repository.Create(ctx, b); err != nil {
		return nil, dnderr.Wrap(err, "failed to save battle")
	}

	s.emit(events.NewBattleStarted(b))
	if b.Status != engine.BattleStatusActive {
		s.emit(events.NewBattleCompleted(b))
	}
	return b, nil
}

// GetBattle retrieves a battle by ID
func (s *service) GetBattle(ctx context.Context, battleID string) (*engine.Battle, error) {
	if strings.TrimSpace(battleID) == "" {
		return nil, dnderr.InvalidArgument("battle ID is required")
	}

	b, err := s.repository.Get(ctx, battleID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to get battle '%s'", battleID)
	}
	return b, nil
}

// ListActive returns the ids of battles still in progress
func (s *service) ListActive(ctx context.Context) ([]string, error) {
	ids, err := s.repository.ListActive(ctx)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to list active battles")
	}
	return ids, nil
}

// Attack resolves a weapon attack
func (s *service) Attack(ctx context.Context, battleID string, cmd engine.AttackCommand) (*Result, error) {
	return s.apply(ctx, battleID, engine.Command{Attack: &cmd})
}

// CastSpell resolves a spell cast
func (s *service) CastSpell(ctx context.Context, battleID string, cmd engine.SpellCommand) (*Result, error) {
	return s.apply(ctx, battleID, engine.Command{Spell: &cmd})
}

// UseSkill resolves a bonus-action skill
func (s *service) UseSkill(ctx context.Context, battleID string, cmd engine.SkillCommand) (*Result, error) {
	return s.apply(ctx, battleID, engine.Command{Skill: &cmd})
}

// EndTurn advances to the next turn
func (s *service) EndTurn(ctx context.Context, battleID string, cmd engine.EndTurnCommand) (*Result, error) {
	return s.apply(ctx, battleID, engine.Command{EndTurn: &cmd})
}

// Summon queues a unit to join at the next round
func (s *service) Summon(ctx context.Context, input *SummonInput) (*Result, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.UnitID) == "" {
		return nil, dnderr.InvalidArgument("unit ID is required")
	}

	b, err := s.GetBattle(ctx, input.BattleID)
	if err != nil {
		return nil, err
	}

	src := records.UnitSource(&records.Unit{ID: input.UnitID})
	lib, err := definitions.LoadWithReferences(ctx, s.catalog, definitions.Sources(src))
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to load unit '%s'", input.UnitID)
	}

	// The next free instance number keeps participant ids unique
	instance := nextInstance(b, records.SourceUnit, input.UnitID)
	p, err := engine.NewParticipant(b.ID, records.UnitSource(lib.Units[input.UnitID]), input.Side, instance, lib, s.engine.Rules())
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to build summoned participant")
	}

	cmd := engine.SummonCommand{
		CommandMeta: engine.CommandMeta{ChanceRolls: input.ChanceRolls},
		Participant: p,
	}
	return s.applyTo(ctx, b, engine.Command{Summon: &cmd})
}

func nextInstance(b *engine.Battle, kind records.SourceKind, sourceID string) int {
	taken := func(id string) bool {
		if b.Participant(id) != nil {
			return true
		}
		for _, p := range b.PendingSummons {
			if p.ID == id {
				return true
			}
		}
		return false
	}
	n := 1
	for taken(engine.ParticipantID(kind, sourceID, n)) {
		n++
	}
	return n
}

// meta returns the shared fields of whichever command is set
func meta(cmd engine.Command) *engine.CommandMeta {
	switch {
	case cmd.Attack != nil:
		return &cmd.Attack.CommandMeta
	case cmd.Spell != nil:
		return &cmd.Spell.CommandMeta
	case cmd.Skill != nil:
		return &cmd.Skill.CommandMeta
	case cmd.EndTurn != nil:
		return &cmd.EndTurn.CommandMeta
	case cmd.Summon != nil:
		return &cmd.Summon.CommandMeta
	}
	return nil
}

func (s *service) apply(ctx context.Context, battleID string, cmd engine.Command) (*Result, error) {
	b, err := s.GetBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}
	return s.applyTo(ctx, b, cmd)
}

func (s *service) applyTo(ctx context.Context, b *engine.Battle, cmd engine.Command) (*Result, error) {
	m := meta(cmd)
	if m == nil {
		return nil, dnderr.InvalidArgument("command is empty")
	}
	if m.At.IsZero() {
		m.At = s.now()
	}

	var spells engine.SpellBook
	if cmd.Spell != nil {
		book, err := s.spellBook(ctx, []string{cmd.Spell.SpellID})
		if err != nil {
			return nil, err
		}
		spells = book
	}

	next, action, err := s.engine.Apply(b, cmd, spells)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to resolve action")
	}
	if action.Rejected {
		s.emit(events.NewActionResolved(action))
		return &Result{Battle: b, Action: action}, nil
	}

	if err := s.repository.Update(ctx, next); err != nil {
		return nil, dnderr.Wrap(err, "failed to save battle")
	}

	s.emit(events.NewActionResolved(action))
	if b.Status == engine.BattleStatusActive && next.Status != engine.BattleStatusActive {
		s.emit(events.NewBattleCompleted(next))
	}
	return &Result{Battle: next, Action: action}, nil
}

// Rollback rebuilds the battle as it stood before actionIndex
func (s *service) Rollback(ctx context.Context, battleID string, actionIndex int) (*engine.Battle, error) {
	b, err := s.GetBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}

	spells, err := s.spellBook(ctx, spellIDs(b))
	if err != nil {
		return nil, err
	}

	rolled, err := s.engine.RollbackTo(b, actionIndex, spells)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to roll back battle '%s'", battleID)
	}

	if err := s.repository.Update(ctx, rolled); err != nil {
		return nil, dnderr.Wrap(err, "failed to save battle")
	}

	s.emit(events.NewBattleRolledBack(b, rolled, actionIndex, s.now()))
	return rolled, nil
}

// spellIDs lists every spell cast in the log
func spellIDs(b *engine.Battle) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, a := range b.Log {
		if cmd := a.Command.Spell; cmd != nil && !seen[cmd.SpellID] {
			seen[cmd.SpellID] = true
			ids = append(ids, cmd.SpellID)
		}
	}
	sort.Strings(ids)
	return ids
}

func (s *service) spellBook(ctx context.Context, ids []string) (*records.Library, error) {
	if len(ids) == 0 {
		return records.NewLibrary(), nil
	}
	lib, err := s.catalog.Load(ctx, &definitions.Query{SpellIDs: ids})
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to load spells")
	}
	return lib, nil
}

func (s *service) emit(e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(e); err != nil {
		log.Printf("WARN: failed to publish %s for battle %s: %v", e.GetType(), e.GetBattleID(), err)
	}
}
