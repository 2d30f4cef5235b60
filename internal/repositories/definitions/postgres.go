package definitions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/records"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// PostgresCatalog stores records as JSON documents in the definitions table
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalog creates a catalog over an open pool
func NewPostgresCatalog(pool *pgxpool.Pool) *PostgresCatalog {
	if pool == nil {
		panic("postgres pool cannot be nil")
	}
	return &PostgresCatalog{pool: pool}
}

// OpenPostgres connects and pings the database
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

type row struct {
	id   string
	data []byte
}

func (c *PostgresCatalog) fetch(ctx context.Context, kind Kind, ids []string) ([]row, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT id, data FROM definitions WHERE kind = $1 AND id = ANY($2) ORDER BY id`,
		string(kind), ids,
	)
	if err != nil {
		return nil, fmt.Errorf("querying %s definitions: %w", kind, err)
	}
	defer rows.Close()

	var out []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.data); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", kind, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", kind, err)
	}
	return out, nil
}

func decodeInto[V any](kind Kind, rows []row, dst map[string]*V) error {
	for _, r := range rows {
		v := new(V)
		if err := json.Unmarshal(r.data, v); err != nil {
			return fmt.Errorf("decoding %s %s: %w", kind, r.id, err)
		}
		dst[r.id] = v
	}
	return nil
}

func decode(kind Kind, rows []row, lib *records.Library) error {
	switch kind {
	case KindCharacter:
		return decodeInto(kind, rows, lib.Characters)
	case KindUnit:
		return decodeInto(kind, rows, lib.Units)
	case KindSkill:
		return decodeInto(kind, rows, lib.Skills)
	case KindMainSkill:
		return decodeInto(kind, rows, lib.MainSkills)
	case KindSpell:
		return decodeInto(kind, rows, lib.Spells)
	case KindRace:
		return decodeInto(kind, rows, lib.Races)
	case KindArtifact:
		return decodeInto(kind, rows, lib.Artifacts)
	}
	return dnderr.InvalidArgumentf("unknown definition kind %q", kind)
}

// Load queries each requested kind concurrently
func (c *PostgresCatalog) Load(ctx context.Context, q *Query) (*records.Library, error) {
	if q == nil {
		return nil, dnderr.InvalidArgument("query is required")
	}

	results := make([][]row, len(Kinds))

	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range Kinds {
		i, kind := i, kind
		ids := q.IDs(kind)
		if len(ids) == 0 {
			continue
		}
		g.Go(func() error {
			rows, err := c.fetch(ctx, kind, ids)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lib := records.NewLibrary()
	for i, kind := range Kinds {
		if err := decode(kind, results[i], lib); err != nil {
			return nil, err
		}
	}
	if err := requireSources(q, lib); err != nil {
		return nil, err
	}
	return lib, nil
}

// ListUnits returns every unit ordered by id
func (c *PostgresCatalog) ListUnits(ctx context.Context) ([]*records.Unit, error) {
	rows, err := c.pool.Query(ctx, `SELECT id, data FROM definitions WHERE kind = $1 ORDER BY id`, string(KindUnit))
	if err != nil {
		return nil, fmt.Errorf("querying units: %w", err)
	}
	defer rows.Close()

	var units []*records.Unit
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.data); err != nil {
			return nil, fmt.Errorf("scanning unit row: %w", err)
		}
		var u records.Unit
		if err := json.Unmarshal(r.data, &u); err != nil {
			return nil, fmt.Errorf("decoding unit %s: %w", r.id, err)
		}
		units = append(units, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unit rows: %w", err)
	}
	return units, nil
}

func entries[V any](kind Kind, m map[string]*V, put func(Kind, string, any)) {
	for id, v := range m {
		put(kind, id, v)
	}
}

// Put upserts every record of lib in one transaction
func (c *PostgresCatalog) Put(ctx context.Context, lib *records.Library) error {
	if lib == nil {
		return dnderr.InvalidArgument("library is required")
	}

	type doc struct {
		kind Kind
		id   string
		v    any
	}
	var docs []doc
	put := func(kind Kind, id string, v any) { docs = append(docs, doc{kind, id, v}) }
	entries(KindCharacter, lib.Characters, put)
	entries(KindUnit, lib.Units, put)
	entries(KindSkill, lib.Skills, put)
	entries(KindMainSkill, lib.MainSkills, put)
	entries(KindSpell, lib.Spells, put)
	entries(KindRace, lib.Races, put)
	entries(KindArtifact, lib.Artifacts, put)

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		// fails after commit, which is fine
		_ = tx.Rollback(ctx)
	}()

	for _, d := range docs {
		data, err := json.Marshal(d.v)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", d.kind, d.id, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO definitions (kind, id, data) VALUES ($1, $2, $3)
			 ON CONFLICT (kind, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
			string(d.kind), d.id, data,
		); err != nil {
			return fmt.Errorf("upserting %s %s: %w", d.kind, d.id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing definitions: %w", err)
	}
	return nil
}
