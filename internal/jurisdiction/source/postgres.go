package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"notaryfix/internal/jurisdiction/models"
	"notaryfix/pkg/domain"
	"notaryfix/pkg/platform/sentinel"
)

const loadTimeout = 10 * time.Second

// Postgres reads the three dataset tables concurrently.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres source.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Load(ctx context.Context) (models.Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	var ds models.Dataset

	g.Go(func() error {
		rules, err := p.loadRules(ctx)
		ds.Rules = rules
		return err
	})
	g.Go(func() error {
		fees, err := p.loadFeeSchedules(ctx)
		ds.FeeSchedules = fees
		return err
	})
	g.Go(func() error {
		ids, err := p.loadIDRequirements(ctx)
		ds.IDRequirements = ids
		return err
	})

	if err := g.Wait(); err != nil {
		return models.Dataset{}, classify(err)
	}
	return ds, nil
}

func (p *Postgres) loadRules(ctx context.Context) ([]models.JurisdictionRule, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT state_code, status, thumbprint_required, max_fee_per_act::float8,
		       witness_requirements, special_act_caveats, notes,
		       ron_permitted, ron_statute, version, published_at, updated_at
		FROM state_rules
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query state_rules: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.JurisdictionRule, error) {
		var r models.JurisdictionRule
		var code, status string
		err := row.Scan(&code, &status, &r.ThumbprintRequired, &r.MaxFeePerAct,
			&r.WitnessRequirements, &r.SpecialActCaveats, &r.Notes,
			&r.RONPermitted, &r.RONStatute, &r.Version, &r.PublishedAt, &r.UpdatedAt)
		r.StateCode = domain.StateCode(code)
		r.Status = models.RuleStatus(status)
		return r, err
	})
}

func (p *Postgres) loadFeeSchedules(ctx context.Context) ([]models.FeeScheduleEntry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT state_code, act_type, max_fee::float8, effective_date, updated_at
		FROM fee_schedules
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query fee_schedules: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FeeScheduleEntry, error) {
		var e models.FeeScheduleEntry
		var code string
		err := row.Scan(&code, &e.ActType, &e.MaxFee, &e.EffectiveDate, &e.UpdatedAt)
		e.StateCode = domain.StateCode(code)
		return e, err
	})
}

func (p *Postgres) loadIDRequirements(ctx context.Context) ([]models.IDRequirement, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT state_code, accepted_id_types, expiration_required, credible_witness_allowed, updated_at
		FROM id_requirements
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query id_requirements: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.IDRequirement, error) {
		var r models.IDRequirement
		var code string
		err := row.Scan(&code, &r.AcceptedIDTypes, &r.ExpirationRequired, &r.CredibleWitnessAllowed, &r.UpdatedAt)
		r.StateCode = domain.StateCode(code)
		return r, err
	})
}

// Publish replaces the published dataset in one transaction. Readers see
// either the old tables or the new ones, never a mix.
func (p *Postgres) Publish(ctx context.Context, ds models.Dataset) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE state_rules, fee_schedules, id_requirements`); err != nil {
			return fmt.Errorf("clear dataset tables: %w", err)
		}

		_, err := tx.CopyFrom(ctx, pgx.Identifier{"state_rules"},
			[]string{"state_code", "status", "thumbprint_required", "max_fee_per_act",
				"witness_requirements", "special_act_caveats", "notes",
				"ron_permitted", "ron_statute", "version", "published_at", "updated_at"},
			pgx.CopyFromSlice(len(ds.Rules), func(i int) ([]any, error) {
				r := ds.Rules[i]
				return []any{r.StateCode.String(), string(r.Status), r.ThumbprintRequired, r.MaxFeePerAct,
					r.WitnessRequirements, r.SpecialActCaveats, r.Notes,
					r.RONPermitted, r.RONStatute, r.Version, r.PublishedAt, r.UpdatedAt}, nil
			}))
		if err != nil {
			return fmt.Errorf("copy state_rules: %w", err)
		}

		_, err = tx.CopyFrom(ctx, pgx.Identifier{"fee_schedules"},
			[]string{"state_code", "act_type", "max_fee", "effective_date", "updated_at"},
			pgx.CopyFromSlice(len(ds.FeeSchedules), func(i int) ([]any, error) {
				e := ds.FeeSchedules[i]
				return []any{e.StateCode.String(), e.ActType, e.MaxFee, e.EffectiveDate, e.UpdatedAt}, nil
			}))
		if err != nil {
			return fmt.Errorf("copy fee_schedules: %w", err)
		}

		_, err = tx.CopyFrom(ctx, pgx.Identifier{"id_requirements"},
			[]string{"state_code", "accepted_id_types", "expiration_required", "credible_witness_allowed", "updated_at"},
			pgx.CopyFromSlice(len(ds.IDRequirements), func(i int) ([]any, error) {
				r := ds.IDRequirements[i]
				ids := r.AcceptedIDTypes
				if ids == nil {
					ids = []string{}
				}
				return []any{r.StateCode.String(), ids, r.ExpirationRequired, r.CredibleWitnessAllowed, r.UpdatedAt}, nil
			}))
		if err != nil {
			return fmt.Errorf("copy id_requirements: %w", err)
		}
		return nil
	})
}

// classify marks connection-level failures as unavailable; query errors
// reported by the server pass through unchanged.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("load dataset from postgres: %w: %w", sentinel.ErrUnavailable, err)
}
