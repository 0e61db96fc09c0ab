package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/ymakhloufi/bolan-calc/internal/pkg/model"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("no interest set found")

// DB is the part of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS interest_sets (
	bank            TEXT             NOT NULL,
	term            TEXT             NOT NULL,
	type            TEXT             NOT NULL,
	min_ratio       DOUBLE PRECISION NOT NULL DEFAULT 0,
	max_ratio       DOUBLE PRECISION NOT NULL DEFAULT 0,
	union_discount  BOOLEAN          NOT NULL DEFAULT FALSE,
	nominal_rate    DOUBLE PRECISION NOT NULL,
	effective_rate  DOUBLE PRECISION NOT NULL,
	changed_on      DATE             NOT NULL,
	last_crawled_at TIMESTAMPTZ      NOT NULL,
	PRIMARY KEY (bank, term, type, min_ratio, max_ratio, union_discount)
)`

const upsertInterestSet = `
INSERT INTO interest_sets (bank, term, type, min_ratio, max_ratio, union_discount,
                           nominal_rate, effective_rate, changed_on, last_crawled_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (bank, term, type, min_ratio, max_ratio, union_discount) DO UPDATE SET
	nominal_rate    = EXCLUDED.nominal_rate,
	effective_rate  = EXCLUDED.effective_rate,
	changed_on      = EXCLUDED.changed_on,
	last_crawled_at = EXCLUDED.last_crawled_at`

// List rates win over discounted ones; among discounted rates the widest loan-to-value
// bracket is the one every borrower qualifies for.
const selectLatestInterestSet = `
SELECT bank, term, type, min_ratio, max_ratio, union_discount,
       nominal_rate, effective_rate, changed_on, last_crawled_at
FROM interest_sets
WHERE bank = $1 AND term = $2
ORDER BY (type = $3) DESC, union_discount ASC, max_ratio DESC, last_crawled_at DESC
LIMIT 1`

type Postgres struct {
	db     DB
	logger *zap.Logger
}

func NewPostgres(db DB, logger *zap.Logger) *Postgres {
	return &Postgres{db: db, logger: logger}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create interest_sets table: %w", err)
	}
	return nil
}

func (p *Postgres) UpsertInterestSet(ctx context.Context, set model.InterestSet) error {
	var minRatio, maxRatio float64
	if set.RatioDiscountBoundaries != nil {
		minRatio, maxRatio = set.RatioDiscountBoundaries.MinRatio, set.RatioDiscountBoundaries.MaxRatio
	}

	_, err := p.db.Exec(ctx, upsertInterestSet,
		string(set.Bank), string(set.Term), string(set.Type), minRatio, maxRatio, set.UnionDiscount,
		set.NominalRate, set.EffectiveRate, set.ChangedOn.In(time.UTC), set.LastCrawledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert interest set %s/%s: %w", set.Bank, set.Term, err)
	}
	p.logger.Debug("upserted interestSet", zap.String("bank", string(set.Bank)), zap.String("term", string(set.Term)))
	return nil
}

// LatestInterestSet returns the rate a new borrower of bank would get for term.
func (p *Postgres) LatestInterestSet(ctx context.Context, bank model.Bank, term model.Term) (model.InterestSet, error) {
	var (
		set                model.InterestSet
		bankStr, termStr   string
		typeStr            string
		minRatio, maxRatio float64
		changedOn          time.Time
	)
	err := p.db.QueryRow(ctx, selectLatestInterestSet, string(bank), string(term), string(model.TypeListRate)).Scan(
		&bankStr, &termStr, &typeStr, &minRatio, &maxRatio, &set.UnionDiscount,
		&set.NominalRate, &set.EffectiveRate, &changedOn, &set.LastCrawledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.InterestSet{}, fmt.Errorf("%w for %s/%s", ErrNotFound, bank, term)
	}
	if err != nil {
		return model.InterestSet{}, fmt.Errorf("failed to query interest set %s/%s: %w", bank, term, err)
	}

	set.Bank = model.Bank(bankStr)
	set.Term = model.Term(termStr)
	set.Type = model.Type(typeStr)
	set.ChangedOn = civil.DateOf(changedOn)
	if minRatio != 0 || maxRatio != 0 {
		set.RatioDiscountBoundaries = &model.RatioDiscountBoundary{MinRatio: minRatio, MaxRatio: maxRatio}
	}
	return set, nil
}
