// Package adminrepo manages repository layer of admins.
package adminrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/pkg/dbpkg"
	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
)

// RepoPGS facilitates admin repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns admin RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const createQuery = `
INSERT INTO admins (username, hashed_password)
VALUES ($1, $2)
RETURNING id, username, hashed_password, created_at
`

// Create creates the admin and then returns it.
func (r *RepoPGS) Create(ctx context.Context, username, hashedPassword string) (domain.Admin, error) {
	l := zerolog.Ctx(ctx)

	var a domain.Admin

	err := r.db.QueryRowContext(ctx, createQuery, username, hashedPassword).
		Scan(&a.ID, &a.Username, &a.HashedPassword, &a.CreatedAt)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "admins_username_key" {
			return a, domain.ErrUsernameAlreadyExists
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getQuery = `
SELECT id, username, hashed_password, created_at
FROM admins
WHERE id = $1
`

// Get returns the admin with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Admin, error) {
	return r.get(ctx, getQuery, id)
}

const getByUsernameQuery = `
SELECT id, username, hashed_password, created_at
FROM admins
WHERE username = $1
`

// GetByUsername returns the admin with the given username.
func (r *RepoPGS) GetByUsername(ctx context.Context, username string) (domain.Admin, error) {
	return r.get(ctx, getByUsernameQuery, username)
}

func (r *RepoPGS) get(ctx context.Context, query string, arg any) (domain.Admin, error) {
	l := zerolog.Ctx(ctx)

	var a domain.Admin

	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&a.ID, &a.Username, &a.HashedPassword, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrAdminNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const deleteQuery = `
DELETE FROM admins
WHERE id = $1
`

// Delete removes the admin with the given id.
func (r *RepoPGS) Delete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrAdminNotFound
	}

	return nil
}

const customersCountQuery = `SELECT count(*) FROM customers`

const accountsByStatusQuery = `
SELECT status, count(*), COALESCE(sum(balance), 0)
FROM accounts
GROUP BY status
`

// Stats returns aggregate figures over customers and accounts.
func (r *RepoPGS) Stats(ctx context.Context) (domain.Stats, error) {
	l := zerolog.Ctx(ctx)

	s := domain.Stats{
		AccountsByStatus: map[string]int64{},
		TotalBalance:     decimal.Zero,
	}

	if err := r.db.QueryRowContext(ctx, customersCountQuery).Scan(&s.Customers); err != nil {
		l.Error().Err(err).Send()
		return s, errorspkg.ErrInternal
	}

	rows, err := r.db.QueryContext(ctx, accountsByStatusQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return s, errorspkg.ErrInternal
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status  string
			count   int64
			balance decimal.Decimal
		)

		if err := rows.Scan(&status, &count, &balance); err != nil {
			l.Error().Err(err).Send()
			return s, errorspkg.ErrInternal
		}

		s.AccountsByStatus[status] = count
		s.Accounts += count
		s.TotalBalance = s.TotalBalance.Add(balance)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return s, errorspkg.ErrInternal
	}

	return s, nil
}
