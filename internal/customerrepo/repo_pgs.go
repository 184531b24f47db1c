// Package customerrepo manages repository layer of customers.
package customerrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/pkg/dbpkg"
	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
)

// RepoPGS facilitates customer repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns customer RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const customerColumns = `id, first_name, last_name, email, phone_number, hashed_password, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (domain.Customer, error) {
	var c domain.Customer

	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.PhoneNumber,
		&c.HashedPassword,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	return c, err
}

// CreateQuery inserts into customers table.
const CreateQuery = `
INSERT INTO customers (
    first_name,
    last_name,
    email,
    phone_number,
    hashed_password
) VALUES (
    $1, $2, $3, $4, $5
) RETURNING ` + customerColumns

// Create creates the customer and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateCustomerParams) (domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, CreateQuery,
		arg.FirstName,
		arg.LastName,
		arg.Email,
		arg.PhoneNumber,
		arg.HashedPassword,
	)

	c, err := scan(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "customers_email_key" {
				return c, domain.ErrEmailAlreadyExists
			}
		}

		return c, errorspkg.ErrInternal
	}

	return c, nil
}

const getQuery = `
SELECT ` + customerColumns + `
FROM customers
WHERE id = $1
`

// Get returns the customer with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Customer, error) {
	return r.get(ctx, getQuery, id)
}

const getByEmailQuery = `
SELECT ` + customerColumns + `
FROM customers
WHERE email = $1
`

// GetByEmail returns the customer with the given email.
func (r *RepoPGS) GetByEmail(ctx context.Context, email string) (domain.Customer, error) {
	return r.get(ctx, getByEmailQuery, email)
}

func (r *RepoPGS) get(ctx context.Context, query string, args ...any) (domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	c, err := scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return c, domain.ErrCustomerNotFound
		}

		l.Error().Err(err).Send()

		return c, errorspkg.ErrInternal
	}

	return c, nil
}

const searchQuery = `
SELECT ` + customerColumns + `
FROM customers
WHERE $1 = ''
   OR first_name ILIKE '%' || $1 || '%'
   OR last_name ILIKE '%' || $1 || '%'
   OR email ILIKE '%' || $1 || '%'
ORDER BY id
LIMIT $2 OFFSET $3
`

// Search returns customers whose name or email contains the query.
// An empty query matches every customer.
func (r *RepoPGS) Search(ctx context.Context, arg domain.SearchCustomersParams) ([]domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, searchQuery, arg.Query, arg.Limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Customer{}

	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, c)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const updateStatusQuery = `
UPDATE customers
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + customerColumns

// UpdateStatus changes the status of the customer.
func (r *RepoPGS) UpdateStatus(ctx context.Context, id int64, status string) (domain.Customer, error) {
	return r.get(ctx, updateStatusQuery, id, status)
}

const deleteQuery = `
DELETE FROM customers
WHERE id = $1
`

// Delete removes the customer with the given id. The customer must not own accounts.
func (r *RepoPGS) Delete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "accounts_customer_id_fkey" {
			l.Info().Err(err).Int64("customer_id", id).Msg("customer still has accounts")
			return domain.ErrCustomerHasAccounts
		}

		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrCustomerNotFound
	}

	return nil
}
