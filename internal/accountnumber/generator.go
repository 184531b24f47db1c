// Package accountnumber generates unique external account numbers.
package accountnumber

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/pkg/randompkg"
)

// DefaultMaxRetries caps the number of drawn candidates.
const DefaultMaxRetries = 10

// Repo checks whether a number is taken.
//
//go:generate mockgen -source generator.go -destination generator_mock.go -package accountnumber
type Repo interface {
	NumberExists(ctx context.Context, number string) (bool, error)
}

// Generator draws random 9-digit numbers until a free one is found.
type Generator struct {
	repo       Repo
	maxRetries int
	next       func() string
}

// New returns account number Generator.
func New(repo Repo) *Generator {
	return &Generator{
		repo:       repo,
		maxRetries: DefaultMaxRetries,
		next:       randompkg.AccountNumber,
	}
}

// Generate returns a 9-digit number that no account uses yet.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	l := zerolog.Ctx(ctx)

	for i := 0; i < g.maxRetries; i++ {
		number := g.next()

		exists, err := g.repo.NumberExists(ctx, number)
		if err != nil {
			return "", err
		}

		if !exists {
			return number, nil
		}

		l.Debug().Str("account_number", number).Msg("account number collision")
	}

	l.Error().Int("retries", g.maxRetries).Msg("account number generation exhausted")

	return "", domain.ErrExhaustedRetries
}
