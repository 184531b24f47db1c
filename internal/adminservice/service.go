// Package adminservice manages business logic layer of back-office admins.
package adminservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
	"github.com/go-petr/bank-backoffice/pkg/passpkg"
)

// Repo provides data access layer interface needed by admin service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package adminservice
type Repo interface {
	Create(ctx context.Context, username, hashedPassword string) (domain.Admin, error)
	Get(ctx context.Context, id int64) (domain.Admin, error)
	GetByUsername(ctx context.Context, username string) (domain.Admin, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (domain.Stats, error)
}

// Service facilitates admin service layer logic.
type Service struct {
	repo Repo
}

// New returns admin service struct to manage admin bussines logic.
func New(ar Repo) *Service {
	return &Service{
		repo: ar,
	}
}

// Create hashes the password and creates the admin.
func (s *Service) Create(ctx context.Context, username, password string) (domain.Admin, error) {
	l := zerolog.Ctx(ctx)

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Admin{}, errorspkg.ErrInternal
	}

	return s.repo.Create(ctx, username, hashedPassword)
}

// Bootstrap makes sure the admin with the given username exists.
//
// Running it again with the same username returns the existing admin and
// leaves its password untouched.
func (s *Service) Bootstrap(ctx context.Context, username, password string) (domain.Admin, error) {
	l := zerolog.Ctx(ctx)

	a, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return a, nil
	}

	if err != domain.ErrAdminNotFound {
		return domain.Admin{}, err
	}

	a, err = s.Create(ctx, username, password)
	if err == domain.ErrUsernameAlreadyExists {
		// Another instance created it in between.
		return s.repo.GetByUsername(ctx, username)
	}

	if err != nil {
		return domain.Admin{}, err
	}

	l.Info().Int64("admin_id", a.ID).Str("username", a.Username).Msg("bootstrap admin created")

	return a, nil
}

// CheckPassword returns the admin with the given username if the password matches.
func (s *Service) CheckPassword(ctx context.Context, username, pass string) (domain.Admin, error) {
	l := zerolog.Ctx(ctx)

	a, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrAdminNotFound {
			return domain.Admin{}, domain.ErrWrongCredentials
		}

		return domain.Admin{}, err
	}

	if err := passpkg.Check(pass, a.HashedPassword); err != nil {
		l.Warn().Err(err).Int64("admin_id", a.ID).Send()
		return domain.Admin{}, domain.ErrWrongCredentials
	}

	return a, nil
}

// Get returns the admin with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Admin, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes the admin with the given id. An admin cannot delete itself.
func (s *Service) Delete(ctx context.Context, callerID, id int64) error {
	if callerID == id {
		zerolog.Ctx(ctx).Info().Int64("admin_id", id).Msg("admin self delete rejected")
		return domain.ErrAdminSelfDelete
	}

	return s.repo.Delete(ctx, id)
}

// Stats returns aggregate figures over customers and accounts.
func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	return s.repo.Stats(ctx)
}
