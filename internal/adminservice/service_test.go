package adminservice

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/test"
	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
	"github.com/go-petr/bank-backoffice/pkg/passpkg"
	"github.com/go-petr/bank-backoffice/pkg/randompkg"
)

func randomAdmin(t *testing.T) (domain.Admin, string) {
	password := randompkg.String(10)

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		t.Fatalf("passpkg.Hash(%v) failed: %v", password, err)
	}

	a := test.RandomAdmin()
	a.HashedPassword = hashedPassword

	return a, password
}

// checkHashed returns a Create stub that verifies the password was hashed.
func checkHashed(t *testing.T, password string, ret domain.Admin, retErr error) func(context.Context, string, string) (domain.Admin, error) {
	return func(_ context.Context, username, hashedPassword string) (domain.Admin, error) {
		require.NotEqual(t, password, hashedPassword)
		require.NoError(t, passpkg.Check(password, hashedPassword))

		return ret, retErr
	}
}

func TestCreate(t *testing.T) {
	admin, password := randomAdmin(t)

	testCases := []struct {
		name       string
		buildStubs func(t *testing.T, repo *MockRepo)
		wantErr    error
	}{
		{
			name: "OK",
			buildStubs: func(t *testing.T, repo *MockRepo) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Eq(admin.Username), gomock.Any()).
					Times(1).
					DoAndReturn(checkHashed(t, password, admin, nil))
			},
		},
		{
			name: "ErrUsernameAlreadyExists",
			buildStubs: func(t *testing.T, repo *MockRepo) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Eq(admin.Username), gomock.Any()).
					Times(1).
					Return(domain.Admin{}, domain.ErrUsernameAlreadyExists)
			},
			wantErr: domain.ErrUsernameAlreadyExists,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			repo := NewMockRepo(ctrl)
			tc.buildStubs(t, repo)

			got, err := New(repo).Create(context.Background(), admin.Username, password)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)

			if diff := cmp.Diff(admin, got); diff != "" {
				t.Errorf("Create() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBootstrap(t *testing.T) {
	admin, password := randomAdmin(t)

	testCases := []struct {
		name       string
		buildStubs func(t *testing.T, repo *MockRepo)
		wantErr    error
	}{
		{
			name: "AlreadyExists",
			buildStubs: func(t *testing.T, repo *MockRepo) {
				repo.EXPECT().GetByUsername(gomock.Any(), gomock.Eq(admin.Username)).Times(1).Return(admin, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
		},
		{
			name: "Created",
			buildStubs: func(t *testing.T, repo *MockRepo) {
				gomock.InOrder(
					repo.EXPECT().GetByUsername(gomock.Any(), gomock.Eq(admin.Username)).Times(1).
						Return(domain.Admin{}, domain.ErrAdminNotFound),
					repo.EXPECT().Create(gomock.Any(), gomock.Eq(admin.Username), gomock.Any()).Times(1).
						DoAndReturn(checkHashed(t, password, admin, nil)),
				)
			},
		},
		{
			name: "CreatedConcurrently",
			buildStubs: func(t *testing.T, repo *MockRepo) {
				gomock.InOrder(
					repo.EXPECT().GetByUsername(gomock.Any(), gomock.Eq(admin.Username)).Times(1).
						Return(domain.Admin{}, domain.ErrAdminNotFound),
					repo.EXPECT().Create(gomock.Any(), gomock.Eq(admin.Username), gomock.Any()).Times(1).
						Return(domain.Admin{}, domain.ErrUsernameAlreadyExists),
					repo.EXPECT().GetByUsername(gomock.Any(), gomock.Eq(admin.Username)).Times(1).
						Return(admin, nil),
				)
			},
		},
		{
			name: "InternalError",
			buildStubs: func(t *testing.T, repo *MockRepo) {
				repo.EXPECT().GetByUsername(gomock.Any(), gomock.Any()).Times(1).Return(domain.Admin{}, errorspkg.ErrInternal)
				repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			repo := NewMockRepo(ctrl)
			tc.buildStubs(t, repo)

			got, err := New(repo).Bootstrap(context.Background(), admin.Username, password)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, admin.ID, got.ID)
		})
	}
}

func TestCheckPassword(t *testing.T) {
	admin, password := randomAdmin(t)

	testCases := []struct {
		name       string
		password   string
		buildStubs func(repo *MockRepo)
		wantErr    error
	}{
		{
			name:     "OK",
			password: password,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().GetByUsername(gomock.Any(), gomock.Eq(admin.Username)).Times(1).Return(admin, nil)
			},
		},
		{
			name:     "WrongPassword",
			password: password + "x",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().GetByUsername(gomock.Any(), gomock.Eq(admin.Username)).Times(1).Return(admin, nil)
			},
			wantErr: domain.ErrWrongCredentials,
		},
		{
			name:     "UnknownUsername",
			password: password,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().GetByUsername(gomock.Any(), gomock.Eq(admin.Username)).Times(1).Return(domain.Admin{}, domain.ErrAdminNotFound)
			},
			wantErr: domain.ErrWrongCredentials,
		},
		{
			name:     "InternalError",
			password: password,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().GetByUsername(gomock.Any(), gomock.Any()).Times(1).Return(domain.Admin{}, errorspkg.ErrInternal)
			},
			wantErr: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			got, err := New(repo).CheckPassword(context.Background(), admin.Username, tc.password)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Empty(t, got)

				return
			}

			require.NoError(t, err)
			require.Equal(t, admin.ID, got.ID)
		})
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	s := New(repo)

	callerID, id := randompkg.ID(), randompkg.ID()
	for id == callerID {
		id = randompkg.ID()
	}

	repo.EXPECT().Delete(gomock.Any(), gomock.Eq(id)).Times(1).Return(nil)
	require.NoError(t, s.Delete(context.Background(), callerID, id))

	repo.EXPECT().Delete(gomock.Any(), gomock.Eq(callerID)).Times(0)
	require.ErrorIs(t, s.Delete(context.Background(), callerID, callerID), domain.ErrAdminSelfDelete)
}

func TestStats(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)

	want := domain.Stats{
		Customers:        3,
		Accounts:         4,
		AccountsByStatus: map[string]int64{"active": 3, "frozen": 1},
		TotalBalance:     decimal.RequireFromString("150.25"),
	}

	repo.EXPECT().Stats(gomock.Any()).Times(1).Return(want, nil)

	got, err := New(repo).Stats(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}
}
