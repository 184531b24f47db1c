package customerdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/middleware"
	"github.com/go-petr/bank-backoffice/internal/test"
	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
	"github.com/go-petr/bank-backoffice/pkg/randompkg"
	"github.com/go-petr/bank-backoffice/pkg/tokenpkg"
	"github.com/go-petr/bank-backoffice/pkg/web"
)

type eqSessionParamsMatcher struct {
	subject int64
	role    string
}

func (e eqSessionParamsMatcher) Matches(x interface{}) bool {
	arg, ok := x.(domain.CreateSessionParams)
	return ok && arg.Subject == e.subject && arg.Role == e.role
}

func (e eqSessionParamsMatcher) String() string {
	return "is session params for the customer"
}

func newServer(t *testing.T, service Service, sessionMaker SessionMaker) (*gin.Engine, tokenpkg.Maker) {
	t.Helper()

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	h := NewHandler(service, sessionMaker)

	server := gin.New()
	server.POST("/customers/register", h.Register)
	server.POST("/customers/login", h.Login)
	server.GET("/customers/me", middleware.AuthMiddleware(tokenMaker), middleware.RequireRole(tokenpkg.RoleCustomer), h.Me)

	return server, tokenMaker
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder, data any) web.Response {
	t.Helper()

	res := web.Response{Data: data}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))

	return res
}

var compareTime = cmpopts.EquateApproxTime(time.Second)

func TestRegister(t *testing.T) {
	customer := test.RandomCustomer()
	password := randompkg.String(10)

	validBody := gin.H{
		"first_name":   customer.FirstName,
		"last_name":    customer.LastName,
		"email":        customer.Email,
		"phone_number": customer.PhoneNumber,
		"password":     password,
	}

	arg := domain.CreateCustomerParams{
		FirstName:   customer.FirstName,
		LastName:    customer.LastName,
		Email:       customer.Email,
		PhoneNumber: customer.PhoneNumber,
	}

	testCases := []struct {
		name           string
		body           gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantErrorCode  string
	}{
		{
			name: "OK",
			body: validBody,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Register(gomock.Any(), gomock.Eq(arg), gomock.Eq(password)).
					Times(1).
					Return(customer, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "InvalidEmail",
			body: gin.H{
				"first_name":   customer.FirstName,
				"last_name":    customer.LastName,
				"email":        "not-an-email",
				"phone_number": customer.PhoneNumber,
				"password":     password,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantErrorCode:  "invalid_input",
		},
		{
			name: "ShortPassword",
			body: gin.H{
				"first_name":   customer.FirstName,
				"last_name":    customer.LastName,
				"email":        customer.Email,
				"phone_number": customer.PhoneNumber,
				"password":     "123",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantErrorCode:  "invalid_input",
		},
		{
			name: "EmailAlreadyExists",
			body: validBody,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Register(gomock.Any(), gomock.Eq(arg), gomock.Eq(password)).
					Times(1).
					Return(domain.Customer{}, domain.ErrEmailAlreadyExists)
			},
			wantStatusCode: http.StatusConflict,
			wantErrorCode:  domain.ErrEmailAlreadyExists.Code,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server, _ := newServer(t, service, NewMockSessionMaker(ctrl))

			body, err := json.Marshal(tc.body)
			require.NoError(t, err)

			request := httptest.NewRequest(http.MethodPost, "/customers/register", bytes.NewReader(body))
			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			got := customerData{}
			res := decode(t, recorder, &got)

			if tc.wantErrorCode != "" {
				require.NotNil(t, res.Error)
				require.Equal(t, tc.wantErrorCode, res.Error.Code)

				return
			}

			if diff := cmp.Diff(customer, got.Customer, compareTime); diff != "" {
				t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	customer := test.RandomCustomer()
	password := randompkg.String(10)

	accessToken := randompkg.String(40)
	accessTokenExpiresAt := time.Now().Add(time.Minute).UTC()
	session := domain.Session{
		ID:           uuid.New(),
		Subject:      customer.ID,
		Role:         tokenpkg.RoleCustomer,
		RefreshToken: randompkg.String(40),
		ExpiresAt:    time.Now().Add(time.Hour).UTC(),
	}

	jsonBody := func() (string, string) {
		b, _ := json.Marshal(gin.H{"email": customer.Email, "password": password})
		return string(b), "application/json"
	}

	formBody := func() (string, string) {
		v := url.Values{}
		v.Set("username", customer.Email)
		v.Set("password", password)

		return v.Encode(), "application/x-www-form-urlencoded"
	}

	okSession := func(sm *MockSessionMaker) {
		sm.EXPECT().
			Create(gomock.Any(), eqSessionParamsMatcher{customer.ID, tokenpkg.RoleCustomer}).
			Times(1).
			Return(accessToken, accessTokenExpiresAt, session, nil)
	}

	testCases := []struct {
		name           string
		body           func() (string, string)
		buildStubs     func(service *MockService, sm *MockSessionMaker)
		wantStatusCode int
		wantErrorCode  string
	}{
		{
			name: "OKJSON",
			body: jsonBody,
			buildStubs: func(service *MockService, sm *MockSessionMaker) {
				service.EXPECT().CheckPassword(gomock.Any(), gomock.Eq(customer.Email), gomock.Eq(password)).Times(1).Return(customer, nil)
				okSession(sm)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "OKForm",
			body: formBody,
			buildStubs: func(service *MockService, sm *MockSessionMaker) {
				service.EXPECT().CheckPassword(gomock.Any(), gomock.Eq(customer.Email), gomock.Eq(password)).Times(1).Return(customer, nil)
				okSession(sm)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "MissingPassword",
			body: func() (string, string) {
				return `{"email":"` + customer.Email + `"}`, "application/json"
			},
			buildStubs: func(service *MockService, sm *MockSessionMaker) {
				service.EXPECT().CheckPassword(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				sm.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantErrorCode:  "invalid_input",
		},
		{
			name: "WrongCredentials",
			body: jsonBody,
			buildStubs: func(service *MockService, sm *MockSessionMaker) {
				service.EXPECT().
					CheckPassword(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Customer{}, domain.ErrWrongCredentials)
				sm.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantErrorCode:  domain.ErrWrongCredentials.Code,
		},
		{
			name: "CustomerInactive",
			body: jsonBody,
			buildStubs: func(service *MockService, sm *MockSessionMaker) {
				service.EXPECT().
					CheckPassword(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Customer{}, domain.ErrCustomerInactive)
				sm.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusForbidden,
			wantErrorCode:  domain.ErrCustomerInactive.Code,
		},
		{
			name: "SessionError",
			body: jsonBody,
			buildStubs: func(service *MockService, sm *MockSessionMaker) {
				service.EXPECT().CheckPassword(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(customer, nil)
				sm.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return("", time.Time{}, domain.Session{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantErrorCode:  errorspkg.ErrInternal.Code,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			service := NewMockService(ctrl)
			sm := NewMockSessionMaker(ctrl)
			tc.buildStubs(service, sm)

			server, _ := newServer(t, service, sm)

			body, contentType := tc.body()
			request := httptest.NewRequest(http.MethodPost, "/customers/login", strings.NewReader(body))
			request.Header.Set("Content-Type", contentType)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			got := customerData{}
			res := decode(t, recorder, &got)

			if tc.wantErrorCode != "" {
				require.NotNil(t, res.Error)
				require.Equal(t, tc.wantErrorCode, res.Error.Code)

				return
			}

			require.Equal(t, accessToken, res.AccessToken)
			require.Equal(t, session.RefreshToken, res.RefreshToken)
			require.Equal(t, "bearer", res.TokenType)
			require.NotNil(t, res.AccessTokenExpiresAt)
			require.WithinDuration(t, accessTokenExpiresAt, *res.AccessTokenExpiresAt, time.Second)
			require.NotNil(t, res.RefreshTokenExpiresAt)
			require.WithinDuration(t, session.ExpiresAt, *res.RefreshTokenExpiresAt, time.Second)
			require.Equal(t, customer.ID, got.Customer.ID)
		})
	}
}

func TestMe(t *testing.T) {
	customer := test.RandomCustomer()

	testCases := []struct {
		name           string
		setupAuth      func(r *http.Request, tokenMaker tokenpkg.Maker) error
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "OK",
			setupAuth: func(r *http.Request, tokenMaker tokenpkg.Maker) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, customer.ID, tokenpkg.RoleCustomer, time.Minute)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Eq(customer.ID)).Times(1).Return(customer, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "NoAuthorization",
			setupAuth: func(r *http.Request, tokenMaker tokenpkg.Maker) error {
				return nil
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "AdminToken",
			setupAuth: func(r *http.Request, tokenMaker tokenpkg.Maker) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, customer.ID, tokenpkg.RoleAdmin, time.Minute)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name: "Deleted",
			setupAuth: func(r *http.Request, tokenMaker tokenpkg.Maker) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, customer.ID, tokenpkg.RoleCustomer, time.Minute)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Eq(customer.ID)).Times(1).Return(domain.Customer{}, domain.ErrCustomerNotFound)
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server, tokenMaker := newServer(t, service, NewMockSessionMaker(ctrl))

			request := httptest.NewRequest(http.MethodGet, "/customers/me", nil)
			require.NoError(t, tc.setupAuth(request, tokenMaker))

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			if tc.wantStatusCode != http.StatusOK {
				return
			}

			got := customerData{}
			decode(t, recorder, &got)

			if diff := cmp.Diff(customer, got.Customer, compareTime); diff != "" {
				t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
