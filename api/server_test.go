package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"raspadinha/models"
	"raspadinha/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockUserService is a mock implementation of service.UserService
type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) GetOrCreateUser(ctx context.Context, userID int64, username string) (*models.User, error) {
	args := m.Called(ctx, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) BalanceOf(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserService) Deposit(ctx context.Context, userID int64, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

// mockPlayService is a mock implementation of service.PlayService
type mockPlayService struct {
	mock.Mock
}

func (m *mockPlayService) Purchase(ctx context.Context, userID int64, categoryID string) (*models.PurchaseResult, error) {
	args := m.Called(ctx, userID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseResult), args.Error(1)
}

func (m *mockPlayService) Reveal(ctx context.Context, userID int64, playID uuid.UUID, scratchedBps int64, revealAll bool) (*service.RevealProgress, error) {
	args := m.Called(ctx, userID, playID, scratchedBps, revealAll)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RevealProgress), args.Error(1)
}

func (m *mockPlayService) Complete(ctx context.Context, userID int64, playID uuid.UUID, claimed *models.ClaimedOutcome) (*models.PlayResult, error) {
	args := m.Called(ctx, userID, playID, claimed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayResult), args.Error(1)
}

func (m *mockPlayService) Categories() []*models.Category {
	args := m.Called()
	return args.Get(0).([]*models.Category)
}

func newTestServer() (*mockUserService, *mockPlayService, http.Handler) {
	users := new(mockUserService)
	plays := new(mockPlayService)
	return users, plays, NewServer(users, plays).Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	_, _, handler := newTestServer()

	rec := doRequest(t, handler, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CreateUser(t *testing.T) {
	users, _, handler := newTestServer()

	users.On("GetOrCreateUser", mock.Anything, int64(123), "maria").
		Return(&models.User{ID: 123, Username: "maria", Balance: 1000}, nil)

	rec := doRequest(t, handler, http.MethodPost, "/v1/users", `{"user_id":123,"username":"maria"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(123), resp.UserID)
	assert.Equal(t, int64(1000), resp.Balance)
}

func TestServer_CreateUser_MissingFields(t *testing.T) {
	users, _, handler := newTestServer()

	rec := doRequest(t, handler, http.MethodPost, "/v1/users", `{"user_id":0}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertNotCalled(t, "GetOrCreateUser")
}

func TestServer_GetBalance(t *testing.T) {
	users, _, handler := newTestServer()

	users.On("BalanceOf", mock.Anything, int64(123)).Return(int64(950), nil)

	rec := doRequest(t, handler, http.MethodGet, "/v1/users/123/balance", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp balanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(950), resp.Balance)
}

func TestServer_GetBalance_UnknownUser(t *testing.T) {
	users, _, handler := newTestServer()

	users.On("BalanceOf", mock.Anything, int64(999)).Return(int64(0), models.ErrUnknownUser)

	rec := doRequest(t, handler, http.MethodGet, "/v1/users/999/balance", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Deposit(t *testing.T) {
	users, _, handler := newTestServer()

	users.On("Deposit", mock.Anything, int64(123), int64(500)).Return(int64(1450), nil)

	rec := doRequest(t, handler, http.MethodPost, "/v1/users/123/deposit", `{"amount":500}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp balanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1450), resp.Balance)
}

func TestServer_Deposit_NonPositiveAmount(t *testing.T) {
	users, _, handler := newTestServer()

	rec := doRequest(t, handler, http.MethodPost, "/v1/users/123/deposit", `{"amount":-5}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertNotCalled(t, "Deposit")
}

func TestServer_Purchase(t *testing.T) {
	_, plays, handler := newTestServer()

	playID := uuid.New()
	plays.On("Purchase", mock.Anything, int64(123), "centavos").
		Return(&models.PurchaseResult{PlayID: playID, Stake: 50, NewBalance: 950}, nil)

	rec := doRequest(t, handler, http.MethodPost, "/v1/plays", `{"user_id":123,"category_id":"centavos"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp purchaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, playID.String(), resp.PlayID)
	assert.Equal(t, int64(50), resp.Stake)
	assert.Equal(t, int64(950), resp.NewBalance)

	// The purchase response must never leak outcome data.
	assert.NotContains(t, rec.Body.String(), "is_win")
	assert.NotContains(t, rec.Body.String(), "grid")
}

func TestServer_Purchase_InsufficientFunds(t *testing.T) {
	_, plays, handler := newTestServer()

	plays.On("Purchase", mock.Anything, int64(123), "centavos").
		Return(nil, models.ErrInsufficientFunds)

	rec := doRequest(t, handler, http.MethodPost, "/v1/plays", `{"user_id":123,"category_id":"centavos"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_Purchase_UnknownCategory(t *testing.T) {
	_, plays, handler := newTestServer()

	plays.On("Purchase", mock.Anything, int64(123), "bogus").
		Return(nil, models.ErrUnknownCategory)

	rec := doRequest(t, handler, http.MethodPost, "/v1/plays", `{"user_id":123,"category_id":"bogus"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Reveal(t *testing.T) {
	_, plays, handler := newTestServer()

	playID := uuid.New()
	grid := []string{"coin", "coin", "coin", "star", "bell", "star", "bell", "lemon", "lemon"}
	plays.On("Reveal", mock.Anything, int64(123), playID, int64(6000), false).
		Return(&service.RevealProgress{PlayID: playID, CoverageBps: 6000, Revealed: true, Grid: grid}, nil)

	rec := doRequest(t, handler, http.MethodPost, "/v1/plays/"+playID.String()+"/reveal",
		`{"user_id":123,"scratched_bps":6000}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp revealResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Revealed)
	assert.Equal(t, grid, resp.Grid)
}

func TestServer_Reveal_InvalidPlayID(t *testing.T) {
	_, plays, handler := newTestServer()

	rec := doRequest(t, handler, http.MethodPost, "/v1/plays/not-a-uuid/reveal", `{"user_id":123}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	plays.AssertNotCalled(t, "Reveal")
}

func TestServer_Reveal_NotOwner(t *testing.T) {
	_, plays, handler := newTestServer()

	playID := uuid.New()
	plays.On("Reveal", mock.Anything, int64(999), playID, int64(100), false).
		Return(nil, models.ErrNotPlayOwner)

	rec := doRequest(t, handler, http.MethodPost, "/v1/plays/"+playID.String()+"/reveal",
		`{"user_id":999,"scratched_bps":100}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_Complete(t *testing.T) {
	_, plays, handler := newTestServer()

	playID := uuid.New()
	tierID := "c1"
	tierName := "R$ 0,50"
	plays.On("Complete", mock.Anything, int64(123), playID, mock.MatchedBy(func(c *models.ClaimedOutcome) bool {
		return c != nil && c.IsWin && c.TierID == "c1"
	})).Return(&models.PlayResult{
		PlayID:     playID,
		IsWin:      true,
		TierID:     &tierID,
		TierName:   &tierName,
		Prize:      50,
		Grid:       []string{"coin", "coin", "coin", "star", "bell", "star", "bell", "lemon", "lemon"},
		NewBalance: 1000,
	}, nil)

	rec := doRequest(t, handler, http.MethodPost, "/v1/plays/"+playID.String()+"/complete",
		`{"user_id":123,"claimed":{"is_win":true,"tier_id":"c1"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp completeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsWin)
	assert.Equal(t, int64(50), resp.Prize)
	assert.Equal(t, int64(1000), resp.NewBalance)
	assert.False(t, resp.AlreadySettled)
}

func TestServer_Complete_Repeat(t *testing.T) {
	_, plays, handler := newTestServer()

	playID := uuid.New()
	plays.On("Complete", mock.Anything, int64(123), playID, (*models.ClaimedOutcome)(nil)).
		Return(&models.PlayResult{
			PlayID:         playID,
			IsWin:          false,
			Grid:           []string{"coin", "star", "coin", "star", "bell", "star", "bell", "lemon", "lemon"},
			NewBalance:     950,
			AlreadySettled: true,
		}, nil)

	rec := doRequest(t, handler, http.MethodPost, "/v1/plays/"+playID.String()+"/complete",
		`{"user_id":123}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp completeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.AlreadySettled)
	assert.Equal(t, int64(950), resp.NewBalance)
}

func TestServer_Complete_UnknownPlay(t *testing.T) {
	_, plays, handler := newTestServer()

	playID := uuid.New()
	plays.On("Complete", mock.Anything, int64(123), playID, (*models.ClaimedOutcome)(nil)).
		Return(nil, models.ErrUnknownPlay)

	rec := doRequest(t, handler, http.MethodPost, "/v1/plays/"+playID.String()+"/complete",
		`{"user_id":123}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ListCategories_HidesOdds(t *testing.T) {
	_, plays, handler := newTestServer()

	plays.On("Categories").Return([]*models.Category{
		{
			ID:          "centavos",
			DisplayName: "Raspadinha dos Centavos",
			Stake:       50,
			RTPBps:      3000,
			Enabled:     true,
			Tiers: []models.PrizeTier{
				{ID: "c1", DisplayName: "R$ 0,50", Symbol: "coin", Value: 50, Weight: 90},
			},
		},
	})

	rec := doRequest(t, handler, http.MethodGet, "/v1/categories", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "centavos")
	// Win-rate targets and tier weights stay server-side.
	assert.NotContains(t, rec.Body.String(), "rtp")
	assert.NotContains(t, rec.Body.String(), "weight")
}
