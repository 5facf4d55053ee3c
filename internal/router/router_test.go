package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/family-chores-api/internal/auth"
	"github.com/yukikurage/family-chores-api/internal/constants"
	"github.com/yukikurage/family-chores-api/internal/dto"
	apierrors "github.com/yukikurage/family-chores-api/internal/errors"
	"github.com/yukikurage/family-chores-api/internal/logging"
	"github.com/yukikurage/family-chores-api/internal/testutil"
)

type outbox struct {
	mu     sync.Mutex
	tokens []string
}

func (o *outbox) SendInviteEmail(_ context.Context, _, _, _, token string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tokens = append(o.tokens, token)
	return nil
}

func (o *outbox) SendPasswordResetEmail(_ context.Context, _, _, token string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tokens = append(o.tokens, token)
	return nil
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func setupRouter(t *testing.T) (*apiClient, *outbox) {
	gin.SetMode(gin.TestMode)
	mail := &outbox{}
	r := New(Dependencies{
		DB:                testutil.NewDB(t),
		SessionStore:      cookie.NewStore([]byte("secret")),
		Tokens:            auth.NewTokenService("test-secret", "family-chores-api", time.Hour),
		Mailer:            mail,
		Log:               logging.Discard(),
		Timezone:          time.UTC,
		AuthRatePerMinute: 100,
	})
	return &apiClient{t: t, router: r}, mail
}

// call sends a JSON request, authenticated with token when it is not empty
func (a *apiClient) call(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(constants.BearerTokenHeaderName, "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *apiClient) decode(w *httptest.ResponseRecorder, out interface{}) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (a *apiClient) register(familyName, name string) dto.RegisterResponse {
	a.t.Helper()
	w := a.call(http.MethodPost, "/api/auth/register", "", gin.H{
		"family_name": familyName,
		"name":        name,
		"password":    testutil.Password,
		"locale":      "en",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.RegisterResponse
	a.decode(w, &resp)
	return resp
}

func (a *apiClient) errorCode(w *httptest.ResponseRecorder) string {
	a.t.Helper()
	var body apierrors.APIError
	a.decode(w, &body)
	return body.Code
}

func TestHealthAndMetrics(t *testing.T) {
	api, _ := setupRouter(t)

	w := api.call(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
	assert.NotEmpty(t, w.Header().Get(constants.HeaderRequestID))

	w = api.call(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterLoginAndSession(t *testing.T) {
	api, _ := setupRouter(t)
	reg := api.register("Smith", "alice")

	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ADMIN", string(reg.User.Role))
	assert.NotEmpty(t, reg.Family.InviteCode)

	w := api.call(http.MethodPost, "/api/auth/login", "", gin.H{"name": "alice", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, api.errorCode(w))

	w = api.call(http.MethodPost, "/api/auth/login", "", gin.H{"name": "alice", "password": testutil.Password})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	me := httptest.NewRecorder()
	api.router.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	var user dto.UserDTO
	api.decode(me, &user)
	assert.Equal(t, "alice", user.Name)

	w = api.call(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFamilyChoreFlow(t *testing.T) {
	api, mail := setupRouter(t)
	reg := api.register("Smith", "alice")
	admin := reg.Token

	// Registration seeds the starter catalog.
	w := api.call(http.MethodGet, "/api/tasks", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var seeded []dto.CatalogItemDTO
	api.decode(w, &seeded)
	assert.NotEmpty(t, seeded)

	w = api.call(http.MethodPost, "/api/tasks", admin, gin.H{"title": "Dishes", "points": 20})
	require.Equal(t, http.StatusCreated, w.Code)
	var task dto.CatalogItemDTO
	api.decode(w, &task)

	w = api.call(http.MethodPost, "/api/gifts", admin, gin.H{"title": "Ice cream", "points": 15})
	require.Equal(t, http.StatusCreated, w.Code)
	var gift dto.CatalogItemDTO
	api.decode(w, &gift)

	// Invite a child and let them accept.
	w = api.call(http.MethodPost, "/api/family/members", admin, gin.H{"name": "bob", "role": "CHILD", "email": "bob@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var invite dto.InviteResponse
	api.decode(w, &invite)
	assert.True(t, invite.Member.MustChangePassword)
	require.Len(t, mail.tokens, 1)
	assert.Equal(t, invite.InviteToken, mail.tokens[0])

	w = api.call(http.MethodPost, "/api/auth/invite/accept", "", gin.H{"token": invite.InviteToken, "name": "bob", "new_password": "bobs-password"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session dto.SessionResponse
	api.decode(w, &session)
	child := session.Token

	// Complete the task once per day.
	w = api.call(http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", task.ID), child, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = api.call(http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", task.ID), child, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrCodeAlreadyCompletedToday, api.errorCode(w))

	// Spend points on a gift, then have it rejected.
	w = api.call(http.MethodPost, fmt.Sprintf("/api/gifts/%d/redeem", gift.ID), child, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var redemption dto.RedemptionDTO
	api.decode(w, &redemption)
	assert.Equal(t, 15, redemption.PointsSpent)

	w = api.call(http.MethodGet, "/api/auth/me", child, nil)
	var me dto.UserDTO
	api.decode(w, &me)
	assert.Equal(t, 5, me.Points)

	w = api.call(http.MethodPost, fmt.Sprintf("/api/gifts/%d/redeem", gift.ID), child, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrCodeInsufficientPoints, api.errorCode(w))

	w = api.call(http.MethodPut, fmt.Sprintf("/api/redemptions/%d/status", redemption.ID), child, gin.H{"status": "REJECTED"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.call(http.MethodPut, fmt.Sprintf("/api/redemptions/%d/status", redemption.ID), admin, gin.H{"status": "REJECTED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.call(http.MethodGet, "/api/auth/me", child, nil)
	api.decode(w, &me)
	assert.Equal(t, 20, me.Points)

	// Children cannot edit the catalog or redeem on behalf of the admin.
	w = api.call(http.MethodPost, "/api/tasks", child, gin.H{"title": "Candy", "points": 100})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.call(http.MethodPost, fmt.Sprintf("/api/gifts/%d/redeem", gift.ID), admin, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The admin sees the family ledger.
	w = api.call(http.MethodGet, "/api/completions", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var completions dto.CompletionListResponse
	api.decode(w, &completions)
	assert.Equal(t, int64(1), completions.TotalCount)

	w = api.call(http.MethodGet, "/api/stats?window=week", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.call(http.MethodGet, "/api/stats?window=year", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Another family cannot see or change this family's items.
	other := api.register("Jones", "carol").Token
	w = api.call(http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = api.call(http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), other, gin.H{"points": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.call(http.MethodPut, fmt.Sprintf("/api/completions/%d/status", completions.Completions[0].ID), other, gin.H{"status": "REJECTED"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.call(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	api, mail := setupRouter(t)
	w := api.call(http.MethodPost, "/api/auth/register", "", gin.H{
		"family_name": "Smith",
		"name":        "alice",
		"password":    testutil.Password,
		"email":       "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.call(http.MethodPost, "/api/auth/password/forgot", "", gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, mail.tokens)

	w = api.call(http.MethodPost, "/api/auth/password/forgot", "", gin.H{"email": "alice@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mail.tokens, 1)

	w = api.call(http.MethodPost, "/api/auth/password/reset", "", gin.H{"token": mail.tokens[0], "new_password": "new-password"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.call(http.MethodPost, "/api/auth/password/reset", "", gin.H{"token": mail.tokens[0], "new_password": "other-password"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.call(http.MethodPost, "/api/auth/login", "", gin.H{"name": "alice", "password": "new-password"})
	assert.Equal(t, http.StatusOK, w.Code)
}
