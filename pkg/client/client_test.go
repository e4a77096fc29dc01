package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload := map[string]interface{}{
		"success": status < 400,
		"message": message,
	}
	if data != nil {
		payload["data"] = data
	}
	if status >= 400 {
		payload["error"] = message
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func TestLoginStoresCredentials(t *testing.T) {
	token := testToken(t, []string{"MARKETING"}, 60)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)
		writeEnvelope(w, http.StatusOK, "Login successful", map[string]interface{}{
			"user":        map[string]interface{}{"id": 1, "username": "rina", "roles": []string{"MARKETING"}},
			"accessToken": token,
			"redirect":    "/dashboard/review",
		})
	}))
	defer srv.Close()

	g := New(srv.URL+"/api/v1", nil)
	result, err := g.Login(context.Background(), "rina", "secret-pass")
	require.NoError(t, err)

	assert.Equal(t, "/dashboard/review", result.Redirect)
	assert.True(t, g.Session().IsAuthenticated())

	identity, ok := g.Session().Identity()
	require.True(t, ok)
	assert.Equal(t, "rina", identity.Username)
}

func TestLoginEmptyFieldsNeverHitNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the server")
	}))
	defer srv.Close()

	g := New(srv.URL, nil)
	_, err := g.Login(context.Background(), "", "x")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "usernameOrEmail", ve.Field)
}

func TestSuccessFalseOn200IsOperationError(t *testing.T) {
	// writeEnvelope derives success from the status; hand-roll a failed 200
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":false,"message":"Application was already processed"}`))
	}))
	defer srv.Close()

	store := NewMemoryStore()
	store.Save(testToken(t, []string{"MARKETING"}, 60), Identity{ID: 1, Username: "rina", Roles: []string{"MARKETING"}})

	g := New(srv.URL, store)
	_, err := g.Review(context.Background(), 42, "ok")

	var oe *OperationError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, http.StatusOK, oe.StatusCode)
	assert.Equal(t, "Application was already processed", oe.Message)

	// A business failure is not an auth failure
	assert.True(t, g.Session().IsAuthenticated())
}

func TestUnauthorizedForcesLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, "Access token expired", nil)
	}))
	defer srv.Close()

	store := NewMemoryStore()
	store.Save(testToken(t, []string{"CUSTOMER"}, 60), Identity{ID: 1, Username: "rina", Roles: []string{"CUSTOMER"}})

	g := New(srv.URL, store)
	require.True(t, g.Session().IsAuthenticated())

	_, err := g.MyApplications(context.Background())
	var ae *AuthenticationError
	require.ErrorAs(t, err, &ae)

	// The dead credential is gone; the session reads as logged out
	assert.False(t, g.Session().IsAuthenticated())
	_, hasToken := store.Token()
	assert.False(t, hasToken)
}

func TestForbiddenCarriesRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusForbidden, "You don't have permission to access this resource",
			map[string]string{"redirect": "/dashboard/history"})
	}))
	defer srv.Close()

	store := NewMemoryStore()
	store.Save(testToken(t, []string{"CUSTOMER"}, 60), Identity{ID: 1, Username: "rina", Roles: []string{"CUSTOMER"}})

	g := New(srv.URL, store)
	_, err := g.PendingReview(context.Background())

	var authz *AuthorizationError
	require.ErrorAs(t, err, &authz)
	assert.Equal(t, "/dashboard/history", authz.Redirect)

	// A 403 does not kill the session
	assert.True(t, g.Session().IsAuthenticated())
}

func TestReviewApproveDisburseFlow(t *testing.T) {
	appState := "PENDING_REVIEW"
	var approvedLimit float64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/marketing/plafond-applications/review":
			var body struct {
				ApplicationID uint `json:"applicationId"`
				Approved      bool `json:"approved"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			require.Equal(t, uint(42), body.ApplicationID)
			require.True(t, body.Approved)
			appState = "WAITING_APPROVAL"
			writeEnvelope(w, http.StatusOK, "Application forwarded for approval",
				map[string]interface{}{"id": 42, "status": appState})

		case "/branch-manager/plafond-applications/approve":
			var body struct {
				ApplicationID uint    `json:"applicationId"`
				Approved      bool    `json:"approved"`
				ApprovedLimit float64 `json:"approvedLimit"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			require.Equal(t, uint(42), body.ApplicationID)
			require.True(t, body.Approved)
			appState = "APPROVED"
			approvedLimit = body.ApprovedLimit
			writeEnvelope(w, http.StatusOK, "Application approved", map[string]interface{}{
				"id": 42, "status": appState,
				"approvedLimit": approvedLimit, "availableLimit": approvedLimit,
			})

		case "/customer/disbursements":
			var body DisbursementRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Amount > approvedLimit {
				writeEnvelope(w, http.StatusUnprocessableEntity, "Amount exceeds the remaining limit", nil)
				return
			}
			writeEnvelope(w, http.StatusCreated, "Disbursement requested", map[string]interface{}{
				"id": 7, "userPlafondId": 42, "amount": body.Amount, "status": "PENDING",
				"remainingLimit": approvedLimit - body.Amount,
			})

		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	store := NewMemoryStore()
	store.Save(testToken(t, []string{"MARKETING", "BRANCH_MANAGER", "CUSTOMER"}, 60),
		Identity{ID: 1, Username: "ops", Roles: []string{"MARKETING", "BRANCH_MANAGER", "CUSTOMER"}})
	g := New(srv.URL, store)
	ctx := context.Background()

	reviewed, err := g.Review(ctx, 42, "documents ok")
	require.NoError(t, err)
	assert.Equal(t, "WAITING_APPROVAL", reviewed.Status)

	approved, err := g.Approve(ctx, 42, 10_000_000, 25_000_000, "")
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", approved.Status)

	// Oversized request is a business rejection, not an auth problem
	_, err = g.RequestDisbursement(ctx, &DisbursementRequest{
		UserPlafondID: 42, Amount: 12_000_000, TenorMonth: 12,
	})
	var oe *OperationError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, http.StatusUnprocessableEntity, oe.StatusCode)
	assert.True(t, g.Session().IsAuthenticated())

	disb, err := g.RequestDisbursement(ctx, &DisbursementRequest{
		UserPlafondID: 42, Amount: 4_000_000, TenorMonth: 12,
	})
	require.NoError(t, err)
	assert.InDelta(t, 6_000_000, disb.RemainingLimit, 0.01)
}

func TestApproveClientSideBounds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the server")
	}))
	defer srv.Close()

	g := New(srv.URL, NewMemoryStore())
	ctx := context.Background()

	_, err := g.Approve(ctx, 42, 0, 25_000_000, "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = g.Approve(ctx, 42, 30_000_000, 25_000_000, "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "approvedLimit", ve.Field)
}

func TestCancelRequiresReasonLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the server")
	}))
	defer srv.Close()

	g := New(srv.URL, NewMemoryStore())
	_, err := g.CancelDisbursement(context.Background(), 7, "   ")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "reason", ve.Field)
}

func TestBearerHeaderSent(t *testing.T) {
	token := testToken(t, []string{"CUSTOMER"}, 60)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "ok", []Application{})
	}))
	defer srv.Close()

	store := NewMemoryStore()
	store.Save(token, Identity{ID: 1, Username: "rina", Roles: []string{"CUSTOMER"}})

	g := New(srv.URL, store)
	_, err := g.MyApplications(context.Background())
	require.NoError(t, err)
}
