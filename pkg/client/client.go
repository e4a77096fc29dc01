package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Gateway is the typed API client. Every backend operation has one method.
// A 401 on any call clears the credential store before the error surfaces,
// so the session is already logged out when the caller sees it.
type Gateway struct {
	baseURL string
	http    *http.Client
	store   CredentialStore
	session *Session
}

// New creates a gateway against the given base URL, e.g.
// "https://api.plafondhub.id/api/v1".
func New(baseURL string, store CredentialStore) *Gateway {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
		session: NewSession(store),
	}
}

// Session returns the session view over this gateway's credentials
func (g *Gateway) Session() *Session {
	return g.session
}

// Policy returns a routing policy over this gateway's session
func (g *Gateway) Policy() *Policy {
	return NewPolicy(g.session)
}

// ============================================================
// Auth
// ============================================================

// Login authenticates and saves the token and identity atomically
func (g *Gateway) Login(ctx context.Context, usernameOrEmail, password string) (*LoginResult, error) {
	if usernameOrEmail == "" {
		return nil, &ValidationError{Field: "usernameOrEmail", Message: "username or email is required"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Message: "password is required"}
	}

	var result LoginResult
	err := g.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"usernameOrEmail": usernameOrEmail,
		"password":        password,
	}, &result)
	if err != nil {
		return nil, err
	}

	g.store.Save(result.AccessToken, result.User)
	return &result, nil
}

// Logout drops the local session. No server call is needed; the token simply
// stops being presented.
func (g *Gateway) Logout() {
	g.session.Logout()
}

// ForgotPassword requests a reset link for the email
func (g *Gateway) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	return g.do(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

// ValidateResetToken checks a reset token before showing the reset form
func (g *Gateway) ValidateResetToken(ctx context.Context, token string) error {
	if token == "" {
		return &ValidationError{Field: "token", Message: "token is required"}
	}
	return g.do(ctx, http.MethodGet, "/auth/validate-token?token="+url.QueryEscape(token), nil, nil)
}

// ResetPassword consumes a reset token
func (g *Gateway) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return &ValidationError{Field: "token", Message: "token is required"}
	}
	if len(newPassword) < 8 {
		return &ValidationError{Field: "newPassword", Message: "password must be at least 8 characters"}
	}
	return g.do(ctx, http.MethodPost, "/auth/reset-password", map[string]string{
		"token": token, "newPassword": newPassword,
	}, nil)
}

// ============================================================
// Catalog
// ============================================================

// PublicPlafonds lists the active product catalog
func (g *Gateway) PublicPlafonds(ctx context.Context) ([]Plafond, error) {
	var plafonds []Plafond
	if err := g.do(ctx, http.MethodGet, "/public/plafonds", nil, &plafonds); err != nil {
		return nil, err
	}
	return plafonds, nil
}

// ============================================================
// Customer
// ============================================================

// Apply submits a plafond application
func (g *Gateway) Apply(ctx context.Context, req *ApplyRequest) (*Application, error) {
	if req.PlafondID == 0 {
		return nil, &ValidationError{Field: "plafondId", Message: "plafond is required"}
	}
	if len(req.NIK) != 16 {
		return nil, &ValidationError{Field: "nik", Message: "NIK must be exactly 16 digits"}
	}
	if req.MonthlyIncome <= 0 {
		return nil, &ValidationError{Field: "monthlyIncome", Message: "monthly income must be positive"}
	}

	var app Application
	if err := g.do(ctx, http.MethodPost, "/customer/plafond-applications", req, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// MyApplications lists the caller's applications
func (g *Gateway) MyApplications(ctx context.Context) ([]Application, error) {
	var apps []Application
	if err := g.do(ctx, http.MethodGet, "/customer/plafond-applications/my", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// RequestDisbursement submits a fund-release request
func (g *Gateway) RequestDisbursement(ctx context.Context, req *DisbursementRequest) (*Disbursement, error) {
	if req.UserPlafondID == 0 {
		return nil, &ValidationError{Field: "userPlafondId", Message: "application is required"}
	}
	if req.Amount <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	if req.TenorMonth <= 0 {
		return nil, &ValidationError{Field: "tenorMonth", Message: "tenor is required"}
	}

	var disb Disbursement
	if err := g.do(ctx, http.MethodPost, "/customer/disbursements", req, &disb); err != nil {
		return nil, err
	}
	return &disb, nil
}

// MyDisbursements lists the caller's disbursements
func (g *Gateway) MyDisbursements(ctx context.Context) ([]Disbursement, error) {
	var list []Disbursement
	if err := g.do(ctx, http.MethodGet, "/customer/disbursements/my", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ============================================================
// Marketing review desk
// ============================================================

// PendingReview lists applications waiting for review
func (g *Gateway) PendingReview(ctx context.Context) ([]Application, error) {
	var apps []Application
	if err := g.do(ctx, http.MethodGet, "/marketing/plafond-applications/pending", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// Review forwards an application to the approval desk
func (g *Gateway) Review(ctx context.Context, id uint, note string) (*Application, error) {
	var app Application
	body := map[string]interface{}{"applicationId": id, "approved": true, "note": note}
	if err := g.do(ctx, http.MethodPost, "/marketing/plafond-applications/review", body, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// RejectReview declines an application at the review stage. The note is
// optional; the cancel reason is the only mandatory free-text field.
func (g *Gateway) RejectReview(ctx context.Context, id uint, note string) (*Application, error) {
	var app Application
	body := map[string]interface{}{"applicationId": id, "approved": false, "note": note}
	if err := g.do(ctx, http.MethodPost, "/marketing/plafond-applications/review", body, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// ============================================================
// Branch manager approval desk
// ============================================================

// WaitingApproval lists applications waiting for approval
func (g *Gateway) WaitingApproval(ctx context.Context) ([]Application, error) {
	var apps []Application
	if err := g.do(ctx, http.MethodGet, "/branch-manager/plafond-applications/pending", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// Approve grants a limit. The limit must be positive and, when maxAmount is
// known, within the plafond ceiling; both are checked before the network call.
func (g *Gateway) Approve(ctx context.Context, id uint, limit float64, maxAmount float64, note string) (*Application, error) {
	if limit <= 0 {
		return nil, &ValidationError{Field: "approvedLimit", Message: "approved limit must be positive"}
	}
	if maxAmount > 0 && limit > maxAmount {
		return nil, &ValidationError{Field: "approvedLimit", Message: "approved limit exceeds the plafond maximum"}
	}

	var app Application
	body := map[string]interface{}{"applicationId": id, "approved": true, "approvedLimit": limit, "note": note}
	if err := g.do(ctx, http.MethodPost, "/branch-manager/plafond-applications/approve", body, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// RejectApproval declines an application at the approval stage
func (g *Gateway) RejectApproval(ctx context.Context, id uint, note string) (*Application, error) {
	var app Application
	body := map[string]interface{}{"applicationId": id, "approved": false, "note": note}
	if err := g.do(ctx, http.MethodPost, "/branch-manager/plafond-applications/approve", body, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// ============================================================
// Back office disbursement desk
// ============================================================

// PendingDisbursements lists disbursements waiting for processing
func (g *Gateway) PendingDisbursements(ctx context.Context) ([]Disbursement, error) {
	var list []Disbursement
	if err := g.do(ctx, http.MethodGet, "/back-office/disbursements/pending", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ProcessDisbursement marks a pending disbursement as released
func (g *Gateway) ProcessDisbursement(ctx context.Context, id uint, note string) (*Disbursement, error) {
	var disb Disbursement
	path := fmt.Sprintf("/back-office/disbursements/%d/process", id)
	if note != "" {
		path += "?note=" + url.QueryEscape(note)
	}
	if err := g.do(ctx, http.MethodPost, path, nil, &disb); err != nil {
		return nil, err
	}
	return &disb, nil
}

// CancelDisbursement declines a pending disbursement. The reason is validated
// locally so an empty one never reaches the network.
func (g *Gateway) CancelDisbursement(ctx context.Context, id uint, reason string) (*Disbursement, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Field: "reason", Message: "a cancellation reason is required"}
	}
	var disb Disbursement
	path := fmt.Sprintf("/back-office/disbursements/%d/cancel?reason=%s", id, url.QueryEscape(reason))
	if err := g.do(ctx, http.MethodPost, path, nil, &disb); err != nil {
		return nil, err
	}
	return &disb, nil
}

// Disbursements lists all disbursements, the shared read every desk uses
func (g *Gateway) Disbursements(ctx context.Context) ([]Disbursement, error) {
	var list []Disbursement
	if err := g.do(ctx, http.MethodGet, "/disbursements", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ============================================================
// History
// ============================================================

// Histories lists recent transition log entries
func (g *Gateway) Histories(ctx context.Context, limit int) ([]HistoryEntry, error) {
	path := "/plafond-histories"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var entries []HistoryEntry
	if err := g.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ============================================================
// Transport
// ============================================================

// do performs one API call: request, envelope decode, error mapping. out may
// be nil when the caller only needs success or failure.
func (g *Gateway) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token, ok := g.store.Token(); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &OperationError{StatusCode: resp.StatusCode, Message: "malformed response"}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Forced logout: the credential is dead, drop it before reporting
		g.store.Clear()
		return &AuthenticationError{Message: envelopeMessage(&env)}

	case resp.StatusCode == http.StatusForbidden:
		var deny struct {
			Redirect string `json:"redirect"`
		}
		if len(env.Data) > 0 {
			_ = json.Unmarshal(env.Data, &deny)
		}
		return &AuthorizationError{Message: envelopeMessage(&env), Redirect: deny.Redirect}

	case resp.StatusCode >= 400:
		return &OperationError{StatusCode: resp.StatusCode, Message: envelopeMessage(&env)}
	}

	// A 2xx carrying success=false is still a failed operation
	if !env.Success {
		return &OperationError{StatusCode: resp.StatusCode, Message: envelopeMessage(&env)}
	}

	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func envelopeMessage(env *Envelope) string {
	if env.Message != "" {
		return env.Message
	}
	if env.Error != "" {
		return env.Error
	}
	return "request failed"
}
