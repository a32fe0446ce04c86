package server_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"freelance-backend/internal/config"
	"freelance-backend/internal/database/memory"
	"freelance-backend/internal/idempotency"
	"freelance-backend/internal/models"
	"freelance-backend/internal/server"
	"freelance-backend/internal/services"
)

const (
	jwtSecret     = "test-secret-key-for-jwt-signing-must-be-long-enough"
	webhookSecret = "whsec_router_test"
)

type fakeProcessor struct {
	calls int
}

func (p *fakeProcessor) CreateIntent(_ context.Context, req services.IntentRequest) (*services.IntentResult, error) {
	p.calls++
	return &services.IntentResult{
		IntentID:     "pi_router_1",
		ClientSecret: "pi_router_1_secret_" + req.Metadata["payment_id"],
	}, nil
}

type testServer struct {
	router    *gin.Engine
	store     *memory.Store
	processor *fakeProcessor
	tokens    map[string]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := zaptest.NewLogger(t)
	store := memory.New()
	proc := &fakeProcessor{}
	cfg := &config.Config{SupabaseJWTSecret: jwtSecret, StripeWebhookSecret: webhookSecret}

	ts := &testServer{store: store, processor: proc, tokens: map[string]string{}}
	ts.router = server.NewRouter(server.Deps{
		Config:      cfg,
		Logger:      log,
		DB:          store,
		Identity:    services.NewIdentityService(store, nil, log),
		Marketplace: services.NewMarketplaceService(store, log),
		Payments: services.NewPaymentService(store, proc,
			idempotency.NewIntentLock(rdb, 30*time.Second, log),
			services.PaymentConfig{Currency: "usd"}, log),
	})

	ts.addUser(t, "carol", models.RoleClient)
	ts.addUser(t, "frank", models.RoleFreelancer)
	ts.addUser(t, "fiona", models.RoleFreelancer)
	return ts
}

func (ts *testServer) addUser(t *testing.T, username string, role models.Role) {
	t.Helper()
	user := &models.User{ID: uuid.New(), Email: username + "@example.com", Username: username, Role: role}
	require.NoError(t, ts.store.CreateUser(context.Background(), user))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	ts.tokens[username] = signed
}

func (ts *testServer) do(t *testing.T, user, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+ts.tokens[user])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (ts *testServer) createProject(t *testing.T) string {
	t.Helper()
	w := ts.do(t, "carol", http.MethodPost, "/api/v1/projects", gin.H{
		"title":            "Build a landing page",
		"description":      "Responsive marketing site",
		"budget_range_max": "1000.00",
		"deadline":         "2030-06-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p models.ProjectResponse
	decode(t, w, &p)
	return p.ID
}

func (ts *testServer) placeBid(t *testing.T, user, projectID, amount string) string {
	t.Helper()
	w := ts.do(t, user, http.MethodPost, "/api/v1/projects/"+projectID+"/bids", gin.H{
		"amount":            amount,
		"proposed_deadline": "2030-05-01",
		"proposal_text":     "I can do this",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var b models.BidResponse
	decode(t, w, &b)
	return b.ID
}

func signWebhook(payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, "", http.MethodGet, "/health", nil)

	w := ts.do(t, "", http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestAPIRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "", http.MethodGet, "/api/v1/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnregisteredUserIsForbidden(t *testing.T) {
	ts := newTestServer(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	ts.tokens["stranger"] = signed

	w := ts.do(t, "stranger", http.MethodGet, "/api/v1/projects", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMarketplaceFlow(t *testing.T) {
	ts := newTestServer(t)
	projectID := ts.createProject(t)

	ts.placeBid(t, "frank", projectID, "800.00")
	cheapest := ts.placeBid(t, "fiona", projectID, "600.00")

	w := ts.do(t, "carol", http.MethodGet, "/api/v1/projects/"+projectID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p models.ProjectResponse
	decode(t, w, &p)
	require.NotNil(t, p.WinningBid)
	assert.Equal(t, cheapest, *p.WinningBid)
	require.NotNil(t, p.WinningBidDetails)
	assert.Equal(t, "fiona", p.WinningBidDetails.Freelancer)
	assert.Equal(t, 2, p.BidCount)

	w = ts.do(t, "frank", http.MethodGet, "/api/v1/projects/"+projectID+"/bids", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, "carol", http.MethodGet, "/api/v1/projects/"+projectID+"/bids", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bids models.BidListResponse
	decode(t, w, &bids)
	require.Len(t, bids.Bids, 2)
	assert.Equal(t, cheapest, bids.Bids[0].ID)

	w = ts.do(t, "carol", http.MethodPost, "/api/v1/projects/"+projectID+"/complete", gin.H{"rating": 5})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, "carol", http.MethodPost, "/api/v1/projects/"+projectID+"/accept-bid", gin.H{"bid_id": cheapest})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var accepted models.ProjectActionResponse
	decode(t, w, &accepted)
	assert.Equal(t, "Bid accepted successfully", accepted.Message)
	assert.Equal(t, models.ProjectStatusClosed, accepted.Project.Status)

	w = ts.do(t, "carol", http.MethodPost, "/api/v1/projects/"+projectID+"/accept-bid", gin.H{"bid_id": cheapest})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, "carol", http.MethodPost, "/api/v1/projects/"+projectID+"/complete", gin.H{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "carol", http.MethodPost, "/api/v1/projects/"+projectID+"/complete", gin.H{"rating": 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var completed models.ProjectActionResponse
	decode(t, w, &completed)
	assert.Equal(t, models.ProjectStatusCompleted, completed.Project.Status)
	require.NotNil(t, completed.Project.FreelancerRating)
	assert.Equal(t, 4, *completed.Project.FreelancerRating)

	w = ts.do(t, "fiona", http.MethodGet, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile models.ProfileResponse
	decode(t, w, &profile)
	assert.True(t, decimal.NewFromInt(4).Equal(profile.Rating), profile.Rating.String())
	assert.Equal(t, 1, profile.TotalProjects)
}

func TestStatusMapping(t *testing.T) {
	ts := newTestServer(t)
	projectID := ts.createProject(t)

	w := ts.do(t, "frank", http.MethodPost, "/api/v1/projects", gin.H{
		"title":            "Nope",
		"description":      "Freelancers cannot post",
		"budget_range_max": "10",
		"deadline":         "2030-01-01",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, "carol", http.MethodGet, "/api/v1/projects/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, "carol", http.MethodGet, "/api/v1/projects/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, "frank", http.MethodPost, "/api/v1/projects/"+projectID+"/bids", gin.H{
		"amount":            "5000",
		"proposed_deadline": "2030-05-01",
		"proposal_text":     "Too expensive",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var e models.ErrorResponse
	decode(t, w, &e)
	assert.Equal(t, "Bid amount cannot exceed project budget of 1000.00", e.Error)

	ts.placeBid(t, "frank", projectID, "500")
	w = ts.do(t, "frank", http.MethodPost, "/api/v1/projects/"+projectID+"/bids", gin.H{
		"amount":            "400",
		"proposed_deadline": "2030-05-01",
		"proposal_text":     "Again",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	decode(t, w, &e)
	assert.Equal(t, "You have already placed a bid on this project", e.Error)
}

func TestWithdrawBidRecomputesWinner(t *testing.T) {
	ts := newTestServer(t)
	projectID := ts.createProject(t)
	second := ts.placeBid(t, "frank", projectID, "700")
	cheapest := ts.placeBid(t, "fiona", projectID, "600")

	w := ts.do(t, "frank", http.MethodDelete, "/api/v1/bids/"+cheapest, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, "fiona", http.MethodDelete, "/api/v1/bids/"+cheapest, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, "carol", http.MethodGet, "/api/v1/projects/"+projectID, nil)
	var p models.ProjectResponse
	decode(t, w, &p)
	require.NotNil(t, p.WinningBid)
	assert.Equal(t, second, *p.WinningBid)
}

func TestPaymentFlow(t *testing.T) {
	ts := newTestServer(t)
	projectID := ts.createProject(t)
	bidID := ts.placeBid(t, "frank", projectID, "900")

	w := ts.do(t, "carol", http.MethodPost, "/api/v1/payments", gin.H{"project_id": projectID, "amount": "900"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, "carol", http.MethodPost, "/api/v1/projects/"+projectID+"/accept-bid", gin.H{"bid_id": bidID})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "carol", http.MethodPost, "/api/v1/payments", gin.H{"project_id": projectID, "amount": "900"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var payment models.PaymentResponse
	decode(t, w, &payment)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)

	w = ts.do(t, "carol", http.MethodPost, "/api/v1/payments/"+payment.ID+"/intent", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var intent models.PaymentIntentResponse
	decode(t, w, &intent)
	assert.Equal(t, "pi_router_1_secret_"+payment.ID, intent.ClientSecret)
	assert.Equal(t, 1, ts.processor.calls)

	payload := []byte(`{"id":"evt_1","object":"event","api_version":"2020-08-27","type":"payment_intent.succeeded","data":{"object":{"id":"pi_router_1","object":"payment_intent"}}}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signWebhook(payload))
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	w = ts.do(t, "carol", http.MethodGet, "/api/v1/payments/"+payment.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &payment)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)

	w = ts.do(t, "carol", http.MethodPost, "/api/v1/payments/"+payment.ID+"/intent", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, "frank", http.MethodGet, "/api/v1/payments/"+payment.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompleteProjectRatingBinding(t *testing.T) {
	ts := newTestServer(t)
	projectID := ts.createProject(t)
	bidID := ts.placeBid(t, "frank", projectID, "800")
	w := ts.do(t, "carol", http.MethodPost, "/api/v1/projects/"+projectID+"/accept-bid", gin.H{"bid_id": bidID})
	require.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name    string
		body    interface{}
		message string
	}{
		{"missing", gin.H{}, "Rating is required"},
		{"fractional", gin.H{"rating": 4.5}, "Rating must be an integer between 1 and 5."},
		{"string", gin.H{"rating": "4"}, "Rating must be an integer between 1 and 5."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, "carol", http.MethodPost, "/api/v1/projects/"+projectID+"/complete", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			var e models.ErrorResponse
			decode(t, w, &e)
			assert.Equal(t, tt.message, e.Error)
		})
	}
}

func TestSubCentBidRejected(t *testing.T) {
	ts := newTestServer(t)
	projectID := ts.createProject(t)

	w := ts.do(t, "frank", http.MethodPost, "/api/v1/projects/"+projectID+"/bids", gin.H{
		"amount":            "0.001",
		"proposed_deadline": "2030-05-01",
		"proposal_text":     "Cheap",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var e models.ErrorResponse
	decode(t, w, &e)
	assert.Equal(t, string(services.KindValidation), e.Code)
}
