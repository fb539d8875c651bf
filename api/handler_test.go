package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charitychain/chaincode/model"
	"charitychain/config"
	"charitychain/ledger"
	"charitychain/status"
)

type fakeSession struct {
	payload     []byte
	err         error
	submitted   [][]string
	evaluated   [][]string
	closed      int
	sawDeadline bool
}

func (f *fakeSession) Submit(ctx context.Context, name string, args ...string) ([]byte, error) {
	_, f.sawDeadline = ctx.Deadline()
	f.submitted = append(f.submitted, append([]string{name}, args...))
	return f.payload, f.err
}

func (f *fakeSession) Evaluate(ctx context.Context, name string, args ...string) ([]byte, error) {
	_, f.sawDeadline = ctx.Deadline()
	f.evaluated = append(f.evaluated, append([]string{name}, args...))
	return f.payload, f.err
}

func (f *fakeSession) Close() { f.closed++ }

func newTestRouter(t *testing.T, session *fakeSession) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{UserLabel: "appUser", SubmitTimeout: 5 * time.Second}
	service := &Service{
		cfg: cfg,
		connect: func(label string) (CampaignSession, error) {
			assert.Equal(t, "appUser", label)
			return session, nil
		},
	}
	return NewRouter(service)
}

func campaignJSON(t *testing.T, c model.Campaign) []byte {
	t.Helper()
	payload, err := json.Marshal(c)
	require.NoError(t, err)
	return payload
}

func TestCreateCampaignEndpoint(t *testing.T) {
	session := &fakeSession{
		payload: campaignJSON(t, model.Campaign{ID: "c1", Title: "Well Fund", GoalAmount: 5000}),
	}
	router := newTestRouter(t, session)

	body := []byte(`{"id":"c1","title":"Well Fund","goalAmount":5000,"organizer":"alice"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, session.submitted, 1)
	assert.Equal(t, []string{ledger.TxCreateCampaign, "c1", "Well Fund", "5000", "alice"}, session.submitted[0])
	assert.Equal(t, 1, session.closed)

	var campaign model.Campaign
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &campaign))
	assert.Equal(t, "c1", campaign.ID)
}

func TestCreateCampaignGeneratesID(t *testing.T) {
	session := &fakeSession{
		payload: campaignJSON(t, model.Campaign{ID: "generated", Title: "Well Fund"}),
	}
	router := newTestRouter(t, session)

	body := []byte(`{"title":"Well Fund","goalAmount":5000}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, session.submitted, 1)
	assert.NotEmpty(t, session.submitted[0][1], "a missing id must be filled in")
}

func TestCreateCampaignRejectsMissingTitle(t *testing.T) {
	session := &fakeSession{}
	router := newTestRouter(t, session)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns", bytes.NewReader([]byte(`{"goalAmount":5000}`)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, session.submitted, "a rejected request must never reach the ledger")
}

func TestDonateEndpoint(t *testing.T) {
	session := &fakeSession{
		payload: campaignJSON(t, model.Campaign{ID: "c1", TotalDonated: 150}),
	}
	router := newTestRouter(t, session)

	body := []byte(`{"id":"c1","donor":"bob","amount":150}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns/donate", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, session.submitted, 1)
	assert.Equal(t, []string{ledger.TxDonate, "c1", "bob", "150"}, session.submitted[0])
	assert.Equal(t, 1, session.closed)
}

func TestGetCampaignEndpoint(t *testing.T) {
	session := &fakeSession{
		payload: campaignJSON(t, model.Campaign{ID: "c1", Title: "Well Fund"}),
	}
	router := newTestRouter(t, session)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/campaigns/c1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, session.evaluated, 1)
	assert.Equal(t, []string{ledger.TxGetCampaign, "c1"}, session.evaluated[0])
}

func TestListCampaignsEndpoint(t *testing.T) {
	session := &fakeSession{payload: []byte(`[{"id":"c1"},{"id":"c2"}]`)}
	router := newTestRouter(t, session)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/campaigns", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var campaigns []model.Campaign
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &campaigns))
	assert.Len(t, campaigns, 2)
}

func TestListCampaignsEmptyLedger(t *testing.T) {
	session := &fakeSession{payload: []byte(`null`)}
	router := newTestRouter(t, session)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/campaigns", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String(), "an empty ledger renders an empty list, not null")
}

func TestRequestsCarrySubmitDeadline(t *testing.T) {
	session := &fakeSession{
		payload: campaignJSON(t, model.Campaign{ID: "c1", TotalDonated: 100}),
	}
	router := newTestRouter(t, session)

	body := []byte(`{"id":"c1","donor":"bob","amount":100}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns/donate", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, session.sawDeadline, "the configured submit timeout must bound the ledger call")

	session.sawDeadline = false
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/campaigns/c1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, session.sawDeadline, "queries are bounded the same way as submissions")
}

func TestCampaignHistoryEmpty(t *testing.T) {
	session := &fakeSession{payload: []byte(`null`)}
	router := newTestRouter(t, session)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/campaigns/c1/history", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String(), "absent history renders an empty list, not null")
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", status.New(status.CampaignNotFound, "campaign with ID 'x' does not exist"), http.StatusNotFound},
		{"mvcc conflict", status.New(status.MVCCConflict, "commit rejected by concurrent write"), http.StatusConflict},
		{"unknown identity", status.New(status.UnknownIdentity, "identity 'ghost' not found in wallet"), http.StatusUnauthorized},
		{"connection failure", status.New(status.ConnectionFailure, "failed to connect gateway"), http.StatusServiceUnavailable},
		{"store unavailable", status.New(status.StoreUnavailable, "wallet path is not writable"), http.StatusServiceUnavailable},
		{"transaction failure", status.New(status.TransactionFailure, "title must be a non-empty string"), http.StatusBadRequest},
		{"unclassified", status.New(status.Unknown, "boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &fakeSession{err: tt.err}
			router := newTestRouter(t, session)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/campaigns/c1", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, 1, session.closed, "the session must be closed on the error path too")
		})
	}
}

func TestSessionFactoryFailureIsRendered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &Service{
		cfg: &config.Config{UserLabel: "appUser"},
		connect: func(label string) (CampaignSession, error) {
			return nil, status.New(status.UnknownIdentity, "identity 'appUser' not found in wallet")
		},
	}
	router := NewRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/campaigns/c1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
