package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loan-approval/internal/app/handlers"
	commonerrors "loan-approval/internal/common/errors"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/decision"
	"loan-approval/internal/inference"
	"loan-approval/internal/inference/inferencetest"
	"loan-approval/internal/models"
	"loan-approval/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Save(ctx context.Context, d *models.Decision) (*store.Receipt, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Receipt), args.Error(1)
}

func (m *MockRecorder) Find(ctx context.Context, id string) (*models.Decision, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Decision), args.Error(1)
}

type brokenService struct{}

func (brokenService) Decide(context.Context, models.ApplicantRecord, decision.Origin) (*models.Decision, error) {
	return nil, &inference.DimensionMismatchError{Stage: "scaler", Got: 10, Want: 11}
}

func (brokenService) Options() models.DecisionOptions { return models.DecisionOptions{} }

func newRouter(t *testing.T, service handlers.DecisionService, recorder handlers.DecisionRecorder, checks map[string]handlers.ReadinessCheck) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewTestLogger(t)
	return SetupRouter(Dependencies{
		Decisions: handlers.NewDecisionHandler(service, recorder, log),
		Health:    handlers.NewHealthHandler(logger.ServiceName, inferencetest.Digest, checks),
		Logger:    log,
	})
}

func fixtureService() *decision.Service {
	return decision.NewService(inferencetest.NewArtifacts(), decision.Config{})
}

func do(r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]interface{}{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func errorCode(body map[string]interface{}) interface{} {
	e, _ := body["error"].(map[string]interface{})
	return e["code"]
}

func TestDecide_Approved(t *testing.T) {
	r := newRouter(t, fixtureService(), nil, nil)

	w, body := do(r, http.MethodPost, "/api/v1/loan-decisions", inferencetest.ApprovedRecord())
	require.Equal(t, http.StatusOK, w.Code)

	d := body["decision"].(map[string]interface{})
	assert.Equal(t, "Approved", d["verdict"])
	assert.Equal(t, float64(1), d["label"])
	applicant := d["applicant"].(map[string]interface{})
	assert.Equal(t, float64(1001), applicant["loan_id"])
	assert.Equal(t, "Graduate", applicant["education"])
}

func TestDecide_LowCibilRejected(t *testing.T) {
	r := newRouter(t, fixtureService(), nil, nil)

	w, body := do(r, http.MethodPost, "/api/v1/loan-decisions", inferencetest.RejectedRecord())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Rejected", body["decision"].(map[string]interface{})["verdict"])
}

func TestDecide_CallerErrors(t *testing.T) {
	unknown := inferencetest.ApprovedRecord()
	unknown.SelfEmployed = "Maybe"

	outOfRange := inferencetest.ApprovedRecord()
	outOfRange.CibilScore = 901

	negative := inferencetest.ApprovedRecord()
	negative.LoanAmount = -1

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   interface{}
	}{
		{"unknown self employed label", unknown, http.StatusUnprocessableEntity, "UNKNOWN_CATEGORY"},
		{"cibil above range", outOfRange, http.StatusUnprocessableEntity, "FIELD_OUT_OF_RANGE"},
		{"negative loan amount", negative, http.StatusUnprocessableEntity, "FIELD_OUT_OF_RANGE"},
		{"malformed json", `{"education": `, http.StatusBadRequest, "INPUT_PARSING_FAILED"},
		{"missing education", map[string]interface{}{"self_employed": "No", "cibil_score": 700}, http.StatusBadRequest, "APPLICATION_VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(t, fixtureService(), nil, nil)
			w, body := do(r, http.MethodPost, "/api/v1/loan-decisions", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(body))
		})
	}
}

func TestDecide_DimensionMismatchIsServerError(t *testing.T) {
	r := newRouter(t, brokenService{}, nil, nil)

	w, body := do(r, http.MethodPost, "/api/v1/loan-decisions", inferencetest.ApprovedRecord())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "FEATURE_DIMENSION_MISMATCH", errorCode(body))
}

func TestDecide_RecordsWhenStoreConfigured(t *testing.T) {
	recorder := &MockRecorder{}
	recorder.On("Save", mock.Anything, mock.AnythingOfType("*models.Decision")).
		Return(&store.Receipt{DecisionID: "6f1c2a4e-8d2b-4c4f-9a53-2f8e1b7d3c10", RecordedAt: time.Now()}, nil)
	r := newRouter(t, fixtureService(), recorder, nil)

	w, _ := do(r, http.MethodPost, "/api/v1/loan-decisions", inferencetest.ApprovedRecord())
	assert.Equal(t, http.StatusOK, w.Code)
	recorder.AssertExpectations(t)
}

func TestOptions(t *testing.T) {
	r := newRouter(t, fixtureService(), nil, nil)

	w, body := do(r, http.MethodGet, "/api/v1/loan-decisions/options", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"Graduate", "Not Graduate"}, body["education"])
	assert.Equal(t, []interface{}{"No", "Yes"}, body["self_employed"])
	assert.Equal(t, float64(300), body["cibil_min"])
	assert.Equal(t, float64(900), body["cibil_max"])
	assert.Len(t, body["feature_order"], inference.NumFeatures)
}

func TestGetDecision(t *testing.T) {
	id := "6f1c2a4e-8d2b-4c4f-9a53-2f8e1b7d3c10"

	t.Run("without store", func(t *testing.T) {
		r := newRouter(t, fixtureService(), nil, nil)
		w, _ := do(r, http.MethodGet, "/api/v1/loan-decisions/"+id, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("found", func(t *testing.T) {
		recorder := &MockRecorder{}
		recorder.On("Find", mock.Anything, id).Return(&models.Decision{
			ID:        id,
			Applicant: inferencetest.ApprovedRecord(),
			Verdict:   models.VerdictApproved,
			Label:     1,
		}, nil)
		r := newRouter(t, fixtureService(), recorder, nil)

		w, body := do(r, http.MethodGet, "/api/v1/loan-decisions/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id, body["decision"].(map[string]interface{})["id"])
	})

	t.Run("not found", func(t *testing.T) {
		recorder := &MockRecorder{}
		recorder.On("Find", mock.Anything, id).Return(nil, commonerrors.NewDecisionNotFoundError(id))
		r := newRouter(t, fixtureService(), recorder, nil)

		w, body := do(r, http.MethodGet, "/api/v1/loan-decisions/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "DECISION_NOT_FOUND", errorCode(body))
	})
}

func TestHealthAndReady(t *testing.T) {
	r := newRouter(t, fixtureService(), nil, map[string]handlers.ReadinessCheck{
		"redis": func(context.Context) error { return nil },
	})

	w, body := do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])

	w, body = do(r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, inferencetest.Digest, body["artifactDigest"])

	r = newRouter(t, fixtureService(), nil, map[string]handlers.ReadinessCheck{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	})
	w, body = do(r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not_ready", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	r := newRouter(t, fixtureService(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
