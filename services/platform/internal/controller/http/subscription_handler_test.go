package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fanvault/pkg/apperror"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestStatus(t *testing.T) {
	mockMembership := new(MockMembershipUseCase)
	handler := NewSubscriptionHandler(mockMembership, testLogger())

	router := setupTestRouter()
	router.GET("/subscriptions/status/:creator_id", asUser("fan", handler.Status))

	mockMembership.On("CheckSubscriptionStatus", mock.Anything, "fan", "creator-1").
		Return(&usecase.SubscriptionStatus{Subscribed: true, RemainingDays: 12, FandomBadge: "Night Owls"}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/subscriptions/status/creator-1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subscribed":true,"remaining_days":12,"fandom_badge":"Night Owls"}`, w.Body.String())
}

func TestSubscribe(t *testing.T) {
	mockMembership := new(MockMembershipUseCase)
	handler := NewSubscriptionHandler(mockMembership, testLogger())

	router := setupTestRouter()
	router.POST("/subscriptions", asUser("fan", handler.Subscribe))

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mockMembership.On("Subscribe", mock.Anything, "fan", "creator-1", "gold", int64(1000)).
		Return(&entity.Subscription{ID: "sub-1", StartDate: start, EndDate: start.AddDate(0, 0, 30), Active: true}, nil).Once()
	mockMembership.On("Subscribe", mock.Anything, "fan", "creator-1", "gold", int64(1000)).
		Return(nil, apperror.New(apperror.DuplicateActiveSubscription, "An active subscription to this creator already exists")).Once()

	body := `{"creator_id":"creator-1","tier_id":"gold","amount":1000}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"sub-1"`)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "DuplicateActiveSubscription")

	mockMembership.AssertExpectations(t)
}

func TestSubscribe_InvalidBody(t *testing.T) {
	mockMembership := new(MockMembershipUseCase)
	handler := NewSubscriptionHandler(mockMembership, testLogger())

	router := setupTestRouter()
	router.POST("/subscriptions", asUser("fan", handler.Subscribe))

	req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewBufferString(`{"amount":100}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockMembership.AssertNotCalled(t, "Subscribe")
}

func TestRenew_DefaultsDays(t *testing.T) {
	mockMembership := new(MockMembershipUseCase)
	handler := NewSubscriptionHandler(mockMembership, testLogger())

	router := setupTestRouter()
	router.POST("/subscriptions/:id/renew", asUser("fan", handler.Renew))

	mockMembership.On("RenewSubscription", mock.Anything, "fan", "sub-1", 0).Return(&entity.Subscription{ID: "sub-1", Active: true}, nil)
	mockMembership.On("RenewSubscription", mock.Anything, "fan", "sub-1", 7).Return(&entity.Subscription{ID: "sub-1", Active: true}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/subscriptions/sub-1/renew", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/subscriptions/sub-1/renew", bytes.NewBufferString(`{"days":7}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	mockMembership.AssertExpectations(t)
}

func TestCancel_Forbidden(t *testing.T) {
	mockMembership := new(MockMembershipUseCase)
	handler := NewSubscriptionHandler(mockMembership, testLogger())

	router := setupTestRouter()
	router.POST("/subscriptions/:id/cancel", asUser("stranger", handler.Cancel))

	mockMembership.On("CancelSubscription", mock.Anything, "stranger", "sub-1").
		Return(nil, apperror.New(apperror.AccessDenied, "You can only cancel your own subscriptions"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/subscriptions/sub-1/cancel", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTip(t *testing.T) {
	mockMembership := new(MockMembershipUseCase)
	handler := NewSubscriptionHandler(mockMembership, testLogger())

	router := setupTestRouter()
	router.POST("/tips", asUser("fan", handler.Tip))

	creatorID := "creator-1"
	mockMembership.On("Tip", mock.Anything, "fan", usecase.TipInput{CreatorID: &creatorID, Amount: 250, Message: "thanks"}).
		Return(&entity.Tip{ID: "tip-1", CreatorID: &creatorID, Amount: 250}, nil)

	req := httptest.NewRequest(http.MethodPost, "/tips", bytes.NewBufferString(`{"creator_id":"creator-1","amount":250,"message":"thanks"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockMembership.AssertExpectations(t)
}
