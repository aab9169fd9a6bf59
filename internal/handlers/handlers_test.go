package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"shopify-integration-service/internal/clients/shopify"
	"shopify-integration-service/internal/encryption"
	"shopify-integration-service/internal/models"
	"shopify-integration-service/internal/repository"
	"shopify-integration-service/internal/services"
)

type testServer struct {
	router *gin.Engine
	store  *repository.Store
	shops  *services.ShopService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := repository.NewStore(db)
	enc, err := encryption.NewCredentialEncryptor("test-key")
	require.NoError(t, err)
	shops := services.NewShopService(store, nil, enc, "2024-01", log)
	logs := services.NewLogService(store.Logs, nil, log)
	webhooks := services.NewWebhookService(store, shops, shops, logs, nil, nil, log)

	shopHandler := NewShopHandler(shops)
	logHandler := NewLogHandler(logs, webhooks)
	webhookHandler := NewWebhookHandler(webhooks)

	r := gin.New()
	r.POST("/webhooks/shopify", webhookHandler.HandleShopifyWebhook)
	r.GET("/shops", shopHandler.List)
	r.POST("/shops", shopHandler.Create)
	r.GET("/shops/:id", shopHandler.Get)
	r.PUT("/shops/:id", shopHandler.Update)
	r.DELETE("/shops/:id", shopHandler.Delete)
	r.PUT("/shops/:id/credentials", shopHandler.UpdateCredentials)
	r.GET("/logs", logHandler.List)
	r.GET("/logs/:id", logHandler.Get)
	r.POST("/logs/:id/resync", logHandler.Resync)

	return &testServer{router: r, store: store, shops: shops}
}

func (s *testServer) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createShop(t *testing.T) *models.Shop {
	t.Helper()
	shop, err := s.shops.Create(context.Background(), &services.ShopRequest{
		Name:        "demo",
		ShopURL:     "https://demo.myshopify.com",
		Enabled:     true,
		Credentials: &models.Credentials{AccessToken: "shpat_test", SharedSecret: "s3cret"},
	})
	require.NoError(t, err)
	return shop
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func TestShopEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/shops", map[string]interface{}{
		"name":    "demo",
		"shopUrl": "https://demo.myshopify.com",
		"enabled": true,
		"company": "Acme",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Shop
	decodeData(t, w, &created)
	assert.Equal(t, "demo", created.Name)
	assert.Equal(t, models.AppTypeCustom, created.AppType)

	w = s.do(http.MethodGet, "/shops/"+created.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPut, "/shops/"+created.ID.String(), map[string]interface{}{
		"name":    "demo",
		"shopUrl": "https://demo.myshopify.com",
		"appType": "PUBLIC",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/shops/"+created.ID.String()+"/credentials", map[string]string{
		"access_token":  "shpat_new",
		"shared_secret": "s3cret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "shpat_new")

	w = s.do(http.MethodGet, "/shops", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = s.do(http.MethodPost, "/shops", map[string]string{"company": "Acme"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "name and url are required")

	w = s.do(http.MethodDelete, "/shops/"+created.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/shops/"+created.ID.String(), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShopEndpointErrors(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/shops/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/shops/00000000-0000-0000-0000-000000000001", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func webhookRequestHeaders(payload []byte, secret, domain string) map[string]string {
	return map[string]string{
		shopify.HeaderTopic:      "orders/create",
		shopify.HeaderShopDomain: domain,
		shopify.HeaderHmac:       shopify.Sign(payload, secret),
		shopify.HeaderWebhookID:  "wh-1",
	}
}

func TestWebhookEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.createShop(t)
	payload := []byte(`{"id":555}`)

	w := s.do(http.MethodPost, "/webhooks/shopify", payload, webhookRequestHeaders(payload, "wrong", "demo.myshopify.com"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/webhooks/shopify", payload, webhookRequestHeaders(payload, "s3cret", "other.myshopify.com"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	headers := webhookRequestHeaders(payload, "s3cret", "demo.myshopify.com")
	headers[shopify.HeaderTopic] = "products/update"
	w = s.do(http.MethodPost, "/webhooks/shopify", payload, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
}

func TestLogEndpoints(t *testing.T) {
	s := newTestServer(t)
	shop := s.createShop(t)
	payload := []byte(`{"id":555}`)

	w := s.do(http.MethodPost, "/webhooks/shopify", payload, webhookRequestHeaders(payload, "wrong", "demo.myshopify.com"))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/logs?shopId=%s&status=Invalid", shop.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var logs []models.IntegrationLog
	decodeData(t, w, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, services.MethodWebhook, logs[0].Method)

	w = s.do(http.MethodGet, "/logs/"+logs[0].ID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/logs/"+logs[0].ID.String()+"/resync", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "webhook rejections cannot be replayed")

	w = s.do(http.MethodGet, "/logs?shopId=bad", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{repository.ErrNotFound, http.StatusNotFound},
		{services.ErrShopNotFound, http.StatusNotFound},
		{services.ErrInvalidSignature, http.StatusUnauthorized},
		{services.ErrShopDisabled, http.StatusForbidden},
		{fmt.Errorf("wrapped: %w", services.ErrPayoutSubmitted), http.StatusConflict},
		{services.ErrInvalidShop, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/logs?limit=9999&offset=-3", nil)

	limit, offset := pagination(c)
	assert.Equal(t, maxLimit, limit)
	assert.Equal(t, 0, offset)
}
