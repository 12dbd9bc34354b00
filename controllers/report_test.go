package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/petrovis/hemjilt_backend/config"
	"github.com/petrovis/hemjilt_backend/middlewares"
	"github.com/petrovis/hemjilt_backend/models"
	"github.com/petrovis/hemjilt_backend/routes"
	"github.com/petrovis/hemjilt_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testApiKey = "test-api-key"

func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), config.InitConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	config.SetDB(db)
	t.Cleanup(func() {
		config.SetDB(nil)
		sqlDB.Close()
	})
	models.MigrateTable()

	hashed, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Username: "inspector1",
		Password: string(hashed),
		Role:     models.UserRoleUser,
	}).Error)
	require.NoError(t, db.Create(&models.ApiKey{
		Key:  testApiKey,
		Name: "Test Key",
	}).Error)

	router := gin.New()
	limiter := middlewares.NewRateLimiter(nil, 60, time.Minute)
	routes.RegisterRoutes(router, limiter)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func loginToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "inspector1",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var info models.LoginInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	require.NotEmpty(t, info.Token)
	return info.Token
}

func TestLoginRejectsBadPassword(t *testing.T) {
	router := setupTestServer(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "inspector1",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportEndpointsRequireToken(t *testing.T) {
	router := setupTestServer(t)

	rec := doJSON(t, router, http.MethodGet, "/api/reports", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/reports", "not-a-token", gin.H{"reportNo": "R-1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateReportEndpoint(t *testing.T) {
	router := setupTestServer(t)
	token := loginToken(t, router)

	body := gin.H{
		"reportNo":   "R-100",
		"customer":   "Acme",
		"reportDate": "2025-08-29 11:00:00",
		"reportDetails": []gin.H{
			{"rtcNo": "73211145", "actualDensity": "0.8235", "govLiters": 64200},
		},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/reports", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "R-100", created.ReportNo)
	require.Len(t, created.ReportDetails, 1)
	assert.Equal(t, "73211145", created.ReportDetails[0].RtcNo)

	rec = doJSON(t, router, http.MethodPost, "/api/reports", token, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateReportValidation(t *testing.T) {
	router := setupTestServer(t)
	token := loginToken(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/reports", token, gin.H{"customer": "Acme"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ReportNo")
}

func TestGetReportNotFoundEndpoint(t *testing.T) {
	router := setupTestServer(t)
	token := loginToken(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/reports/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteReportEndpoint(t *testing.T) {
	router := setupTestServer(t)
	token := loginToken(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/reports", token, gin.H{"reportNo": "R-200"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodDelete, "/api/reports/"+itoa(created.ID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/reports/"+itoa(created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExternalLookupRequiresApiKey(t *testing.T) {
	router := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/external/R-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/reports/external/R-1", nil)
	req.Header.Set("x-api-key", "wrong-key")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExternalLookupAlwaysReturnsDocument(t *testing.T) {
	router := setupTestServer(t)
	token := loginToken(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/reports", token, gin.H{
		"reportNo":      "R-300",
		"customer":      "Acme",
		"reportDetails": []gin.H{{"rtcNo": "T1"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/external/R-300", nil)
	req.Header.Set("x-api-key", testApiKey)
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusOK, rec2.Code)

	var doc models.CanonicalResponse
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &doc))
	assert.Equal(t, "true", doc.Success)
	assert.Equal(t, "R-300", doc.Hemjilt.ReportNo)
	require.Len(t, doc.Hemjilt.HemjiltDetails, 1)
	assert.Equal(t, "T1", doc.Hemjilt.HemjiltDetails[0].RTCNo)

	// A miss is still a 200 with the same shape, Success "false".
	req = httptest.NewRequest(http.MethodGet, "/api/reports/external/R-404", nil)
	req.Header.Set("x-api-key", testApiKey)
	rec2 = httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusOK, rec2.Code)

	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &doc))
	assert.Equal(t, "false", doc.Success)
	assert.Equal(t, "Report not found", doc.Message)
	assert.Empty(t, doc.Hemjilt.HemjiltDetails)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
