package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestHealthHandler(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "HealthHandler Suite")
}

var _ = Describe("HealthHandler", func() {
	It("should answer ping without touching the store", func() {
		handler := NewHealthHandler(nil)
		rec := httptest.NewRecorder()

		handler.pingHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body map[string]string
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(HaveKeyWithValue("status", "OK"))
	})

	It("should report healthy when the store answers the ping", func() {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()
		mock.ExpectPing()

		handler := NewHealthHandler(db)
		rec := httptest.NewRecorder()

		handler.healthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal(HealthHealthy))
		Expect(resp.Components).To(HaveKey("postgres"))
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	It("should report unhealthy with 503 when the store is unreachable", func() {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		handler := NewHealthHandler(db)
		rec := httptest.NewRecorder()

		handler.healthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		var resp HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal(HealthUnhealthy))
		Expect(resp.Components["postgres"].Message).To(ContainSubstring("connection refused"))
	})
})
