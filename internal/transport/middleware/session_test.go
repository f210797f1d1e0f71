package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/radityasurya/pharmacy-network/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSessionMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Middleware Suite")
}

const testSecret = "test-session-secret-for-middleware-spec"

func signToken(secret string, claims SessionClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	Expect(err).NotTo(HaveOccurred())
	return signed
}

var _ = Describe("Session", func() {
	var (
		captured *internal.Actor
		handler  http.Handler
	)

	BeforeEach(func() {
		captured = nil
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor, ok := internal.ActorFromContext(r.Context()); ok {
				captured = &actor
			}
			w.WriteHeader(http.StatusOK)
		})
		handler = Session(testSecret)(next)
	})

	validClaims := func() SessionClaims {
		return SessionClaims{
			TenantID:     "tenant-a",
			UserID:       "user-1",
			Name:         "Apotheek A",
			NetworkAdmin: true,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}

	It("should build the actor from a valid token", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/channels", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(testSecret, validClaims()))
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(captured).NotTo(BeNil())
		Expect(captured.TenantID).To(Equal("tenant-a"))
		Expect(captured.UserID).To(Equal("user-1"))
		Expect(captured.NetworkAdmin).To(BeTrue())
		Expect(captured.OriginIP).To(Equal("203.0.113.7"))
	})

	It("should reject a missing Authorization header", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/channels", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(captured).To(BeNil())
	})

	It("should reject a token signed with a different secret", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/channels", nil)
		req.Header.Set("Authorization", "Bearer "+signToken("some-other-secret-entirely-wrong!", validClaims()))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should reject an expired token", func() {
		claims := validClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/channels", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(testSecret, claims))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should reject a token without tenant identity", func() {
		claims := validClaims()
		claims.TenantID = ""

		req := httptest.NewRequest(http.MethodGet, "/api/v1/channels", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(testSecret, claims))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should fall back to RemoteAddr for the origin ip", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/channels", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(testSecret, validClaims()))
		req.RemoteAddr = "198.51.100.4:52011"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(captured).NotTo(BeNil())
		Expect(captured.OriginIP).To(Equal("198.51.100.4"))
	})
})
