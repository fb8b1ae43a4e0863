package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/hrmspro/hrms/internal"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("AuthHandler", func() {
	var handler *Handler

	ginkgo.BeforeEach(func() {
		tokenGen := NewJWTTokenGenerator(testAccessSecret, testRefreshSecret, 15*time.Minute, 24*time.Hour)
		handler = NewHandler(NewService(newMockUserRepository(), tokenGen, bcrypt.MinCost))
	})

	post := func(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) map[string]any {
		var out map[string]any
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &out)).To(gomega.Succeed())
		return out
	}

	ginkgo.It("signs up with 201 and returns user and session", func() {
		rec := post(handler.Signup, `{"full_name":"Ada","email":"ada@example.com","password":"secret1"}`)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))

		body := decode(rec)
		gomega.Expect(body).To(gomega.HaveKey("user"))
		gomega.Expect(body["session"]).To(gomega.HaveKey("access_token"))
		gomega.Expect(body["user"]).To(gomega.HaveKeyWithValue("email", "ada@example.com"))
	})

	ginkgo.It("returns 400 with the password message", func() {
		rec := post(handler.Signup, `{"email":"ada@example.com","password":"abc"}`)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		gomega.Expect(decode(rec)["message"]).To(gomega.Equal("Password must be at least 6 characters"))
	})

	ginkgo.It("returns 409 for a taken email", func() {
		post(handler.Signup, `{"email":"ada@example.com","password":"secret1"}`)
		rec := post(handler.Signup, `{"email":"ada@example.com","password":"secret1"}`)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusConflict))
		gomega.Expect(decode(rec)["message"]).To(gomega.Equal("An account with this email already exists"))
	})

	ginkgo.It("returns 401 on bad credentials", func() {
		rec := post(handler.Login, `{"email":"ada@example.com","password":"secret1"}`)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(decode(rec)["message"]).To(gomega.Equal("Invalid email or password"))
	})

	ginkgo.It("returns 400 on malformed json", func() {
		rec := post(handler.Login, `{"email":`)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
	})

	ginkgo.It("refreshes a session", func() {
		signup := decode(post(handler.Signup, `{"email":"ada@example.com","password":"secret1"}`))
		refresh := signup["session"].(map[string]any)["refresh_token"].(string)

		rec := post(handler.RefreshToken, `{"refresh_token":"`+refresh+`"}`)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

		rec = post(handler.RefreshToken, `{"refresh_token":"bogus"}`)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var (
			seenUser string
			next     http.Handler
		)

		ginkgo.BeforeEach(func() {
			seenUser = ""
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenUser = internal.UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			})
		})

		ginkgo.It("rejects requests without a token", func() {
			rec := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(seenUser).To(gomega.BeEmpty())
		})

		ginkgo.It("passes the user id downstream", func() {
			signup := decode(post(handler.Signup, `{"email":"ada@example.com","password":"secret1"}`))
			access := signup["session"].(map[string]any)["access_token"].(string)
			userID := signup["user"].(map[string]any)["id"].(string)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+access)
			rec := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(seenUser).To(gomega.Equal(userID))
		})
	})
})
