package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hrmspro/hrms/internal"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

const (
	testAccessSecret  = "test-access-secret-0123456789abcdef"
	testRefreshSecret = "test-refresh-secret-0123456789abcdef"
)

// Mock UserRepository for testing
type mockUserRepository struct {
	byID          map[string]*User
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{byID: map[string]*User{}}
}

func (m *mockUserRepository) Create(_ context.Context, user *User) error {
	if m.errorToReturn != nil {
		return m.errorToReturn
	}
	for _, u := range m.byID {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	if m.errorToReturn != nil {
		return nil, m.errorToReturn
	}
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	if m.errorToReturn != nil {
		return nil, m.errorToReturn
	}
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrUserNotFound
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		mockRepo *mockUserRepository
		tokenGen *JWTTokenGenerator
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(testAccessSecret, testRefreshSecret, 15*time.Minute, 24*time.Hour)
		service = NewService(mockRepo, tokenGen, bcrypt.MinCost)
	})

	signup := func() AuthResponse {
		resp, err := service.Signup(ctx, SignupDTO{
			FullName: "Ada Lovelace",
			Email:    " Ada@Example.com ",
			Password: "secret1",
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return resp
	}

	ginkgo.Describe("Signup", func() {
		ginkgo.It("creates the user and returns a session", func() {
			resp := signup()

			gomega.Expect(resp.User.ID).ToNot(gomega.BeEmpty())
			gomega.Expect(resp.User.Email).To(gomega.Equal("ada@example.com"))
			gomega.Expect(resp.User.FullName).To(gomega.Equal("Ada Lovelace"))
			gomega.Expect(resp.Session).ToNot(gomega.BeNil())
			gomega.Expect(resp.Session.AccessToken).ToNot(gomega.Equal(resp.Session.RefreshToken))
			gomega.Expect(resp.Session.ExpiresAt).To(gomega.BeNumerically(">", time.Now().Unix()))

			stored := mockRepo.byID[resp.User.ID]
			gomega.Expect(stored.PasswordHash).ToNot(gomega.Equal("secret1"))
			gomega.Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1"))).To(gomega.Succeed())
		})

		ginkgo.It("rejects short passwords", func() {
			_, err := service.Signup(ctx, SignupDTO{Email: "ada@example.com", Password: "abc"})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(400))
			gomega.Expect(appErr.GetDetailedMessage()).To(gomega.Equal("Password must be at least 6 characters"))
		})

		ginkgo.It("rejects invalid emails", func() {
			_, err := service.Signup(ctx, SignupDTO{Email: "not-an-email", Password: "secret1"})
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("valid email"))
		})

		ginkgo.It("rejects duplicate emails", func() {
			signup()

			_, err := service.Signup(ctx, SignupDTO{Email: "ada@example.com", Password: "another1"})
			gomega.Expect(errors.Is(err, internal.ErrEmailTaken)).To(gomega.BeTrue())
		})

		ginkgo.It("wraps repository failures as internal errors", func() {
			mockRepo.errorToReturn = errors.New("connection reset")

			_, err := service.Signup(ctx, SignupDTO{Email: "ada@example.com", Password: "secret1"})
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(500))
		})
	})

	ginkgo.Describe("Login", func() {
		ginkgo.BeforeEach(func() {
			signup()
		})

		ginkgo.It("returns tokens for valid credentials", func() {
			resp, err := service.Login(ctx, LoginDTO{Email: "ADA@example.com", Password: "secret1"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := service.ValidateAccessToken(resp.Session.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(resp.User.ID))
			gomega.Expect(claims.Email).To(gomega.Equal("ada@example.com"))
			gomega.Expect(claims.TokenType).To(gomega.Equal(AccessToken))
		})

		ginkgo.It("rejects a wrong password", func() {
			_, err := service.Login(ctx, LoginDTO{Email: "ada@example.com", Password: "wrong-password"})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
		})

		ginkgo.It("rejects an unknown email with the same error", func() {
			_, err := service.Login(ctx, LoginDTO{Email: "nobody@example.com", Password: "secret1"})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
		})

		ginkgo.It("requires both fields", func() {
			_, err := service.Login(ctx, LoginDTO{})
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(400))
		})
	})

	ginkgo.Describe("Refresh", func() {
		ginkgo.It("issues a new session from a refresh token", func() {
			first := signup()

			resp, err := service.Refresh(ctx, first.Session.RefreshToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resp.User.ID).To(gomega.Equal(first.User.ID))
			gomega.Expect(resp.Session.AccessToken).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("rejects access tokens", func() {
			first := signup()

			_, err := service.Refresh(ctx, first.Session.AccessToken)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("rejects tokens of deleted users", func() {
			first := signup()
			delete(mockRepo.byID, first.User.ID)

			_, err := service.Refresh(ctx, first.Session.RefreshToken)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("rejects garbage", func() {
			_, err := service.Refresh(ctx, "not-a-token")
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})
	})
})

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var (
		gen  *JWTTokenGenerator
		user User
	)

	ginkgo.BeforeEach(func() {
		gen = NewJWTTokenGenerator(testAccessSecret, testRefreshSecret, time.Minute, time.Hour)
		user = User{ID: "u-1", Email: "ada@example.com"}
	})

	ginkgo.It("signs access and refresh tokens with different secrets", func() {
		access, _, err := gen.Generate(user, AccessToken)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = gen.Validate(access, RefreshToken)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))

		claims, err := gen.Validate(access, AccessToken)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(claims.Subject).To(gomega.Equal("u-1"))
	})

	ginkgo.It("reports expired tokens", func() {
		expired := NewJWTTokenGenerator(testAccessSecret, testRefreshSecret, time.Minute, time.Hour)
		expired.AccessTokenTTL = -time.Minute

		token, _, err := expired.Generate(user, AccessToken)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = gen.Validate(token, AccessToken)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrTokenExpired))
	})

	ginkgo.It("rejects a token whose type claim does not match", func() {
		// same secret, wrong typ
		claims := &Claims{
			UserID:    "u-1",
			TokenType: RefreshToken,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAccessSecret))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = gen.Validate(token, AccessToken)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
	})

	ginkgo.It("rejects other signing methods", func() {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{UserID: "u-1", TokenType: AccessToken}).
			SignedString([]byte(testAccessSecret))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = gen.Validate(token, AccessToken)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
	})
})
