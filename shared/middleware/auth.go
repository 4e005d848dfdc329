package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/itchan-dev/parley/shared/domain"
	internal_errors "github.com/itchan-dev/parley/shared/errors"
	jwt_internal "github.com/itchan-dev/parley/shared/jwt"
	"github.com/itchan-dev/parley/shared/utils"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "auth"

type key int

const UserClaimsKey key = 0

type Auth struct {
	jwtService    jwt_internal.JwtService
	secureCookies bool
}

func NewAuth(jwtService jwt_internal.JwtService, secureCookies bool) *Auth {
	return &Auth{
		jwtService:    jwtService,
		secureCookies: secureCookies,
	}
}

// NeedAuth answers 401 with the JSON envelope when there is no valid session.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.UserFromRequest(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// UserFromRequest reads the session cookie, falling back to a bearer token
// for non-browser clients.
func (a *Auth) UserFromRequest(r *http.Request) (*domain.User, error) {
	var tokenString string
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		tokenString = cookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}
	if tokenString == "" {
		return nil, internal_errors.ErrUnauthorized
	}
	return a.jwtService.DecodeToken(tokenString)
}

// SetSessionCookie stores token in the session cookie for ttl.
func (a *Auth) SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Auth) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserClaimsKey, user)
}

// GetUserFromContext returns nil outside of NeedAuth.
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(UserClaimsKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
