package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	internal_errors "github.com/itchan-dev/parley/shared/errors"
	"github.com/itchan-dev/parley/shared/logger"
	"github.com/itchan-dev/parley/shared/middleware/ratelimiter"
	"github.com/itchan-dev/parley/shared/utils"
)

var errRateLimited = internal_errors.New(http.StatusTooManyRequests, "Rate limit exceeded, try again later")

func RateLimit(rl *ratelimiter.Limiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				logger.Log.Warn("rate limited", "identity", identity, "path", r.URL.Path)
				utils.WriteErrorAndStatusCode(w, errRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserEmailFromContext is an identity for routes behind NeedAuth.
func GetUserEmailFromContext(r *http.Request) (string, error) {
	user := GetUserFromContext(r)
	if user == nil {
		return "", errors.New("can't get user from context")
	}
	return "user_" + user.Email, nil
}

// GetIP extracts the client IP from RemoteAddr only. Forwarding headers are
// ignored since they can be set by the client.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}
