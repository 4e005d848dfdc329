package service

import (
	"strings"

	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/domain"
	"github.com/itchan-dev/parley/shared/errors"
	"github.com/itchan-dev/parley/shared/logger"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(creds domain.Credentials) (string, error)
}

type Jwt interface {
	NewToken(user domain.User) (string, error)
}

// Auth checks the single configured credential pair.
type Auth struct {
	jwt   Jwt
	login config.Login
}

func NewAuth(jwt Jwt, login config.Login) *Auth {
	return &Auth{jwt: jwt, login: login}
}

// Login returns a session token. Unknown email and wrong password are
// indistinguishable to the caller.
func (a *Auth) Login(creds domain.Credentials) (string, error) {
	emailMatches := strings.EqualFold(strings.TrimSpace(creds.Email), a.login.Email)

	// compare even on a wrong email so both failures take the same time
	err := bcrypt.CompareHashAndPassword([]byte(a.login.PasswordHash), []byte(creds.Password))
	if !emailMatches || err != nil {
		logger.Log.Info("failed login attempt", "email", creds.Email)
		return "", errors.ErrInvalidCredentials
	}

	token, err := a.jwt.NewToken(domain.User{Email: a.login.Email})
	if err != nil {
		return "", err
	}
	logger.Log.Info("user logged in", "email", a.login.Email)
	return token, nil
}

// HashPassword is used by the api binary to print a hash for private.yaml.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
