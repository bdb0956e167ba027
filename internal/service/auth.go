package service

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/itchan-dev/foro/shared/domain"
	"github.com/itchan-dev/foro/shared/errors"
	"github.com/itchan-dev/foro/shared/logger"
)

var authAttempts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "foro_auth_attempts_total",
		Help: "Login and registration attempts by outcome",
	},
	[]string{"op", "result"},
)

type AuthService interface {
	Login(username domain.Username, password domain.Password) (domain.User, error)
	Register(username domain.Username, password domain.Password) (domain.User, error)
	Logout()
}

type Auth struct {
	storage   AuthStorage
	hasher    PasswordHasher
	validator UsernameValidator
	newId     func(prefix string) string
}

type AuthStorage interface {
	Users() []domain.User
	CommitUsers(users []domain.User)
	CommitSession(user *domain.User)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(stored, password string) bool
}

type UsernameValidator interface {
	Username(username string) error
}

func NewAuth(storage AuthStorage, hasher PasswordHasher, validator UsernameValidator, newId func(prefix string) string) *Auth {
	return &Auth{
		storage:   storage,
		hasher:    hasher,
		validator: validator,
		newId:     newId,
	}
}

func findUser(users []domain.User, username domain.Username) (domain.User, bool) {
	for _, u := range users {
		if domain.SameUsername(u.Username, username) {
			return u, true
		}
	}
	return domain.User{}, false
}

// Login looks the user up case-insensitively and checks the password exactly.
// On success the user becomes the current session.
func (a *Auth) Login(username domain.Username, password domain.Password) (domain.User, error) {
	username = strings.TrimSpace(username)

	user, ok := findUser(a.storage.Users(), username)
	if !ok {
		authAttempts.WithLabelValues("login", "user_not_found").Inc()
		logger.Log.Info("login failed: unknown user", "username", username)
		return domain.User{}, errors.ErrUserNotFound
	}
	if !a.hasher.Matches(user.Password, password) {
		authAttempts.WithLabelValues("login", "invalid_credentials").Inc()
		logger.Log.Info("login failed: wrong password", "user_id", user.Id)
		return domain.User{}, errors.ErrInvalidCredentials
	}

	a.storage.CommitSession(&user)
	authAttempts.WithLabelValues("login", "ok").Inc()
	logger.Log.Info("user logged in", "user_id", user.Id)
	return user, nil
}

// Register creates a user, stores it and logs it in. The username is kept as entered
// (minus surrounding spaces) but must be unique ignoring case.
func (a *Auth) Register(username domain.Username, password domain.Password) (domain.User, error) {
	username = strings.TrimSpace(username)
	if err := a.validator.Username(username); err != nil {
		authAttempts.WithLabelValues("register", "invalid").Inc()
		return domain.User{}, err
	}

	users := a.storage.Users()
	if _, taken := findUser(users, username); taken {
		authAttempts.WithLabelValues("register", "username_taken").Inc()
		logger.Log.Info("registration failed: username taken", "username", username)
		return domain.User{}, errors.ErrUsernameTaken
	}

	passHash, err := a.hasher.Hash(password)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.User{}, err
	}

	user := domain.User{Id: a.newId("user"), Username: username, Password: passHash}

	updated := make([]domain.User, 0, len(users)+1)
	updated = append(updated, users...)
	updated = append(updated, user)
	a.storage.CommitUsers(updated)
	a.storage.CommitSession(&user)

	authAttempts.WithLabelValues("register", "ok").Inc()
	logger.Log.Info("user registered", "user_id", user.Id)
	return user, nil
}

// Logout clears the current session and nothing else.
func (a *Auth) Logout() {
	a.storage.CommitSession(nil)
}
