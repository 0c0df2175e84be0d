package services

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shopcore/internal/domain"
	"shopcore/internal/repos"
)

type AuthService struct {
	Users *repos.UserRepo
}

// Login verifies credentials and binds the session. Temporary blocks are
// evaluated here lazily: an expired block is cleared on the spot, an active
// one rejects the login. There is no background sweep.
func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrBadCredentials
		}
		return nil, err
	}

	if u.IsBlocked {
		until, perr := time.Parse(time.RFC3339, u.BlockedUntil)
		if perr != nil || time.Now().Before(until) {
			return nil, domain.ErrAccountBlocked
		}
		if err := s.Users.ClearBlock(u.ID); err != nil {
			return nil, err
		}
		u.IsBlocked = false
		u.BlockedUntil = ""
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, domain.ErrBadCredentials
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}
