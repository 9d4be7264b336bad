// Package identity resolves "who is acting" for a request. Identity is
// selection-only: a member picks themselves from the family list, no
// password. The session binding is the only server-side state it owns.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"family-calendar/internal/calendar"
	"family-calendar/internal/models"
	"family-calendar/internal/session"
)

type UserDBLayer interface {
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type Service struct {
	DB       UserDBLayer
	Sessions *session.Manager
}

func NewService(db UserDBLayer, sessions *session.Manager) *Service {
	return &Service{DB: db, Sessions: sessions}
}

// Users returns every family member.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	return s.DB.GetUsers(ctx)
}

// Login binds the session to the given member and returns the full User
// record. An unknown id fails with ErrNotFound and leaves the session
// untouched.
func (s *Service) Login(w http.ResponseWriter, r *http.Request, userID int64) (*models.User, error) {
	user, err := s.DB.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", userID, calendar.ErrNotFound)
		}
		return nil, err
	}

	sess := &models.Session{UserID: user.ID, UserName: user.Name}
	if err := s.Sessions.Bind(w, r, sess); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout clears the session binding. Always succeeds, even when there was
// nothing to clear.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	s.Sessions.Clear(w, r)
}

// CurrentUser returns the member bound to the caller's session, or nil
// when nobody is logged in. Absence is a valid result, not an error.
func (s *Service) CurrentUser(r *http.Request) (*models.User, error) {
	sess := s.Sessions.Current(r)
	if sess == nil {
		return nil, nil
	}

	user, err := s.DB.GetUserByID(r.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
