package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"family-calendar/internal/logger"
	"family-calendar/internal/models"
)

// savedTitleLimit caps the autocomplete suggestion list.
const savedTitleLimit = 10

type DBLayer interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListEvents(ctx context.Context, startDate, endDate string) ([]models.EventWithUser, error)
	GetEventByID(ctx context.Context, id int64) (*models.EventWithUser, error)
	EventExists(ctx context.Context, id int64) (bool, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id int64) error
	SavedTitles(ctx context.Context, userID int64, limit int) ([]string, error)
}

// FeedPublisher streams event changes to the optional change feed.
// Publish failures never fail the calling operation.
type FeedPublisher interface {
	PublishEventCreated(event models.Event) error
	PublishEventUpdated(event models.Event) error
	PublishEventDeleted(event models.Event) error
}

// EventInput is the caller-supplied portion of an event. A nil UserID
// defaults the owner to the session user.
type EventInput struct {
	Title     string  `json:"title"`
	Date      string  `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	UserID    *int64  `json:"user_id"`
}

type EventService struct {
	DB     DBLayer
	Feed   FeedPublisher
	Logger *logger.Logger
}

func NewEventService(db DBLayer, feed FeedPublisher, log *logger.Logger) *EventService {
	return &EventService{DB: db, Feed: feed, Logger: log}
}

// ListEvents returns all events, or just those inside one calendar month
// when both year and month are given. Reads are shared-visibility: no
// owner filtering, no session required.
func (s *EventService) ListEvents(ctx context.Context, yearStr, monthStr string) ([]models.EventWithUser, error) {
	if yearStr == "" || monthStr == "" {
		return s.DB.ListEvents(ctx, "", "")
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 0 {
		return nil, fmt.Errorf("invalid year %q: %w", yearStr, ErrInvalidInput)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %q: %w", monthStr, ErrInvalidInput)
	}

	startDate, endDate := monthRange(year, month)
	return s.DB.ListEvents(ctx, startDate, endDate)
}

// monthRange computes [first day of month, first day of next month),
// rolling December over into January of the next year.
func monthRange(year, month int) (string, string) {
	startDate := fmt.Sprintf("%04d-%02d-01", year, month)
	if month == 12 {
		return startDate, fmt.Sprintf("%04d-01-01", year+1)
	}
	return startDate, fmt.Sprintf("%04d-%02d-01", year, month+1)
}

// GetEvent returns one enriched event.
func (s *EventService) GetEvent(ctx context.Context, id int64) (*models.EventWithUser, error) {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return event, nil
}

// CreateEvent validates and persists a new event for the session user
// (or an explicitly named owner) and returns the enriched row as just
// written.
func (s *EventService) CreateEvent(ctx context.Context, actor *models.Session, input EventInput) (*models.EventWithUser, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}

	title, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	userID := actor.UserID
	if input.UserID != nil {
		userID = *input.UserID
	}
	if err := s.checkOwner(ctx, userID); err != nil {
		return nil, err
	}

	event := models.Event{
		Title:     title,
		Date:      input.Date,
		StartTime: normalizeTime(input.StartTime),
		EndTime:   normalizeTime(input.EndTime),
		UserID:    userID,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	if err := s.DB.CreateEvent(ctx, &event); err != nil {
		return nil, err
	}

	if err := s.Feed.PublishEventCreated(event); err != nil {
		s.Logger.Warn("FEED", fmt.Sprintf("publish event created failed: %v", err))
	}

	return s.GetEvent(ctx, event.ID)
}

// UpdateEvent performs a full replace of the mutable fields. The owner
// defaults to the session user when not supplied, same as create.
func (s *EventService) UpdateEvent(ctx context.Context, actor *models.Session, id int64, input EventInput) (*models.EventWithUser, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}

	exists, err := s.DB.EventExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("event %d: %w", id, ErrNotFound)
	}

	title, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	userID := actor.UserID
	if input.UserID != nil {
		userID = *input.UserID
	}
	if err := s.checkOwner(ctx, userID); err != nil {
		return nil, err
	}

	event := models.Event{
		ID:        id,
		Title:     title,
		Date:      input.Date,
		StartTime: normalizeTime(input.StartTime),
		EndTime:   normalizeTime(input.EndTime),
		UserID:    userID,
	}
	if err := s.DB.UpdateEvent(ctx, &event); err != nil {
		return nil, err
	}

	if err := s.Feed.PublishEventUpdated(event); err != nil {
		s.Logger.Warn("FEED", fmt.Sprintf("publish event updated failed: %v", err))
	}

	return s.GetEvent(ctx, id)
}

// DeleteEvent removes an event outright. No ownership check: any logged-in
// member may delete any event.
func (s *EventService) DeleteEvent(ctx context.Context, actor *models.Session, id int64) error {
	if actor == nil {
		return ErrUnauthorized
	}

	existing, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("event %d: %w", id, ErrNotFound)
		}
		return err
	}

	if err := s.DB.DeleteEvent(ctx, id); err != nil {
		return err
	}

	deleted := models.Event{
		ID:        existing.ID,
		Title:     existing.Title,
		Date:      existing.Date,
		StartTime: existing.StartTime,
		EndTime:   existing.EndTime,
		UserID:    existing.UserID,
		CreatedAt: existing.CreatedAt,
	}
	if err := s.Feed.PublishEventDeleted(deleted); err != nil {
		s.Logger.Warn("FEED", fmt.Sprintf("publish event deleted failed: %v", err))
	}

	return nil
}

// SavedTitles returns up to ten distinct titles the session user has used
// before, most recent first. Without a session it returns an empty list
// rather than failing; there is nothing sensitive to protect.
func (s *EventService) SavedTitles(ctx context.Context, actor *models.Session) ([]string, error) {
	if actor == nil {
		return []string{}, nil
	}

	titles, err := s.DB.SavedTitles(ctx, actor.UserID, savedTitleLimit)
	if err != nil {
		return nil, err
	}
	if titles == nil {
		titles = []string{}
	}
	return titles, nil
}

func validateInput(input EventInput) (string, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return "", fmt.Errorf("title is required: %w", ErrInvalidInput)
	}
	if input.Date == "" {
		return "", fmt.Errorf("date is required: %w", ErrInvalidInput)
	}
	return title, nil
}

// checkOwner enforces that events always reference a real member.
func (s *EventService) checkOwner(ctx context.Context, userID int64) error {
	_, err := s.DB.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("unknown user %d: %w", userID, ErrInvalidInput)
		}
		return err
	}
	return nil
}

// normalizeTime maps an absent or empty time string to NULL so ordering
// keeps all-day entries ahead of timed ones.
func normalizeTime(t *string) *string {
	if t == nil || *t == "" {
		return nil
	}
	return t
}
