package calendar_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"family-calendar/internal/calendar"
	"family-calendar/internal/logger"
	"family-calendar/internal/session"
	"family-calendar/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	EventService *calendar.EventService
	Sessions     *session.Manager
	Logger       *logger.Logger
}

func NewHandler(eventService *calendar.EventService, sessions *session.Manager, log *logger.Logger) *Handler {
	return &Handler{EventService: eventService, Sessions: sessions, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/saved-titles", h.GetSavedTitles)
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		r.Get("/{eventID}", h.GetEvent)
		r.Put("/{eventID}", h.UpdateEvent)
		r.Delete("/{eventID}", h.DeleteEvent)
	})
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	year := r.URL.Query().Get("year")
	month := r.URL.Query().Get("month")

	events, err := h.EventService.ListEvents(r.Context(), year, month)
	if err != nil {
		h.writeServiceError(w, "ListEvents", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	event, err := h.EventService.GetEvent(r.Context(), eventID)
	if err != nil {
		h.writeServiceError(w, "GetEvent", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var input calendar.EventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: failed to decode request body: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor := h.Sessions.Current(r)
	event, err := h.EventService.CreateEvent(r.Context(), actor, input)
	if err != nil {
		h.writeServiceError(w, "CreateEvent", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateEvent: created event %d (%s)", event.ID, event.Title))
	utils.WriteJSON(w, http.StatusCreated, event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	var input calendar.EventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateEvent: failed to decode request body: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor := h.Sessions.Current(r)
	event, err := h.EventService.UpdateEvent(r.Context(), actor, eventID, input)
	if err != nil {
		h.writeServiceError(w, "UpdateEvent", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("UpdateEvent: updated event %d", eventID))
	utils.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	actor := h.Sessions.Current(r)
	if err := h.EventService.DeleteEvent(r.Context(), actor, eventID); err != nil {
		h.writeServiceError(w, "DeleteEvent", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("DeleteEvent: deleted event %d", eventID))
	utils.WriteMessage(w, http.StatusOK, "Event deleted successfully")
}

func (h *Handler) GetSavedTitles(w http.ResponseWriter, r *http.Request) {
	actor := h.Sessions.Current(r)
	titles, err := h.EventService.SavedTitles(r.Context(), actor)
	if err != nil {
		h.writeServiceError(w, "GetSavedTitles", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string][]string{"titles": titles})
}

// eventID parses the path parameter. A non-numeric id can't name any
// event, so it reads as not found rather than bad input.
func (h *Handler) eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "eventID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "Event not found")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, calendar.ErrUnauthorized):
		utils.WriteError(w, http.StatusUnauthorized, "Please log in first")
	case errors.Is(err, calendar.ErrInvalidInput):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, calendar.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "Event not found")
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
		utils.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
