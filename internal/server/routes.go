package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/service"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.healthHandler)

	r.Route("/todos", func(r chi.Router) {
		r.Get("/", s.listTodoItemsHandler)
		r.Post("/", s.createTodoItemHandler)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getTodoItemHandler)
			r.Put("/", s.updateTodoItemHandler)
			r.Delete("/", s.deleteTodoItemHandler)

			r.Put("/title", s.updateTitleHandler)
			r.Put("/description", s.updateDescriptionHandler)
			r.Put("/status", s.updateStatusHandler)
		})
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

func (s *Server) listTodoItemsHandler(w http.ResponseWriter, r *http.Request) {
	items, err := s.todoService.ListAll(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "retrieve todo items")
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (s *Server) getTodoItemHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	item, err := s.todoService.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "retrieve todo item")
		return
	}
	if item == nil {
		respondNotFound(w, id)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (s *Server) createTodoItemHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.TodoItem
	if !s.decode(w, r, &req) {
		return
	}

	item, err := s.todoService.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err, "create todo item")
		return
	}

	w.Header().Set("Location", "/todos/"+item.ID.String())
	respondWithJSON(w, http.StatusCreated, item)
}

func (s *Server) updateTodoItemHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	var req domain.TodoItem
	if !s.decode(w, r, &req) {
		return
	}

	item, err := s.todoService.Update(r.Context(), id, req)
	s.respondMutation(w, r, id, item, err, "update todo item")
}

func (s *Server) deleteTodoItemHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	deleted, err := s.todoService.Delete(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "delete todo item")
		return
	}
	if !deleted {
		respondNotFound(w, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateTitleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	var title string
	if !s.decode(w, r, &title) {
		return
	}

	item, err := s.todoService.UpdateTitle(r.Context(), id, title)
	s.respondMutation(w, r, id, item, err, "update todo item title")
}

func (s *Server) updateDescriptionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	// null clears the description
	var description *string
	if !s.decode(w, r, &description) {
		return
	}

	item, err := s.todoService.UpdateDescription(r.Context(), id, description)
	s.respondMutation(w, r, id, item, err, "update todo item description")
}

func (s *Server) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	var status *domain.Status
	if !s.decode(w, r, &status) {
		return
	}
	if status == nil {
		respondWithError(w, http.StatusBadRequest, "Status must not be null")
		return
	}

	item, err := s.todoService.UpdateStatus(r.Context(), id, *status)
	s.respondMutation(w, r, id, item, err, "update todo item status")
}

// respondMutation writes 204 for a successful update and 404 when the item
// was absent.
func (s *Server) respondMutation(w http.ResponseWriter, r *http.Request, id uuid.UUID, item *domain.TodoItem, err error, action string) {
	if err != nil {
		s.writeServiceError(w, r, err, action)
		return
	}
	if item == nil {
		respondNotFound(w, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid todo item ID provided")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := decodeJSONBody(w, r, dst)
	if err == nil {
		return true
	}

	var mr *malformedRequest
	if errors.As(err, &mr) {
		respondWithError(w, mr.status, mr.msg)
		return false
	}

	// field decoders such as uuid.UUID fail with their own error types
	s.logger.Warn("decode request body",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	respondWithError(w, http.StatusBadRequest, "Invalid request body")
	return false
}

// writeServiceError maps service errors to status codes. Anything that is
// not a client error is a persistence failure.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrConflict) {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Error(action,
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	respondWithError(w, http.StatusInternalServerError, "Failed to "+action)
}

func respondNotFound(w http.ResponseWriter, id uuid.UUID) {
	respondWithError(w, http.StatusNotFound, "todo item with ID "+id.String()+" not found")
}
