package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/teamboard/teamboard/internal/auth"
	"github.com/teamboard/teamboard/internal/ierr"
	"github.com/teamboard/teamboard/internal/notify"
	"github.com/teamboard/teamboard/internal/task"
	"go.uber.org/zap"
)

// RESTServer is the CRUD collaborator of the realtime subsystem: it owns
// the authoritative task state and calls the notifier once per committed
// mutation. Notification failures never surface as request errors.
type RESTServer struct {
	logger        *zap.Logger
	store         task.Store
	notifier      *notify.TaskNotifier
	authenticator *auth.Authenticator
}

func NewRESTServer(
	logger *zap.Logger,
	store task.Store,
	notifier *notify.TaskNotifier,
	authenticator *auth.Authenticator,
) *RESTServer {
	return &RESTServer{
		logger:        logger,
		store:         store,
		notifier:      notifier,
		authenticator: authenticator,
	}
}

func (s *RESTServer) Register(router *mux.Router) {
	router.HandleFunc("/tasks", s.handleCreate).Methods("POST")
	router.HandleFunc("/tasks", s.handleList).Methods("GET")
	router.HandleFunc("/tasks/{task_id}", s.handleUpdate).Methods("PATCH")
}

func (s *RESTServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	authentication, err := s.authenticate(r)
	if err != nil {
		s.writeError(w, err)

		return
	}

	var request task.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid request body")))

		return
	}

	if err := request.Validate(); err != nil {
		s.writeError(w, err)

		return
	}

	if !authentication.IsAuthorized(request.ProjectID) {
		s.writeError(w, ierr.New(ierr.ErrorCodePermissionDenied,
			errors.New("not authorized for this project")))

		return
	}

	created, err := s.store.Create(r.Context(), request, authentication.UserID)
	if err != nil {
		s.writeError(w, err)

		return
	}

	// Only after the store write succeeded; a failed create emits nothing.
	s.notifier.TaskCreated(created, authentication.UserID)

	s.writeJSON(w, http.StatusCreated, created)
}

func (s *RESTServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	authentication, err := s.authenticate(r)
	if err != nil {
		s.writeError(w, err)

		return
	}

	taskID, err := strconv.ParseInt(mux.Vars(r)["task_id"], 10, 64)
	if err != nil || taskID <= 0 {
		s.writeError(w, ierr.New(ierr.ErrorCodeInvalidArgument,
			errors.New("task id must be a positive integer")))

		return
	}

	var request task.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid request body")))

		return
	}

	if err := request.Validate(); err != nil {
		s.writeError(w, err)

		return
	}

	existing, err := s.store.Get(r.Context(), taskID)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if !authentication.IsAuthorized(existing.ProjectID) {
		s.writeError(w, ierr.New(ierr.ErrorCodePermissionDenied,
			errors.New("not authorized for this project")))

		return
	}

	updated, err := s.store.Update(r.Context(), taskID, request)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if request.StatusOnly() && updated.Status != existing.Status {
		s.notifier.TaskMoved(updated, authentication.UserID)
	} else {
		s.notifier.TaskUpdated(updated, authentication.UserID)
	}

	s.writeJSON(w, http.StatusOK, updated)
}

func (s *RESTServer) handleList(w http.ResponseWriter, r *http.Request) {
	authentication, err := s.authenticate(r)
	if err != nil {
		s.writeError(w, err)

		return
	}

	projectID, err := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)
	if err != nil || projectID <= 0 {
		s.writeError(w, ierr.New(ierr.ErrorCodeInvalidArgument,
			errors.New("project_id must be a positive integer")))

		return
	}

	if !authentication.IsAuthorized(projectID) {
		s.writeError(w, ierr.New(ierr.ErrorCodePermissionDenied,
			errors.New("not authorized for this project")))

		return
	}

	tasks, err := s.store.List(r.Context(), projectID, task.Status(r.URL.Query().Get("status")))
	if err != nil {
		s.writeError(w, err)

		return
	}

	if tasks == nil {
		tasks = []task.Task{}
	}

	s.writeJSON(w, http.StatusOK, tasks)
}

func (s *RESTServer) authenticate(r *http.Request) (*auth.Authentication, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return nil, ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("missing bearer token"))
	}

	if authentication, err := s.authenticator.AuthenticateJWT(token); err == nil {
		return authentication, nil
	}

	return s.authenticator.AuthenticateAPIKey(token)
}

func (s *RESTServer) writeError(w http.ResponseWriter, err error) {
	var coded ierr.Error
	if !errors.As(err, &coded) {
		s.logger.Error("request failed", zap.Error(err))
		coded = ierr.New(ierr.ErrorCodeInternal, errors.New("internal error"))
	}

	s.writeJSON(w, ierr.HTTPStatus(coded.Code), coded)
}

func (s *RESTServer) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}
