// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hylla/taskboard/internal/adapters/server/common"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	service common.BoardService
	router  *gin.Engine
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over the board service.
func NewHandler(service common.BoardService) *Handler {
	h := &Handler{service: service, router: gin.New()}
	h.router.Use(gin.Recovery())
	h.router.HandleMethodNotAllowed = true
	h.router.NoRoute(func(c *gin.Context) {
		writeJSONError(c, http.StatusNotFound, APIError{Code: "not_found", Message: "endpoint not found"})
	})
	h.router.NoMethod(func(c *gin.Context) {
		writeJSONError(c, http.StatusMethodNotAllowed, APIError{Code: "method_not_allowed", Message: "method not allowed"})
	})

	h.router.GET("/projects", h.handleListProjects)
	h.router.POST("/projects", h.handleCreateProject)
	h.router.GET("/projects/:id", h.handleGetProject)
	h.router.PUT("/projects/:id", h.handleUpdateProject)
	h.router.DELETE("/projects/:id", h.handleDeleteProject)

	h.router.GET("/labels", h.handleListLabels)
	h.router.POST("/labels", h.handleCreateLabel)
	h.router.PUT("/labels/:id", h.handleUpdateLabel)
	h.router.DELETE("/labels/:id", h.handleDeleteLabel)

	h.router.GET("/tasks", h.handleListTasks)
	h.router.POST("/tasks", h.handleCreateTask)
	h.router.GET("/tasks/:id", h.handleGetTask)
	h.router.PUT("/tasks/:id", h.handleUpdateTask)
	h.router.DELETE("/tasks/:id", h.handleDeleteTask)
	h.router.POST("/tasks/:id/move", h.handleMoveTask)

	h.router.GET("/board", h.handleBoard)
	return h
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(ErrorEnvelope{Error: APIError{
			Code:    "service_unavailable",
			Message: "board service is not configured",
		}})
		return
	}
	h.router.ServeHTTP(w, r)
}

func (h *Handler) handleListProjects(c *gin.Context) {
	projects, err := h.service.ListProjects(c.Request.Context())
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *Handler) handleCreateProject(c *gin.Context) {
	var req common.CreateProjectRequest
	if err := decodeJSONBody(c, &req); err != nil {
		writeErrorFrom(c, err)
		return
	}
	project, err := h.service.CreateProject(c.Request.Context(), req)
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *Handler) handleGetProject(c *gin.Context) {
	project, err := h.service.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) handleUpdateProject(c *gin.Context) {
	var req common.UpdateProjectRequest
	if err := decodeJSONBody(c, &req); err != nil {
		writeErrorFrom(c, err)
		return
	}
	req.ID = c.Param("id")
	project, err := h.service.UpdateProject(c.Request.Context(), req)
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) handleDeleteProject(c *gin.Context) {
	req := deleteRequest(c)
	if err := h.service.DeleteProject(c.Request.Context(), req); err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": req.ID, "deleted": true})
}

func (h *Handler) handleListLabels(c *gin.Context) {
	labels, err := h.service.ListLabels(c.Request.Context())
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

func (h *Handler) handleCreateLabel(c *gin.Context) {
	var req common.CreateLabelRequest
	if err := decodeJSONBody(c, &req); err != nil {
		writeErrorFrom(c, err)
		return
	}
	label, err := h.service.CreateLabel(c.Request.Context(), req)
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusCreated, label)
}

func (h *Handler) handleUpdateLabel(c *gin.Context) {
	var req common.UpdateLabelRequest
	if err := decodeJSONBody(c, &req); err != nil {
		writeErrorFrom(c, err)
		return
	}
	req.ID = c.Param("id")
	label, err := h.service.UpdateLabel(c.Request.Context(), req)
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, label)
}

func (h *Handler) handleDeleteLabel(c *gin.Context) {
	req := deleteRequest(c)
	if err := h.service.DeleteLabel(c.Request.Context(), req); err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": req.ID, "deleted": true})
}

func (h *Handler) handleListTasks(c *gin.Context) {
	tasks, err := h.service.ListTasks(c.Request.Context(), filtersFromQuery(c))
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *Handler) handleCreateTask(c *gin.Context) {
	var req common.CreateTaskRequest
	if err := decodeJSONBody(c, &req); err != nil {
		writeErrorFrom(c, err)
		return
	}
	task, err := h.service.CreateTask(c.Request.Context(), req)
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) handleGetTask(c *gin.Context) {
	task, err := h.service.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) handleUpdateTask(c *gin.Context) {
	var req common.UpdateTaskRequest
	if err := decodeJSONBody(c, &req); err != nil {
		writeErrorFrom(c, err)
		return
	}
	req.ID = c.Param("id")
	task, err := h.service.UpdateTask(c.Request.Context(), req)
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) handleDeleteTask(c *gin.Context) {
	req := deleteRequest(c)
	if err := h.service.DeleteTask(c.Request.Context(), req); err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": req.ID, "deleted": true})
}

// handleMoveTask serves POST `/tasks/{id}/move`.
func (h *Handler) handleMoveTask(c *gin.Context) {
	var req common.MoveTaskRequest
	if err := decodeJSONBody(c, &req); err != nil {
		writeErrorFrom(c, err)
		return
	}
	req.ID = c.Param("id")
	result, err := h.service.MoveTask(c.Request.Context(), req)
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) handleBoard(c *gin.Context) {
	board, err := h.service.Board(c.Request.Context(), filtersFromQuery(c))
	if err != nil {
		writeErrorFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func filtersFromQuery(c *gin.Context) common.ListTasksRequest {
	return common.ListTasksRequest{
		ProjectID: strings.TrimSpace(c.Query("project_id")),
		Priority:  strings.TrimSpace(c.Query("priority")),
		DateRange: strings.TrimSpace(c.Query("date_range")),
		Query:     strings.TrimSpace(c.Query("q")),
		Status:    strings.TrimSpace(c.Query("status")),
	}
}

// deleteRequest reads `{id}` and the `confirm` flag. Anything but a true boolean is unconfirmed.
func deleteRequest(c *gin.Context) common.DeleteRequest {
	confirmed, err := strconv.ParseBool(strings.TrimSpace(c.Query("confirm")))
	return common.DeleteRequest{ID: c.Param("id"), Confirm: err == nil && confirmed}
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(c *gin.Context, err error) {
	switch {
	case err == nil:
		writeJSONError(c, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(c, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrConfirmationRequired):
		writeJSONError(c, http.StatusConflict, APIError{
			Code:    "confirmation_required",
			Message: err.Error(),
			Hint:    "Repeat the request with confirm=true.",
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(c, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrConflict):
		writeJSONError(c, http.StatusConflict, APIError{
			Code:    "conflict",
			Message: err.Error(),
			Hint:    "The backend did not confirm the write; reload before retrying.",
		})
	case errors.Is(err, common.ErrBackendUnavailable):
		writeJSONError(c, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: err.Error(),
		})
	default:
		writeJSONError(c, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeJSONError writes one structured error envelope.
func writeJSONError(c *gin.Context, statusCode int, apiErr APIError) {
	c.AbortWithStatusJSON(statusCode, ErrorEnvelope{Error: apiErr})
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(c *gin.Context, out any) error {
	reader := http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	ctx := c.Request.Context()
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
