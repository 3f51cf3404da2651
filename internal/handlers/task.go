package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/column-task-api/internal/dto"
	apierrors "github.com/yukikurage/column-task-api/internal/errors"
	"github.com/yukikurage/column-task-api/internal/services"
)

// actionFunc runs one dispatcher action and returns the success message and
// payload of the response.
type actionFunc func(h *TaskHandler, c *gin.Context, req *dto.TaskRequest) (string, interface{}, error)

var taskActions = map[string]actionFunc{
	"create":               (*TaskHandler).create,
	"get":                  (*TaskHandler).get,
	"update":               (*TaskHandler).update,
	"delete":               (*TaskHandler).delete,
	"toggle_complete":      (*TaskHandler).toggleComplete,
	"get_children":         (*TaskHandler).getChildren,
	"get_root_tasks":       (*TaskHandler).getRootTasks,
	"get_column_structure": (*TaskHandler).getColumnStructure,
	"get_task_tree":        (*TaskHandler).getTaskTree,
	"search":               (*TaskHandler).search,
	"get_stats":            (*TaskHandler).getStats,
	"update_position":      (*TaskHandler).updatePosition,
	"update_parent":        (*TaskHandler).updateParent,
	"move_relative":        (*TaskHandler).moveRelative,
	"filter":               (*TaskHandler).filter,
	"get_urgent":           (*TaskHandler).getUrgent,
	"get_by_level":         (*TaskHandler).getByLevel,
	"get_ancestors":        (*TaskHandler).getAncestors,
	"attach_external":      (*TaskHandler).attachExternal,
	"create_from_mail":     (*TaskHandler).createFromMail,
	"suggest_subtasks":     (*TaskHandler).suggestSubtasks,
	"provider_status":      (*TaskHandler).providerStatus,
}

// requestError is a malformed or incomplete request.
type requestError string

func (e requestError) Error() string { return string(e) }

// notAppliedError reports a mutation that affected no row.
type notAppliedError string

func (e notAppliedError) Error() string { return string(e) }

type TaskHandler struct {
	taskService     *services.TaskService
	providerService *services.ProviderService
	logger          *slog.Logger
}

func NewTaskHandler(taskService *services.TaskService, providerService *services.ProviderService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService:     taskService,
		providerService: providerService,
		logger:          logger,
	}
}

// Handle dispatches /api/tasks by its action parameter, taken from the query
// string or the request body.
func (h *TaskHandler) Handle(c *gin.Context) {
	var req dto.TaskRequest
	if err := bindTaskRequest(c, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	action := c.Query("action")
	if action == "" {
		action = req.Action
	}

	run, ok := taskActions[action]
	if !ok {
		apierrors.InvalidAction(c)
		return
	}

	message, data, err := run(h, c, &req)
	if err != nil {
		h.respondError(c, action, err)
		return
	}

	apierrors.Success(c, message, data)
}

func bindTaskRequest(c *gin.Context, req *dto.TaskRequest) error {
	if c.Request.Method == http.MethodGet {
		return c.ShouldBindQuery(req)
	}
	if c.Request.ContentLength == 0 {
		return c.ShouldBindQuery(req)
	}
	if err := c.ShouldBind(req); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *TaskHandler) respondError(c *gin.Context, action string, err error) {
	var badRequest requestError
	var notApplied notAppliedError

	switch {
	case errors.As(err, &badRequest):
		apierrors.BadRequest(c, badRequest.Error())
		return
	case errors.As(err, &notApplied):
		apierrors.OperationFailed(c, notApplied.Error())
		return
	}

	switch services.KindOf(err) {
	case services.KindValidation:
		apierrors.BadRequest(c, err.Error())
	case services.KindNotFound:
		apierrors.NotFound(c, err.Error())
	case services.KindInvalidOperation:
		apierrors.Conflict(c, err.Error())
	default:
		h.logger.Error("request failed",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(c, "")
	}
}

// requireID reads a mandatory id parameter.
func requireID(id *uint64, field string) (uint64, error) {
	if id == nil || *id == 0 {
		return 0, requestError(field + " is required")
	}
	return *id, nil
}

// optionalParent maps a missing or zero parent id to the root column.
func optionalParent(id *uint64) *uint64 {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}
