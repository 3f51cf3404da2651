package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/column-task-api/internal/constants"
	"github.com/yukikurage/column-task-api/internal/dto"
	"github.com/yukikurage/column-task-api/internal/models"
	"github.com/yukikurage/column-task-api/internal/services"
)

func priorityOf(req *dto.TaskRequest) models.TaskPriority {
	return models.TaskPriority(strings.ToLower(strings.TrimSpace(req.Priority)))
}

func (h *TaskHandler) create(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		ParentID:    optionalParent(req.ParentID),
		Priority:    priorityOf(req),
		External:    req.ExternalRefs(),
	})
	if err != nil {
		return "", nil, err
	}
	return "Task created", dto.ToTaskDTO(*task), nil
}

func (h *TaskHandler) get(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	id, err := requireID(req.ID, "id")
	if err != nil {
		return "", nil, err
	}

	task, err := h.taskService.GetTask(id)
	if err != nil {
		return "", nil, err
	}
	return "", dto.ToTaskDTO(*task), nil
}

func (h *TaskHandler) update(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	id, err := requireID(req.ID, "id")
	if err != nil {
		return "", nil, err
	}

	ok, err := h.taskService.UpdateTask(id, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    priorityOf(req),
	})
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, notAppliedError("Task not found or not updated")
	}

	task, err := h.taskService.GetTask(id)
	if err != nil {
		return "", nil, err
	}
	return "Task updated", dto.ToTaskDTO(*task), nil
}

func (h *TaskHandler) delete(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	id, err := requireID(req.ID, "id")
	if err != nil {
		return "", nil, err
	}

	ok, err := h.taskService.DeleteTask(id)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, notAppliedError("Task not found")
	}
	return "Task deleted", nil, nil
}

func (h *TaskHandler) toggleComplete(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	id, err := requireID(req.ID, "id")
	if err != nil {
		return "", nil, err
	}
	if req.IsCompleted == nil {
		return "", nil, requestError("is_completed is required")
	}

	task, err := h.taskService.SetCompleted(id, *req.IsCompleted)
	if err != nil {
		return "", nil, err
	}
	return "Task status updated", dto.ToTaskDTO(*task), nil
}

func (h *TaskHandler) getChildren(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	parentID, err := requireID(req.ParentID, "parent_id")
	if err != nil {
		return "", nil, err
	}

	views, err := h.taskService.GetChildTasks(parentID)
	if err != nil {
		return "", nil, err
	}
	return "", dto.ToTaskViewDTOs(views), nil
}

func (h *TaskHandler) getRootTasks(_ *gin.Context, _ *dto.TaskRequest) (string, interface{}, error) {
	views, err := h.taskService.GetRootTasks()
	if err != nil {
		return "", nil, err
	}
	return "", dto.ToTaskViewDTOs(views), nil
}

func (h *TaskHandler) getColumnStructure(_ *gin.Context, _ *dto.TaskRequest) (string, interface{}, error) {
	views, err := h.taskService.GetColumnStructure()
	if err != nil {
		return "", nil, err
	}
	return "", dto.ToTaskViewDTOs(views), nil
}

func (h *TaskHandler) getTaskTree(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	id, err := requireID(req.ID, "id")
	if err != nil {
		return "", nil, err
	}

	tree, err := h.taskService.GetTaskTree(id)
	if err != nil {
		return "", nil, err
	}
	return "", dto.ToTaskNodeDTO(tree), nil
}

func (h *TaskHandler) search(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	tasks, err := h.taskService.Search(req.Term)
	if err != nil {
		return "", nil, err
	}
	return "", dto.ToTaskDTOs(tasks), nil
}

func (h *TaskHandler) getStats(_ *gin.Context, _ *dto.TaskRequest) (string, interface{}, error) {
	stats, err := h.taskService.GetStats()
	if err != nil {
		return "", nil, err
	}
	return "", dto.ToStatsDTO(stats), nil
}

func (h *TaskHandler) updatePosition(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	id, err := requireID(req.ID, "id")
	if err != nil {
		return "", nil, err
	}
	if req.Position == nil {
		return "", nil, requestError("position is required")
	}

	ok, err := h.taskService.UpdatePosition(id, *req.Position)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, notAppliedError("Task not found")
	}
	return "Position updated", nil, nil
}

func (h *TaskHandler) updateParent(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	id, err := requireID(req.ID, "id")
	if err != nil {
		return "", nil, err
	}

	task, err := h.taskService.UpdateParent(id, optionalParent(req.ParentID))
	if err != nil {
		return "", nil, err
	}
	return "Task moved", dto.ToTaskDTO(*task), nil
}

func (h *TaskHandler) moveRelative(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	id, err := requireID(req.ID, "id")
	if err != nil {
		return "", nil, err
	}
	targetID, err := requireID(req.TargetID, "target_id")
	if err != nil {
		return "", nil, err
	}

	placement := services.Placement(strings.ToLower(strings.TrimSpace(req.Placement)))
	task, err := h.taskService.MoveRelative(id, targetID, placement)
	if err != nil {
		return "", nil, err
	}
	return "Task moved", dto.ToTaskDTO(*task), nil
}

func (h *TaskHandler) filter(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	tasks, err := h.taskService.Filter(services.FilterInput{
		Priorities:     req.PriorityList(),
		Status:         strings.ToLower(strings.TrimSpace(req.Status)),
		HasExternalRef: req.HasExternalRef,
		LevelMin:       req.LevelMin,
		LevelMax:       req.LevelMax,
		Order:          strings.ToLower(strings.TrimSpace(req.Order)),
	})
	if err != nil {
		return "", nil, err
	}
	return "", dto.ToTaskDTOs(tasks), nil
}

func (h *TaskHandler) getUrgent(_ *gin.Context, _ *dto.TaskRequest) (string, interface{}, error) {
	tasks, err := h.taskService.UrgentTasks()
	if err != nil {
		return "", nil, err
	}
	return "", dto.ToTaskDTOs(tasks), nil
}

func (h *TaskHandler) getByLevel(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	if req.Level == nil {
		return "", nil, requestError("level is required")
	}

	views, err := h.taskService.GetTasksByLevel(*req.Level)
	if err != nil {
		return "", nil, err
	}
	return "", dto.ToTaskViewDTOs(views), nil
}

func (h *TaskHandler) getAncestors(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	id, err := requireID(req.ID, "id")
	if err != nil {
		return "", nil, err
	}

	chain, err := h.taskService.GetAncestors(id)
	if err != nil {
		return "", nil, err
	}
	return "", dto.ToTaskDTOs(chain), nil
}

func (h *TaskHandler) attachExternal(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	id, err := requireID(req.ID, "id")
	if err != nil {
		return "", nil, err
	}

	task, err := h.taskService.AttachExternalRefs(id, req.ExternalRefs())
	if err != nil {
		return "", nil, err
	}
	return "External references saved", dto.ToTaskDTO(*task), nil
}

func (h *TaskHandler) createFromMail(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	task, err := h.taskService.CreateFromMailReference(services.CreateFromMailInput{
		Reference:   req.Reference,
		Title:       req.Title,
		Description: req.Description,
		ParentID:    optionalParent(req.ParentID),
		Priority:    priorityOf(req),
	})
	if err != nil {
		return "", nil, err
	}
	return "Task created from mail", dto.ToTaskDTO(*task), nil
}

func (h *TaskHandler) suggestSubtasks(c *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	id, err := requireID(req.ID, "id")
	if err != nil {
		return "", nil, err
	}

	suggestions, created, err := h.taskService.GenerateSubtasks(c.Request.Context(), id, req.Create)
	if err != nil {
		return "", nil, err
	}

	message := "Subtasks suggested"
	if req.Create {
		message = "Subtasks created"
	}
	return message, dto.ToSuggestionsDTO(suggestions, created), nil
}

func (h *TaskHandler) providerStatus(_ *gin.Context, req *dto.TaskRequest) (string, interface{}, error) {
	provider := strings.TrimSpace(req.Provider)
	if provider == "" {
		provider = constants.ProviderGoogle
	}

	status, err := h.providerService.Status(provider)
	if err != nil {
		return "", nil, err
	}
	return "", dto.ToProviderStatusDTO(status), nil
}
