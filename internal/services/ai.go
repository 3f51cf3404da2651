package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/column-task-api/internal/constants"
	"github.com/yukikurage/column-task-api/internal/models"
	"github.com/yukikurage/column-task-api/internal/repository"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoSubtasks           = errors.New("no subtasks could be suggested for this task")
	ErrTooManySubtasks        = errors.New("task already has too many children to add suggestions")
)

// SubtaskSuggester proposes child tasks for a task
type SubtaskSuggester interface {
	SuggestSubtasks(ctx context.Context, task *models.Task) ([]SuggestedSubtask, error)
}

type AIService struct {
	client *openai.Client
	model  string
}

type SuggestedSubtask struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
}

type suggestionEnvelope struct {
	Subtasks []SuggestedSubtask `json:"subtasks"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// SuggestSubtasks asks the chat model to break task down into smaller steps
func (s *AIService) SuggestSubtasks(ctx context.Context, task *models.Task) ([]SuggestedSubtask, error) {
	if s == nil || s.client == nil {
		return nil, ErrAIServiceNotConfigured
	}

	prompt := fmt.Sprintf(`You are a planning assistant. Break the following task into concrete subtasks.

Title: %s
Description: %s
Priority: %s

Return a JSON object of this shape:
{
  "subtasks": [
    {"title": "short title", "description": "one or two sentences", "priority": "low | medium | high"}
  ]
}

Rules:
- Return between 1 and %d subtasks, in the order they should be done
- Keep titles under 80 characters
- Return JSON only`, task.Title, task.Description, task.Priority, constants.MaxGeneratedSubtasks)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseSuggestions(resp.Choices[0].Message.Content)
}

func parseSuggestions(content string) ([]SuggestedSubtask, error) {
	var envelope suggestionEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	subtasks := make([]SuggestedSubtask, 0, len(envelope.Subtasks))
	for _, st := range envelope.Subtasks {
		st.Title = strings.TrimSpace(st.Title)
		if st.Title == "" {
			continue
		}
		if !st.Priority.Valid() {
			st.Priority = models.PriorityMedium
		}
		subtasks = append(subtasks, st)
		if len(subtasks) == constants.MaxGeneratedSubtasks {
			break
		}
	}
	return subtasks, nil
}

// GenerateSubtasks asks the suggester for children of taskID. With create
// set, the suggestions are appended as children of the task.
func (s *TaskService) GenerateSubtasks(ctx context.Context, taskID uint64, create bool) ([]SuggestedSubtask, []models.Task, error) {
	if s.suggester == nil {
		return nil, nil, ErrAIServiceNotConfigured
	}

	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, nil, err
	}
	if task.ColumnLevel >= s.maxTreeDepth {
		return nil, nil, ErrTreeTooDeep
	}

	suggestions, err := s.suggester.SuggestSubtasks(ctx, task)
	if err != nil {
		return nil, nil, err
	}
	if len(suggestions) == 0 {
		return nil, nil, ErrAINoSubtasks
	}
	if !create {
		return suggestions, nil, nil
	}

	var created []models.Task
	err = s.taskRepo.Transaction(func(repo repository.TaskRepository) error {
		counts, err := repo.CountChildren([]uint64{task.ID})
		if err != nil {
			return fmt.Errorf("failed to count children: %w", err)
		}
		if counts[task.ID]+int64(len(suggestions)) > int64(constants.MaxChildrenForSuggestions) {
			return ErrTooManySubtasks
		}

		position, err := repo.NextPosition(&task.ID)
		if err != nil {
			return fmt.Errorf("failed to compute position: %w", err)
		}

		for i, st := range suggestions {
			child := models.Task{
				Title:         st.Title,
				Description:   st.Description,
				ParentID:      &task.ID,
				ColumnLevel:   task.ColumnLevel + 1,
				PositionOrder: position + i,
				Priority:      st.Priority,
			}
			if err := repo.Create(&child); err != nil {
				return fmt.Errorf("failed to create subtask: %w", err)
			}
			created = append(created, child)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return suggestions, created, nil
}
