package services

import (
	"fmt"

	"github.com/yukikurage/column-task-api/internal/models"
	"github.com/yukikurage/column-task-api/internal/repository"
)

// Placement selects where MoveRelative puts a task relative to its target.
type Placement string

const (
	PlacementBefore Placement = "before"
	PlacementAfter  Placement = "after"
	PlacementInto   Placement = "into"
)

// UpdateParent moves a task, with its subtree, under newParentID (nil moves it
// to the root column). The task is appended to its new sibling group.
func (s *TaskService) UpdateParent(taskID uint64, newParentID *uint64) (*models.Task, error) {
	err := s.taskRepo.Transaction(func(repo repository.TaskRepository) error {
		task, err := repo.FindByID(taskID)
		if err != nil {
			return notFound(err, ErrTaskNotFound, "failed to find task")
		}
		return reparent(repo, task, newParentID, ErrParentNotFound)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTask(taskID)
}

// MoveRelative places a task before or after targetID among the target's
// siblings, or appends it as the last child of targetID.
func (s *TaskService) MoveRelative(taskID, targetID uint64, placement Placement) (*models.Task, error) {
	switch placement {
	case PlacementBefore, PlacementAfter, PlacementInto:
	default:
		return nil, ErrInvalidPlacement
	}

	err := s.taskRepo.Transaction(func(repo repository.TaskRepository) error {
		task, err := repo.FindByID(taskID)
		if err != nil {
			return notFound(err, ErrTaskNotFound, "failed to find task")
		}
		if targetID == taskID {
			return ErrMoveIntoSelf
		}
		if placement == PlacementInto {
			return reparent(repo, task, &targetID, ErrTargetNotFound)
		}

		target, err := repo.FindByID(targetID)
		if err != nil {
			return notFound(err, ErrTargetNotFound, "failed to find target task")
		}

		level := 1
		if target.ParentID != nil {
			parent, err := checkNewParent(repo, taskID, *target.ParentID, ErrTargetNotFound)
			if err != nil {
				return err
			}
			level = parent.ColumnLevel + 1
		}

		siblings, err := repo.ListSiblings(target.ParentID)
		if err != nil {
			return fmt.Errorf("failed to list siblings: %w", err)
		}

		ordered := make([]models.Task, 0, len(siblings)+1)
		for _, sibling := range siblings {
			if sibling.ID == taskID {
				continue
			}
			if sibling.ID == targetID && placement == PlacementBefore {
				ordered = append(ordered, *task)
			}
			ordered = append(ordered, sibling)
			if sibling.ID == targetID && placement == PlacementAfter {
				ordered = append(ordered, *task)
			}
		}

		position := 0
		for i, sibling := range ordered {
			want := i + 1
			if sibling.ID == taskID {
				position = want
				continue
			}
			if sibling.PositionOrder == want {
				continue
			}
			if _, err := repo.Update(sibling.ID, map[string]any{"position_order": want}); err != nil {
				return fmt.Errorf("failed to renumber siblings: %w", err)
			}
		}

		return relocate(repo, task, target.ParentID, level, position)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTask(taskID)
}

// reparent appends task to the children of newParentID after rejecting moves
// that would create a cycle.
func reparent(repo repository.TaskRepository, task *models.Task, newParentID *uint64, missing error) error {
	level := 1
	if newParentID != nil {
		if *newParentID == task.ID {
			return ErrMoveIntoSelf
		}
		parent, err := checkNewParent(repo, task.ID, *newParentID, missing)
		if err != nil {
			return err
		}
		level = parent.ColumnLevel + 1
	}

	position, err := repo.NextPosition(newParentID)
	if err != nil {
		return fmt.Errorf("failed to compute position: %w", err)
	}
	if sameParent(task.ParentID, newParentID) && task.PositionOrder == position-1 {
		// Already the last child.
		position = task.PositionOrder
	}

	return relocate(repo, task, newParentID, level, position)
}

// checkNewParent loads the proposed parent and walks its ancestor chain,
// rejecting it when taskID appears there.
func checkNewParent(repo repository.TaskRepository, taskID, parentID uint64, missing error) (*models.Task, error) {
	if parentID == taskID {
		return nil, ErrMoveIntoDescendant
	}

	parent, err := repo.FindByID(parentID)
	if err != nil {
		return nil, notFound(err, missing, "failed to find parent task")
	}

	seen := map[uint64]struct{}{parent.ID: {}}
	for ancestorID := parent.ParentID; ancestorID != nil; {
		if *ancestorID == taskID {
			return nil, ErrMoveIntoDescendant
		}
		if _, loop := seen[*ancestorID]; loop {
			break
		}
		seen[*ancestorID] = struct{}{}

		ancestor, err := repo.FindByID(*ancestorID)
		if err != nil {
			return nil, notFound(err, ErrParentNotFound, "failed to find ancestor")
		}
		ancestorID = ancestor.ParentID
	}

	return parent, nil
}

// relocate writes the new parent, level and position of task and realigns the
// levels of its descendants.
func relocate(repo repository.TaskRepository, task *models.Task, parentID *uint64, level, position int) error {
	if _, err := repo.Update(task.ID, map[string]any{
		"parent_id":      parentID,
		"column_level":   level,
		"position_order": position,
	}); err != nil {
		return fmt.Errorf("failed to move task: %w", err)
	}

	if level == task.ColumnLevel {
		return nil
	}

	descendants, err := collectSubtree(repo, task.ID)
	if err != nil {
		return err
	}
	for depth, ids := range descendants {
		if err := repo.SetLevel(ids, level+depth+1); err != nil {
			return fmt.Errorf("failed to update subtree levels: %w", err)
		}
	}
	return nil
}

func sameParent(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
