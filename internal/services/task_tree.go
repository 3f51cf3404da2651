package services

import (
	"fmt"

	"github.com/yukikurage/column-task-api/internal/models"
	"github.com/yukikurage/column-task-api/internal/repository"
)

// TaskView is a task annotated for column rendering.
type TaskView struct {
	models.Task
	HasChildren bool
	ChildCount  int64
}

// TaskNode is a task with its fully materialised subtree.
type TaskNode struct {
	models.Task
	Children []*TaskNode
}

// GetRootTasks returns the first column: root tasks in sibling order
func (s *TaskService) GetRootTasks() ([]TaskView, error) {
	tasks, err := s.taskRepo.ListRoots()
	if err != nil {
		return nil, fmt.Errorf("failed to list root tasks: %w", err)
	}
	return s.annotate(tasks)
}

// GetChildTasks returns the direct children of parentID in sibling order.
// An unknown parent has no children.
func (s *TaskService) GetChildTasks(parentID uint64) ([]TaskView, error) {
	tasks, err := s.taskRepo.ListChildren(parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child tasks: %w", err)
	}
	return s.annotate(tasks)
}

// GetColumnStructure returns the root column with per-task child counts
func (s *TaskService) GetColumnStructure() ([]TaskView, error) {
	return s.GetRootTasks()
}

// GetTasksByLevel returns every task of one column level
func (s *TaskService) GetTasksByLevel(level int) ([]TaskView, error) {
	if level < 1 {
		return nil, ErrInvalidLevelRange
	}
	tasks, err := s.taskRepo.ListByLevel(level)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by level: %w", err)
	}
	return s.annotate(tasks)
}

// GetTaskTree returns a task with its whole subtree. Trees deeper than the
// configured maximum are rejected.
func (s *TaskService) GetTaskTree(taskID uint64) (*TaskNode, error) {
	root, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	rootNode := &TaskNode{Task: *root, Children: []*TaskNode{}}
	nodes := map[uint64]*TaskNode{root.ID: rootNode}
	frontier := []uint64{root.ID}

	for depth := 1; len(frontier) > 0; depth++ {
		children, err := s.taskRepo.ListByParentIDs(frontier)
		if err != nil {
			return nil, fmt.Errorf("failed to load subtree: %w", err)
		}
		if len(children) == 0 {
			break
		}
		if depth >= s.maxTreeDepth {
			return nil, ErrTreeTooDeep
		}

		next := make([]uint64, 0, len(children))
		for _, child := range children {
			if _, seen := nodes[child.ID]; seen || child.ParentID == nil {
				continue
			}
			parent, ok := nodes[*child.ParentID]
			if !ok {
				continue
			}
			node := &TaskNode{Task: child, Children: []*TaskNode{}}
			nodes[child.ID] = node
			parent.Children = append(parent.Children, node)
			next = append(next, child.ID)
		}
		frontier = next
	}

	return rootNode, nil
}

// GetAncestors returns the chain of ancestors of a task, root first
func (s *TaskService) GetAncestors(taskID uint64) ([]models.Task, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	var chain []models.Task
	seen := map[uint64]struct{}{task.ID: {}}
	for parentID := task.ParentID; parentID != nil; {
		if _, loop := seen[*parentID]; loop {
			break
		}
		if len(chain) >= s.maxTreeDepth {
			return nil, ErrTreeTooDeep
		}
		parent, err := s.taskRepo.FindByID(*parentID)
		if err != nil {
			return nil, notFound(err, ErrParentNotFound, "failed to find ancestor")
		}
		seen[parent.ID] = struct{}{}
		chain = append(chain, *parent)
		parentID = parent.ParentID
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func (s *TaskService) annotate(tasks []models.Task) ([]TaskView, error) {
	ids := make([]uint64, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}

	counts, err := s.taskRepo.CountChildren(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count children: %w", err)
	}

	views := make([]TaskView, len(tasks))
	for i, task := range tasks {
		views[i] = TaskView{
			Task:        task,
			HasChildren: counts[task.ID] > 0,
			ChildCount:  counts[task.ID],
		}
	}
	return views, nil
}

// collectSubtree returns the descendants of rootID grouped by distance: index
// 0 holds the children, index 1 the grandchildren and so on. Depth is not
// bounded.
func collectSubtree(repo repository.TaskRepository, rootID uint64) ([][]uint64, error) {
	var levels [][]uint64
	seen := map[uint64]struct{}{rootID: {}}
	frontier := []uint64{rootID}

	for len(frontier) > 0 {
		children, err := repo.ListByParentIDs(frontier)
		if err != nil {
			return nil, fmt.Errorf("failed to load subtree: %w", err)
		}

		next := make([]uint64, 0, len(children))
		for _, child := range children {
			if _, ok := seen[child.ID]; ok {
				continue
			}
			seen[child.ID] = struct{}{}
			next = append(next, child.ID)
		}
		if len(next) == 0 {
			break
		}
		levels = append(levels, next)
		frontier = next
	}

	return levels, nil
}
