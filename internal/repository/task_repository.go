package repository

import (
	"database/sql"
	"strings"

	"github.com/yukikurage/column-task-api/internal/constants"
	"github.com/yukikurage/column-task-api/internal/models"
	"gorm.io/gorm"
)

const (
	siblingOrder = "position_order ASC, id ASC"
	levelOrder   = "column_level ASC, position_order ASC, id ASC"
	priorityRank = "CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC"
	hasExternal  = "(COALESCE(external_thread_id, '') <> '' OR COALESCE(external_message_id, '') <> '')"
	noExternal   = "(COALESCE(external_thread_id, '') = '' AND COALESCE(external_message_id, '') = '')"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts a task and fills in its ID
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListRoots lists tasks without a parent in sibling order
func (r *GormTaskRepository) ListRoots() ([]models.Task, error) {
	return r.ListSiblings(nil)
}

// ListChildren lists the direct children of a task in sibling order
func (r *GormTaskRepository) ListChildren(parentID uint64) ([]models.Task, error) {
	return r.ListSiblings(&parentID)
}

// ListSiblings lists the tasks sharing parentID in sibling order
func (r *GormTaskRepository) ListSiblings(parentID *uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Scopes(withParent(parentID)).Order(siblingOrder).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByParentIDs lists the children of all given parents
func (r *GormTaskRepository) ListByParentIDs(parentIDs []uint64) ([]models.Task, error) {
	if len(parentIDs) == 0 {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	if err := r.db.Where("parent_id IN ?", parentIDs).
		Order("parent_id ASC, " + siblingOrder).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByLevel lists all tasks of a column level
func (r *GormTaskRepository) ListByLevel(level int) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("column_level = ?", level).Order(siblingOrder).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountChildren returns the number of direct children per parent ID
func (r *GormTaskRepository) CountChildren(parentIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(parentIDs))
	if len(parentIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ParentID   uint64
		ChildCount int64
	}
	if err := r.db.Model(&models.Task{}).
		Select("parent_id, COUNT(*) AS child_count").
		Where("parent_id IN ?", parentIDs).
		Group("parent_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.ParentID] = row.ChildCount
	}
	return counts, nil
}

// NextPosition returns max(position_order)+1 among the children of parentID,
// or the first position when the group is empty
func (r *GormTaskRepository) NextPosition(parentID *uint64) (int, error) {
	var last sql.NullInt64
	if err := r.db.Model(&models.Task{}).
		Scopes(withParent(parentID)).
		Select("MAX(position_order)").
		Row().
		Scan(&last); err != nil {
		return 0, err
	}
	if !last.Valid {
		return constants.FirstPosition, nil
	}
	return int(last.Int64) + 1, nil
}

// Update writes the given columns of one task
func (r *GormTaskRepository) Update(id uint64, fields map[string]any) (int64, error) {
	result := r.db.Model(&models.Task{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

// SetLevel sets column_level of every given task
func (r *GormTaskRepository) SetLevel(ids []uint64, level int) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.Task{}).
		Where("id IN ?", ids).
		Update("column_level", level).Error
}

// DeleteByIDs deletes the given tasks
func (r *GormTaskRepository) DeleteByIDs(ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("id IN ?", ids).Delete(&models.Task{})
	return result.RowsAffected, result.Error
}

// Search matches term case-insensitively against title and description
func (r *GormTaskRepository) Search(term string) ([]models.Task, error) {
	pattern := "%" + escapeLike(term) + "%"

	var tasks []models.Task
	if err := r.db.
		Where("LOWER(title) LIKE LOWER(?) ESCAPE '!' OR LOWER(description) LIKE LOWER(?) ESCAPE '!'", pattern, pattern).
		Order(levelOrder).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Filter lists tasks across the whole forest
func (r *GormTaskRepository) Filter(filter TaskFilter) ([]models.Task, error) {
	query := r.db.Model(&models.Task{})

	if len(filter.Priorities) > 0 {
		query = query.Where("priority IN ?", filter.Priorities)
	}
	switch filter.Status {
	case StatusPending:
		query = query.Where("is_completed = ?", false)
	case StatusCompleted:
		query = query.Where("is_completed = ?", true)
	}
	if filter.HasExternalRef != nil {
		if *filter.HasExternalRef {
			query = query.Where(hasExternal)
		} else {
			query = query.Where(noExternal)
		}
	}
	if filter.LevelMin != nil {
		query = query.Where("column_level >= ?", *filter.LevelMin)
	}
	if filter.LevelMax != nil {
		query = query.Where("column_level <= ?", *filter.LevelMax)
	}

	switch filter.Order {
	case OrderUpdatedDesc:
		query = query.Order("updated_at DESC, id DESC")
	case OrderCreatedDesc:
		query = query.Order("created_at DESC, id DESC")
	case OrderCreatedAsc:
		query = query.Order("created_at ASC, id ASC")
	case OrderPosition:
		query = query.Order(levelOrder)
	default:
		query = query.Order(priorityRank + ", " + levelOrder)
	}

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Stats aggregates counts over all tasks
func (r *GormTaskRepository) Stats() (*TaskStats, error) {
	var stats TaskStats
	if err := r.db.Model(&models.Task{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN is_completed = ? THEN 1 ELSE 0 END), 0) AS completed, "+
			"COALESCE(MAX(column_level), 0) AS max_depth", true).
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// Transaction runs fn against a repository bound to a single transaction
func (r *GormTaskRepository) Transaction(fn func(repo TaskRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormTaskRepository{db: tx})
	})
}

// withParent scopes a query to one sibling group
func withParent(parentID *uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if parentID == nil {
			return db.Where("parent_id IS NULL")
		}
		return db.Where("parent_id = ?", *parentID)
	}
}

// escapeLike escapes LIKE wildcards using '!' as the escape character
func escapeLike(term string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(term)
}
