package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/column-task-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the filter-panel indexes that are not declared on the model
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		name    string
		columns string
	}{
		// Filter panel: status + priority, newest first
		{"idx_tasks_completed_priority", "is_completed, priority"},
		{"idx_tasks_updated_at", "updated_at"},
		{"idx_tasks_created_at", "created_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(&models.Task{}, idx.name) {
			log.Printf("Index %s already exists, skipping", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON tasks (%s)", idx.name, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on tasks(%s)", idx.name, idx.columns)
	}

	return nil
}

// MigrateDatabase runs the schema migration followed by the extra indexes
func MigrateDatabase(db *gorm.DB) error {
	if err := Migrate(db); err != nil {
		return err
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
