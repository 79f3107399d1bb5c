package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/course-stream/internal/model"
)

// ModuleRepo reads modules.  Module writes belong to course administration
// and are not exposed here.
type ModuleRepo struct {
	db *sql.DB
}

func NewModuleRepo(db *sql.DB) *ModuleRepo {
	return &ModuleRepo{db: db}
}

// GetByID returns the module with its parent course id, or ErrNotFound.
func (r *ModuleRepo) GetByID(ctx context.Context, id string) (*model.Module, error) {
	const q = `SELECT id, course_id, title, description, video_id, created_at, updated_at
	           FROM modules WHERE id = ?`
	var m model.Module
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&m.ID, &m.CourseID, &m.Title, &m.Description, &m.VideoID, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get module: %w", err)
	}
	return &m, nil
}
