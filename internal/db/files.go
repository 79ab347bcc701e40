package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/emsi-platform/studyhub/internal/models"
	"github.com/google/uuid"
)

const fileColumns = `id, user_id, course_id, file_name, file_path, file_type, file_size, uploaded_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*models.FileRecord, error) {
	var f models.FileRecord
	if err := s.Scan(&f.ID, &f.UserID, &f.CourseID, &f.FileName, &f.FilePath, &f.FileType, &f.FileSize, &f.UploadedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (db *Database) CreateFile(ctx context.Context, f *models.FileRecord) error {
	f.ID = uuid.NewString()
	f.UploadedAt = db.now()
	_, err := db.db.ExecContext(ctx, `
        INSERT INTO files (`+fileColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.CourseID, f.FileName, f.FilePath, f.FileType, f.FileSize, f.UploadedAt)
	return err
}

// FindFileByName returns the most recently uploaded file with exactly this name,
// or nil when there is none. An empty ownerID searches every owner.
func (db *Database) FindFileByName(ctx context.Context, ownerID, name string) (*models.FileRecord, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE file_name = ?`
	args := []any{name}
	if ownerID != "" {
		query += ` AND user_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY uploaded_at DESC, rowid DESC LIMIT 1`

	f, err := scanFile(db.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (db *Database) GetFile(ctx context.Context, id string) (*models.FileRecord, error) {
	f, err := scanFile(db.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return f, err
}

func (db *Database) ListFiles(ctx context.Context, userID, courseID string) ([]models.FileRecord, error) {
	rows, err := db.db.QueryContext(ctx, `
        SELECT `+fileColumns+`
        FROM files
        WHERE user_id = ? AND course_id = ?
        ORDER BY uploaded_at ASC, rowid ASC`, userID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]models.FileRecord, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

func (db *Database) DeleteFile(ctx context.Context, id string) error {
	res, err := db.db.ExecContext(ctx, "DELETE FROM files WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
