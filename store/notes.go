package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bulletnotes/models"
)

// NoteStore persists notes and their bullet points. Every operation takes the
// acting user's id and resolves nothing that user does not own.
type NoteStore struct {
	DB *sql.DB
}

func (s *NoteStore) CreateNote(ctx context.Context, ownerID int, title string) (models.Note, error) {
	now := time.Now().UTC()
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO notes (title, user_id, created_at, updated_at) VALUES (?, ?, ?, ?)",
		title, ownerID, toMillis(now), toMillis(now))
	if err != nil {
		return models.Note{}, fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Note{}, fmt.Errorf("insert note: %w", err)
	}
	return models.Note{
		ID:           int(id),
		Title:        title,
		UserID:       ownerID,
		CreatedAt:    now,
		UpdatedAt:    now,
		BulletPoints: []models.BulletPoint{},
	}, nil
}

// ListNotes returns all notes owned by the user, newest first, each with its
// bullet points in creation order.
func (s *NoteStore) ListNotes(ctx context.Context, ownerID int) ([]models.Note, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT id, title, user_id, created_at, updated_at FROM notes WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	for i := range notes {
		bullets, err := s.listBullets(ctx, notes[i].ID)
		if err != nil {
			return nil, err
		}
		notes[i].BulletPoints = bullets
	}
	return notes, nil
}

// GetNote returns the note with its bullet points, or ErrNotFound when the
// note is absent or owned by someone else.
func (s *NoteStore) GetNote(ctx context.Context, ownerID, noteID int) (models.Note, error) {
	note, err := s.getOwnedNote(ctx, ownerID, noteID)
	if err != nil {
		return models.Note{}, err
	}
	bullets, err := s.listBullets(ctx, note.ID)
	if err != nil {
		return models.Note{}, err
	}
	note.BulletPoints = bullets
	return note, nil
}

// UpdateNote applies the provided fields only; a nil title leaves the title
// untouched. updated_at is refreshed either way.
func (s *NoteStore) UpdateNote(ctx context.Context, ownerID, noteID int, title *string) (models.Note, error) {
	note, err := s.getOwnedNote(ctx, ownerID, noteID)
	if err != nil {
		return models.Note{}, err
	}

	if title != nil {
		note.Title = *title
	}
	note.UpdatedAt = time.Now().UTC()

	if _, err := s.DB.ExecContext(ctx,
		"UPDATE notes SET title = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		note.Title, toMillis(note.UpdatedAt), noteID, ownerID); err != nil {
		return models.Note{}, fmt.Errorf("update note: %w", err)
	}

	bullets, err := s.listBullets(ctx, note.ID)
	if err != nil {
		return models.Note{}, err
	}
	note.BulletPoints = bullets
	return note, nil
}

// DeleteNote removes the note and its bullet points child-first in one
// transaction.
func (s *NoteStore) DeleteNote(ctx context.Context, ownerID, noteID int) error {
	if _, err := s.getOwnedNote(ctx, ownerID, noteID); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete note: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM bullet_points WHERE note_id = ?", noteID); err != nil {
		return fmt.Errorf("delete bullet points: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE id = ? AND user_id = ?", noteID, ownerID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (s *NoteStore) CreateBulletPoint(ctx context.Context, ownerID, noteID int, content string, completed bool) (models.BulletPoint, error) {
	if _, err := s.getOwnedNote(ctx, ownerID, noteID); err != nil {
		return models.BulletPoint{}, err
	}

	now := time.Now().UTC()
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO bullet_points (content, completed, note_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		content, completed, noteID, toMillis(now), toMillis(now))
	if err != nil {
		return models.BulletPoint{}, fmt.Errorf("insert bullet point: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.BulletPoint{}, fmt.Errorf("insert bullet point: %w", err)
	}
	return models.BulletPoint{
		ID:        int(id),
		Content:   content,
		Completed: completed,
		NoteID:    noteID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *NoteStore) ListBulletPoints(ctx context.Context, ownerID, noteID int) ([]models.BulletPoint, error) {
	if _, err := s.getOwnedNote(ctx, ownerID, noteID); err != nil {
		return nil, err
	}
	return s.listBullets(ctx, noteID)
}

// UpdateBulletPoint replaces content and completed unconditionally; bullet
// points have no partial-update semantics.
func (s *NoteStore) UpdateBulletPoint(ctx context.Context, ownerID, noteID, bulletID int, content string, completed bool) (models.BulletPoint, error) {
	if _, err := s.getOwnedNote(ctx, ownerID, noteID); err != nil {
		return models.BulletPoint{}, err
	}

	// Fetch first: MySQL reports zero affected rows for no-op updates, so
	// RowsAffected cannot distinguish "missing" from "unchanged".
	bullet, err := s.getBullet(ctx, noteID, bulletID)
	if err != nil {
		return models.BulletPoint{}, err
	}

	bullet.Content = content
	bullet.Completed = completed
	bullet.UpdatedAt = time.Now().UTC()

	if _, err := s.DB.ExecContext(ctx,
		"UPDATE bullet_points SET content = ?, completed = ?, updated_at = ? WHERE id = ? AND note_id = ?",
		content, completed, toMillis(bullet.UpdatedAt), bulletID, noteID); err != nil {
		return models.BulletPoint{}, fmt.Errorf("update bullet point: %w", err)
	}
	return bullet, nil
}

func (s *NoteStore) DeleteBulletPoint(ctx context.Context, ownerID, noteID, bulletID int) error {
	if _, err := s.getOwnedNote(ctx, ownerID, noteID); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		"DELETE FROM bullet_points WHERE id = ? AND note_id = ?", bulletID, noteID)
	if err != nil {
		return fmt.Errorf("delete bullet point: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bullet point: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NoteStore) getOwnedNote(ctx context.Context, ownerID, noteID int) (models.Note, error) {
	row := s.DB.QueryRowContext(ctx,
		"SELECT id, title, user_id, created_at, updated_at FROM notes WHERE id = ? AND user_id = ?",
		noteID, ownerID)

	var note models.Note
	var createdAt, updatedAt int64
	if err := row.Scan(&note.ID, &note.Title, &note.UserID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Note{}, ErrNotFound
		}
		return models.Note{}, fmt.Errorf("get note: %w", err)
	}
	note.CreatedAt = fromMillis(createdAt)
	note.UpdatedAt = fromMillis(updatedAt)
	return note, nil
}

func (s *NoteStore) getBullet(ctx context.Context, noteID, bulletID int) (models.BulletPoint, error) {
	row := s.DB.QueryRowContext(ctx,
		"SELECT id, content, completed, note_id, created_at, updated_at FROM bullet_points WHERE id = ? AND note_id = ?",
		bulletID, noteID)

	var bullet models.BulletPoint
	var createdAt, updatedAt int64
	if err := row.Scan(&bullet.ID, &bullet.Content, &bullet.Completed, &bullet.NoteID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BulletPoint{}, ErrNotFound
		}
		return models.BulletPoint{}, fmt.Errorf("get bullet point: %w", err)
	}
	bullet.CreatedAt = fromMillis(createdAt)
	bullet.UpdatedAt = fromMillis(updatedAt)
	return bullet, nil
}

func (s *NoteStore) listBullets(ctx context.Context, noteID int) ([]models.BulletPoint, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT id, content, completed, note_id, created_at, updated_at FROM bullet_points WHERE note_id = ? ORDER BY id ASC",
		noteID)
	if err != nil {
		return nil, fmt.Errorf("list bullet points: %w", err)
	}
	defer rows.Close()

	bullets := []models.BulletPoint{}
	for rows.Next() {
		var bullet models.BulletPoint
		var createdAt, updatedAt int64
		if err := rows.Scan(&bullet.ID, &bullet.Content, &bullet.Completed, &bullet.NoteID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan bullet point: %w", err)
		}
		bullet.CreatedAt = fromMillis(createdAt)
		bullet.UpdatedAt = fromMillis(updatedAt)
		bullets = append(bullets, bullet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bullet points: %w", err)
	}
	return bullets, nil
}

func scanNote(rows *sql.Rows) (models.Note, error) {
	var note models.Note
	var createdAt, updatedAt int64
	if err := rows.Scan(&note.ID, &note.Title, &note.UserID, &createdAt, &updatedAt); err != nil {
		return models.Note{}, fmt.Errorf("scan note: %w", err)
	}
	note.CreatedAt = fromMillis(createdAt)
	note.UpdatedAt = fromMillis(updatedAt)
	return note, nil
}
