package store

import (
	"context"
	"errors"
	"testing"

	"bulletnotes/models"
)

func seedUsers(t *testing.T, users *UserStore) (models.User, models.User) {
	t.Helper()
	ctx := context.Background()
	alice, err := users.Create(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	eve, err := users.Create(ctx, "eve", "pw2")
	if err != nil {
		t.Fatalf("create eve: %v", err)
	}
	return alice, eve
}

func TestNoteCRUD(t *testing.T) {
	sqlDB := newTestDB(t)
	notes := &NoteStore{DB: sqlDB}
	alice, eve := seedUsers(t, &UserStore{DB: sqlDB})
	ctx := context.Background()

	note, err := notes.CreateNote(ctx, alice.ID, "Groceries")
	if err != nil {
		t.Fatalf("CreateNote returned error: %v", err)
	}
	if note.UserID != alice.ID {
		t.Errorf("Expected owner %d, got %d", alice.ID, note.UserID)
	}
	if note.BulletPoints == nil || len(note.BulletPoints) != 0 {
		t.Errorf("Expected empty bullet point slice, got %v", note.BulletPoints)
	}

	t.Run("Get by owner", func(t *testing.T) {
		got, err := notes.GetNote(ctx, alice.ID, note.ID)
		if err != nil {
			t.Fatalf("GetNote returned error: %v", err)
		}
		if got.Title != "Groceries" {
			t.Errorf("Expected title Groceries, got %q", got.Title)
		}
	})

	t.Run("Get by non-owner is not found", func(t *testing.T) {
		// Not-owned must be indistinguishable from absent.
		if _, err := notes.GetNote(ctx, eve.ID, note.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound for non-owner, got %v", err)
		}
	})

	t.Run("Update title", func(t *testing.T) {
		title := "Shopping"
		updated, err := notes.UpdateNote(ctx, alice.ID, note.ID, &title)
		if err != nil {
			t.Fatalf("UpdateNote returned error: %v", err)
		}
		if updated.Title != "Shopping" {
			t.Errorf("Expected title Shopping, got %q", updated.Title)
		}
		if updated.UpdatedAt.Before(note.UpdatedAt) {
			t.Error("updated_at did not advance")
		}
	})

	t.Run("Update with nil title keeps the title", func(t *testing.T) {
		updated, err := notes.UpdateNote(ctx, alice.ID, note.ID, nil)
		if err != nil {
			t.Fatalf("UpdateNote returned error: %v", err)
		}
		if updated.Title != "Shopping" {
			t.Errorf("Expected title unchanged, got %q", updated.Title)
		}
	})

	t.Run("Update by non-owner is not found", func(t *testing.T) {
		title := "stolen"
		if _, err := notes.UpdateNote(ctx, eve.ID, note.ID, &title); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List is newest first per owner", func(t *testing.T) {
		second, err := notes.CreateNote(ctx, alice.ID, "Second")
		if err != nil {
			t.Fatalf("CreateNote returned error: %v", err)
		}
		listed, err := notes.ListNotes(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListNotes returned error: %v", err)
		}
		if len(listed) != 2 {
			t.Fatalf("Expected 2 notes, got %d", len(listed))
		}
		if listed[0].ID != second.ID {
			t.Errorf("Expected newest note first, got id %d", listed[0].ID)
		}

		other, err := notes.ListNotes(ctx, eve.ID)
		if err != nil {
			t.Fatalf("ListNotes returned error: %v", err)
		}
		if len(other) != 0 {
			t.Errorf("Expected no notes for eve, got %d", len(other))
		}
	})

	t.Run("Delete by non-owner is not found", func(t *testing.T) {
		if err := notes.DeleteNote(ctx, eve.ID, note.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete by owner", func(t *testing.T) {
		if err := notes.DeleteNote(ctx, alice.ID, note.ID); err != nil {
			t.Fatalf("DeleteNote returned error: %v", err)
		}
		if _, err := notes.GetNote(ctx, alice.ID, note.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestBulletPointCRUD(t *testing.T) {
	sqlDB := newTestDB(t)
	notes := &NoteStore{DB: sqlDB}
	alice, eve := seedUsers(t, &UserStore{DB: sqlDB})
	ctx := context.Background()

	note, err := notes.CreateNote(ctx, alice.ID, "Groceries")
	if err != nil {
		t.Fatalf("CreateNote returned error: %v", err)
	}

	bullet, err := notes.CreateBulletPoint(ctx, alice.ID, note.ID, "milk", false)
	if err != nil {
		t.Fatalf("CreateBulletPoint returned error: %v", err)
	}
	if bullet.NoteID != note.ID {
		t.Errorf("Expected note id %d, got %d", note.ID, bullet.NoteID)
	}

	t.Run("Create under someone else's note is not found", func(t *testing.T) {
		if _, err := notes.CreateBulletPoint(ctx, eve.ID, note.ID, "bread", false); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Get note includes bullet points", func(t *testing.T) {
		got, err := notes.GetNote(ctx, alice.ID, note.ID)
		if err != nil {
			t.Fatalf("GetNote returned error: %v", err)
		}
		if len(got.BulletPoints) != 1 || got.BulletPoints[0].Content != "milk" {
			t.Errorf("Expected one bullet point 'milk', got %v", got.BulletPoints)
		}
	})

	t.Run("Update replaces content and completed", func(t *testing.T) {
		updated, err := notes.UpdateBulletPoint(ctx, alice.ID, note.ID, bullet.ID, "oat milk", true)
		if err != nil {
			t.Fatalf("UpdateBulletPoint returned error: %v", err)
		}
		if updated.Content != "oat milk" || !updated.Completed {
			t.Errorf("Expected replaced fields, got %+v", updated)
		}
	})

	t.Run("Update through non-owner is not found", func(t *testing.T) {
		if _, err := notes.UpdateBulletPoint(ctx, eve.ID, note.ID, bullet.ID, "x", false); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List is in creation order", func(t *testing.T) {
		if _, err := notes.CreateBulletPoint(ctx, alice.ID, note.ID, "eggs", false); err != nil {
			t.Fatalf("CreateBulletPoint returned error: %v", err)
		}
		bullets, err := notes.ListBulletPoints(ctx, alice.ID, note.ID)
		if err != nil {
			t.Fatalf("ListBulletPoints returned error: %v", err)
		}
		if len(bullets) != 2 {
			t.Fatalf("Expected 2 bullet points, got %d", len(bullets))
		}
		if bullets[0].ID != bullet.ID {
			t.Errorf("Expected oldest bullet first, got id %d", bullets[0].ID)
		}
	})

	t.Run("Delete missing bullet is not found", func(t *testing.T) {
		if err := notes.DeleteBulletPoint(ctx, alice.ID, note.ID, 999); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Deleting the note cascades to bullet points", func(t *testing.T) {
		if err := notes.DeleteNote(ctx, alice.ID, note.ID); err != nil {
			t.Fatalf("DeleteNote returned error: %v", err)
		}
		var count int
		sqlDB.QueryRow("SELECT COUNT(*) FROM bullet_points WHERE note_id = ?", note.ID).Scan(&count)
		if count != 0 {
			t.Errorf("Expected 0 bullet points after note delete, got %d", count)
		}
	})
}
