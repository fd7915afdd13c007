package services

import (
	"fmt"
	"testing"

	"github.com/readleaf/readleaf_api/dto"
)

func uintPtr(v uint) *uint       { return &v }
func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestGetCheckpointAbsent(t *testing.T) {
	ds, _, checkpointSvc, _, _, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Absent Book", "absent-book")
	user := seedTestUser(t, ds, "student")

	result, err := checkpointSvc.GetCheckpoint(user.ID, fmt.Sprint(book.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Checkpoint != nil {
		t.Fatalf("expected nil checkpoint, got %+v", result.Checkpoint)
	}
}

func TestSaveCheckpointClampsValues(t *testing.T) {
	ds, _, checkpointSvc, _, _, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Clamp Book", "clamp-book")
	user := seedTestUser(t, ds, "student")

	result, err := checkpointSvc.SaveCheckpoint(user.ID, fmt.Sprint(book.ID), &dto.SaveCheckpointRequest{
		PercentComplete:  intPtr(150),
		AudioPositionSec: floatPtr(-5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Checkpoint.PercentComplete != 100 {
		t.Errorf("expected percent clamped to 100, got %d", result.Checkpoint.PercentComplete)
	}
	if result.Checkpoint.AudioPositionSec != 0 {
		t.Errorf("expected audio position clamped to 0, got %v", result.Checkpoint.AudioPositionSec)
	}

	result, err = checkpointSvc.SaveCheckpoint(user.ID, fmt.Sprint(book.ID), &dto.SaveCheckpointRequest{
		PercentComplete: intPtr(-5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Checkpoint.PercentComplete != 0 {
		t.Errorf("expected percent clamped to 0, got %d", result.Checkpoint.PercentComplete)
	}
}

func TestSaveCheckpointPartialMerge(t *testing.T) {
	ds, _, checkpointSvc, _, _, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Merge Book", "merge-book")
	user := seedTestUser(t, ds, "student")

	_, err := checkpointSvc.SaveCheckpoint(user.ID, fmt.Sprint(book.ID), &dto.SaveCheckpointRequest{
		PageNumber:      intPtr(6),
		PercentComplete: intPtr(40),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A later save carrying only the audio position must not disturb
	// the stored page number or percent.
	result, err := checkpointSvc.SaveCheckpoint(user.ID, fmt.Sprint(book.ID), &dto.SaveCheckpointRequest{
		AudioPositionSec: floatPtr(42),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cp := result.Checkpoint
	if cp.PageNumber == nil || *cp.PageNumber != 6 {
		t.Errorf("expected page number 6 preserved, got %v", cp.PageNumber)
	}
	if cp.PercentComplete != 40 {
		t.Errorf("expected percent 40 preserved, got %d", cp.PercentComplete)
	}
	if cp.AudioPositionSec != 42 {
		t.Errorf("expected audio position 42, got %v", cp.AudioPositionSec)
	}
}

func TestSaveCheckpointStoresOpaqueState(t *testing.T) {
	ds, _, checkpointSvc, _, _, _ := newTestServices(t)
	book := seedTestBook(t, ds, "State Book", "state-book")
	user := seedTestUser(t, ds, "student")

	answers := []byte(`{"q1":"a","q2":["b","c"]}`)
	result, err := checkpointSvc.SaveCheckpoint(user.ID, fmt.Sprint(book.ID), &dto.SaveCheckpointRequest{
		PageID:  uintPtr(3),
		Answers: answers,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result.Checkpoint.Answers) != string(answers) {
		t.Errorf("expected answers stored verbatim, got %s", result.Checkpoint.Answers)
	}
	if result.Checkpoint.PageID == nil || *result.Checkpoint.PageID != 3 {
		t.Errorf("expected page id 3, got %v", result.Checkpoint.PageID)
	}
}

func TestResetCheckpoint(t *testing.T) {
	ds, _, checkpointSvc, _, _, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Reset Book", "reset-book")
	user := seedTestUser(t, ds, "student")

	_, err := checkpointSvc.SaveCheckpoint(user.ID, fmt.Sprint(book.ID), &dto.SaveCheckpointRequest{
		PercentComplete: intPtr(50),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := checkpointSvc.ResetCheckpoint(user.ID, fmt.Sprint(book.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := checkpointSvc.GetCheckpoint(user.ID, fmt.Sprint(book.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Checkpoint != nil {
		t.Fatalf("expected checkpoint gone after reset, got %+v", result.Checkpoint)
	}

	// Resetting again is a no-op, not an error.
	if err := checkpointSvc.ResetCheckpoint(user.ID, fmt.Sprint(book.ID)); err != nil {
		t.Fatalf("expected second reset to succeed, got %v", err)
	}
}

func TestSaveCheckpointUnknownBook(t *testing.T) {
	ds, _, checkpointSvc, _, _, _ := newTestServices(t)
	user := seedTestUser(t, ds, "student")

	_, err := checkpointSvc.SaveCheckpoint(user.ID, "999", &dto.SaveCheckpointRequest{
		PercentComplete: intPtr(10),
	})
	if err == nil {
		t.Fatal("expected error for unknown book")
	}
}
