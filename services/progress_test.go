package services

import (
	"fmt"
	"testing"

	"github.com/readleaf/readleaf_api/dto"
)

func TestReadingTimeAccumulates(t *testing.T) {
	ds, _, _, _, _, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Time Book", "time-book")
	user := seedTestUser(t, ds, "student")

	if err := ds.AddReadingTime(user.ID, book.ID, 120); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ds.AddReadingTime(user.ID, book.ID, 45); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	progress, err := ds.GetProgress(user.ID, book.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.ReadingTimeSec != 165 {
		t.Errorf("expected 165 seconds accumulated, got %d", progress.ReadingTimeSec)
	}
}

func TestSetPercentMonotonic(t *testing.T) {
	ds, _, _, progressSvc, _, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Percent Book", "percent-book")
	user := seedTestUser(t, ds, "student")

	resp, err := progressSvc.SetPercent(user.ID, fmt.Sprint(book.ID), 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PercentComplete != 40 {
		t.Errorf("expected 40, got %d", resp.PercentComplete)
	}

	// A lower value must not regress the stored percent.
	resp, err = progressSvc.SetPercent(user.ID, fmt.Sprint(book.ID), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PercentComplete != 40 {
		t.Errorf("expected 40 retained, got %d", resp.PercentComplete)
	}

	resp, err = progressSvc.SetPercent(user.ID, fmt.Sprint(book.ID), 75)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PercentComplete != 75 {
		t.Errorf("expected 75, got %d", resp.PercentComplete)
	}
}

func TestSetPercentClamps(t *testing.T) {
	ds, _, _, progressSvc, _, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Clamp Percent", "clamp-percent")
	user := seedTestUser(t, ds, "student")

	resp, err := progressSvc.SetPercent(user.ID, fmt.Sprint(book.ID), 250)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PercentComplete != 100 {
		t.Errorf("expected clamp to 100, got %d", resp.PercentComplete)
	}
}

func TestGetBookProgressAbsent(t *testing.T) {
	ds, _, _, progressSvc, _, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Untouched Book", "untouched-book")
	user := seedTestUser(t, ds, "student")

	resp, err := progressSvc.GetBookProgress(user.ID, fmt.Sprint(book.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PercentComplete != 0 || resp.ReadingTimeSec != 0 {
		t.Errorf("expected zero progress, got %+v", resp)
	}
}

func TestSessionLifecycle(t *testing.T) {
	ds, _, _, progressSvc, _, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Session Book", "session-book")
	user := seedTestUser(t, ds, "student")

	started, err := progressSvc.StartSession(user.ID, &dto.StartSessionRequest{BookID: book.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.EndTime != nil {
		t.Errorf("expected open session, got end time %v", started.EndTime)
	}

	// Starting again returns the open session rather than a second one.
	again, err := progressSvc.StartSession(user.ID, &dto.StartSessionRequest{BookID: book.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.SessionID != started.SessionID {
		t.Errorf("expected existing session %d, got %d", started.SessionID, again.SessionID)
	}

	ended, err := progressSvc.EndSession(user.ID, &dto.EndSessionRequest{SessionID: started.SessionID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ended.EndTime == nil {
		t.Error("expected end time set")
	}

	// Ending twice is a no-op returning the closed session.
	endedAgain, err := progressSvc.EndSession(user.ID, &dto.EndSessionRequest{SessionID: started.SessionID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if endedAgain.ElapsedSec != 0 {
		t.Errorf("expected no elapsed time counted twice, got %d", endedAgain.ElapsedSec)
	}
}

func TestStartSessionUnknownBook(t *testing.T) {
	ds, _, _, progressSvc, _, _ := newTestServices(t)
	user := seedTestUser(t, ds, "student")

	_, err := progressSvc.StartSession(user.ID, &dto.StartSessionRequest{BookID: 999})
	if err == nil {
		t.Fatal("expected error for unknown book")
	}
}

func TestRecordQuizAttemptComputesPercentage(t *testing.T) {
	ds, _, _, progressSvc, _, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Quiz Book", "quiz-book")
	user := seedTestUser(t, ds, "student")

	resp, err := progressSvc.RecordQuizAttempt(user.ID, &dto.QuizAttemptRequest{
		BookID:       book.ID,
		ScoreCorrect: 7,
		ScoreTotal:   10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Percentage != 70 {
		t.Errorf("expected 70%%, got %d", resp.Percentage)
	}
}

func TestRecordQuizAttemptRejectsImpossibleScore(t *testing.T) {
	ds, _, _, progressSvc, _, _ := newTestServices(t)
	book := seedTestBook(t, ds, "Bad Quiz Book", "bad-quiz-book")
	user := seedTestUser(t, ds, "student")

	_, err := progressSvc.RecordQuizAttempt(user.ID, &dto.QuizAttemptRequest{
		BookID:       book.ID,
		ScoreCorrect: 11,
		ScoreTotal:   10,
	})
	if err == nil {
		t.Fatal("expected error for correct > total")
	}
}
