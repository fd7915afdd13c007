package dto

import (
	"testing"

	"github.com/bytedance/sonic"
)

func TestSaveCheckpointNormalizeAliases(t *testing.T) {
	body := []byte(`{"pageNumber":6,"audioPositionSec":42.5,"percentComplete":30,"answersJson":{"q1":"a"}}`)

	var req SaveCheckpointRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Normalize()

	if req.PageNumber == nil || *req.PageNumber != 6 {
		t.Errorf("expected page number 6, got %v", req.PageNumber)
	}
	if req.AudioPositionSec == nil || *req.AudioPositionSec != 42.5 {
		t.Errorf("expected audio position 42.5, got %v", req.AudioPositionSec)
	}
	if req.PercentComplete == nil || *req.PercentComplete != 30 {
		t.Errorf("expected percent 30, got %v", req.PercentComplete)
	}
	if string(req.Answers) != `{"q1":"a"}` {
		t.Errorf("expected answers folded from alias, got %s", req.Answers)
	}
}

func TestSaveCheckpointCanonicalWins(t *testing.T) {
	body := []byte(`{"page_number":3,"pageNumber":9,"percent_complete":10,"percentComplete":90}`)

	var req SaveCheckpointRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Normalize()

	if req.PageNumber == nil || *req.PageNumber != 3 {
		t.Errorf("expected canonical page number 3, got %v", req.PageNumber)
	}
	if req.PercentComplete == nil || *req.PercentComplete != 10 {
		t.Errorf("expected canonical percent 10, got %v", req.PercentComplete)
	}
}

func TestSaveCheckpointAudioPositionFallback(t *testing.T) {
	body := []byte(`{"audio_position":12}`)

	var req SaveCheckpointRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Normalize()

	if req.AudioPositionSec == nil || *req.AudioPositionSec != 12 {
		t.Errorf("expected audio_position alias folded, got %v", req.AudioPositionSec)
	}
}

func TestSaveCheckpointIsEmpty(t *testing.T) {
	var req SaveCheckpointRequest
	req.Normalize()
	if !req.IsEmpty() {
		t.Error("expected empty request")
	}

	page := 1
	req.PageNumber = &page
	if req.IsEmpty() {
		t.Error("expected non-empty request")
	}
}

func TestStartSessionNormalize(t *testing.T) {
	var req StartSessionRequest
	if err := sonic.Unmarshal([]byte(`{"bookId":7}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Normalize()

	if req.BookID != 7 {
		t.Errorf("expected book id 7, got %d", req.BookID)
	}
}

func TestQuizAttemptNormalize(t *testing.T) {
	var req QuizAttemptRequest
	if err := sonic.Unmarshal([]byte(`{"bookId":4,"scoreCorrect":3,"scoreTotal":5}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Normalize()

	if req.BookID != 4 || req.ScoreCorrect != 3 || req.ScoreTotal != 5 {
		t.Errorf("expected aliases folded, got %+v", req)
	}
}
