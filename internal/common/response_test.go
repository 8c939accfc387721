package common

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteErrorUsesAppError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, BadRequest(CodeMissingField, errors.New("user_id is required"), map[string]string{"field": "user_id"}))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
	var body struct {
		Error ErrorBody `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != CodeMissingField || body.Error.Message != "user_id is required" {
		t.Fatalf("unexpected body %+v", body.Error)
	}
}

func TestWriteErrorHidesUnknownErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("redis: connection refused"))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rr.Code)
	}
	if got := rr.Body.String(); !json.Valid([]byte(got)) {
		t.Fatalf("expected JSON body, got %q", got)
	}
}

func TestMatchesUser(t *testing.T) {
	ctx := context.Background()
	if !MatchesUser(ctx, "anyone") {
		t.Fatal("unauthenticated context should match")
	}
	ctx = WithUserID(ctx, "42")
	if !MatchesUser(ctx, json.Number("42")) {
		t.Fatal("expected numeric id to match its printed form")
	}
	if MatchesUser(ctx, "43") {
		t.Fatal("expected mismatch")
	}
	if !MatchesUser(ctx, nil) {
		t.Fatal("absent id should be left to validation")
	}
}
