package dashboard

import (
	"context"
	"errors"
	"testing"

	"inquiry-dashboard/internal/backend"
	"inquiry-dashboard/internal/backend/backendtest"
	"inquiry-dashboard/internal/models"
)

func TestDetailView_InvalidIDSkipsRemoteCall(t *testing.T) {
	store := backendtest.NewStore(models.Inquiry{ID: 1})
	for _, raw := range []string{"abc", "0", "-1", ""} {
		v := NewDetailView(store.Client(nil), models.DefaultRoster(), nil)
		if err := v.Load(context.Background(), raw); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("Load(%q) err = %v", raw, err)
		}
		if v.Err != "Invalid Inquiry ID" {
			t.Fatalf("unexpected error text %q", v.Err)
		}
	}
	if store.Selects != 0 {
		t.Fatalf("expected no remote calls, got %d", store.Selects)
	}
}

func TestDetailView_MissingRowSurfacesRemoteMessage(t *testing.T) {
	store := backendtest.NewStore(models.Inquiry{ID: 1})
	v := NewDetailView(store.Client(nil), models.DefaultRoster(), nil)
	if err := v.Load(context.Background(), "2"); err == nil {
		t.Fatalf("expected error")
	}
	if v.Err != backend.ErrNoRows(0).Message {
		t.Fatalf("unexpected error text %q", v.Err)
	}
}

func TestDetailView_SaveSuccess(t *testing.T) {
	store := backendtest.NewStore(models.Inquiry{ID: 1, Agent: "Azam", Stage: models.StageNewInquiry, AgentNotes: "x", Notes: "hello"})
	v := NewDetailView(store.Client(nil), models.DefaultRoster(), NewSaveGuard())
	if err := v.Load(context.Background(), "1"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	v.StartEdit()
	if !v.Editing {
		t.Fatalf("expected edit mode")
	}

	if err := v.Save(context.Background(), Edit{Agent: "Azam", Stage: models.StageNewInquiry, AgentNotes: "y"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if v.Inquiry.AgentNotes != "y" || v.Editing || v.Err != "" {
		t.Fatalf("unexpected state %+v editing=%v err=%q", v.Inquiry, v.Editing, v.Err)
	}
	if v.EditLabel() != "Edit" {
		t.Fatalf("unexpected label %q", v.EditLabel())
	}
	if len(store.Updates) != 1 || len(store.Updates[0].Fields) != 3 {
		t.Fatalf("expected one update with three fields, got %+v", store.Updates)
	}
	if v.Inquiry.Notes != "hello" {
		t.Fatalf("customer notes must be untouched")
	}
}

func TestDetailView_SaveFailure(t *testing.T) {
	store := backendtest.NewStore(models.Inquiry{ID: 1, Agent: "Azam", Stage: models.StageNewInquiry, AgentNotes: "x"})
	store.UpdateErr = func(map[string]any) error { return &backend.QueryError{Message: "constraint violation"} }

	v := NewDetailView(store.Client(nil), models.DefaultRoster(), NewSaveGuard())
	if err := v.Load(context.Background(), "1"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	v.StartEdit()

	edit := Edit{Agent: "Zubair", Stage: models.StageSold, AgentNotes: "y"}
	if err := v.Save(context.Background(), edit); err == nil {
		t.Fatalf("expected error")
	}
	if v.Err != "Failed to save changes: constraint violation" {
		t.Fatalf("unexpected error text %q", v.Err)
	}
	if !v.Editing || v.Edit != edit {
		t.Fatalf("edit mode with user's values expected, got editing=%v edit=%+v", v.Editing, v.Edit)
	}
	if v.Inquiry.AgentNotes != "x" {
		t.Fatalf("local copy must not change on failure")
	}
	if v.Saving {
		t.Fatalf("saving flag must be cleared")
	}
}

func TestDetailView_SaveInProgress(t *testing.T) {
	store := backendtest.NewStore(models.Inquiry{ID: 1})
	guard := NewSaveGuard()
	v := NewDetailView(store.Client(nil), models.DefaultRoster(), guard)
	if err := v.Load(context.Background(), "1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !guard.Acquire(1) {
		t.Fatalf("expected to acquire")
	}
	err := v.Save(context.Background(), Edit{AgentNotes: "y"})
	if !errors.Is(err, ErrSaveInProgress) {
		t.Fatalf("expected ErrSaveInProgress, got %v", err)
	}
	if len(store.Updates) != 0 {
		t.Fatalf("duplicate save must not reach the store")
	}
	guard.Release(1)

	if err := v.Save(context.Background(), Edit{AgentNotes: "y"}); err != nil {
		t.Fatalf("Save after release: %v", err)
	}
}

func TestDetailView_SaveLabel(t *testing.T) {
	v := &DetailView{}
	if v.SaveLabel() != "Save Changes" {
		t.Fatalf("unexpected label %q", v.SaveLabel())
	}
	v.Saving = true
	if v.SaveLabel() != "Saving..." {
		t.Fatalf("unexpected label %q", v.SaveLabel())
	}
}
