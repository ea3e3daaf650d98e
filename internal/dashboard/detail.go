package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"inquiry-dashboard/internal/backend"
	"inquiry-dashboard/internal/models"
)

const saveFailedPrefix = "Failed to save changes: "

// Edit holds the agent-editable fields of the detail page.
type Edit struct {
	Agent      string
	Stage      string
	AgentNotes string
}

func editOf(inq models.Inquiry) Edit {
	return Edit{Agent: inq.Agent, Stage: inq.Stage, AgentNotes: inq.AgentNotes}
}

// SaveGuard remembers which inquiries have a save in flight.
type SaveGuard struct {
	mu       sync.Mutex
	inflight map[int64]struct{}
}

func NewSaveGuard() *SaveGuard {
	return &SaveGuard{inflight: make(map[int64]struct{})}
}

func (g *SaveGuard) Acquire(id int64) bool {
	if g == nil {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[id]; busy {
		return false
	}
	g.inflight[id] = struct{}{}
	return true
}

func (g *SaveGuard) Release(id int64) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, id)
}

// DetailView is one inquiry with a single edit mode covering the whole record.
type DetailView struct {
	client backend.Client
	guard  *SaveGuard

	Roster  models.Roster
	ID      int64
	Inquiry *models.Inquiry
	Editing bool
	Edit    Edit
	Saving  bool
	Err     string
}

func NewDetailView(client backend.Client, roster models.Roster, guard *SaveGuard) *DetailView {
	return &DetailView{client: client, Roster: roster, guard: guard}
}

// Load parses the route id and fetches exactly one inquiry. Invalid ids are
// rejected before any remote call.
func (v *DetailView) Load(ctx context.Context, rawID string) error {
	id, err := ParseID(rawID)
	if err != nil {
		v.Err = err.Error()
		return err
	}
	v.ID = id

	var inq models.Inquiry
	if err := v.client.SelectSingle(ctx, models.InquiryTable, models.DetailColumns, backend.Eq(models.ColumnID, id), &inq); err != nil {
		v.Err = err.Error()
		return err
	}
	v.Inquiry = &inq
	v.Edit = editOf(inq)
	return nil
}

func (v *DetailView) StartEdit() {
	if v.Inquiry == nil {
		return
	}
	v.Editing = true
	v.Edit = editOf(*v.Inquiry)
}

func (v *DetailView) fail(err error) error {
	v.Err = saveFailedPrefix + err.Error()
	return err
}

// Save writes Agent, Stage and AgentNotes in one update. On failure the view
// stays in edit mode with the submitted values.
func (v *DetailView) Save(ctx context.Context, edit Edit) error {
	if v.Inquiry == nil {
		return errors.New("inquiry is not loaded")
	}
	v.Editing = true
	v.Edit = edit

	if edit.Agent != "" && !v.Roster.IsAgent(edit.Agent) {
		return v.fail(fmt.Errorf("unknown agent %q", edit.Agent))
	}
	if edit.Stage != "" && !v.Roster.IsStage(edit.Stage) {
		return v.fail(fmt.Errorf("unknown stage %q", edit.Stage))
	}

	if !v.guard.Acquire(v.ID) {
		return v.fail(ErrSaveInProgress)
	}
	v.Saving = true
	defer func() {
		v.Saving = false
		v.guard.Release(v.ID)
	}()

	fields := map[string]any{
		models.ColumnAgent:      edit.Agent,
		models.ColumnStage:      edit.Stage,
		models.ColumnAgentNotes: edit.AgentNotes,
	}
	if err := v.client.Update(ctx, models.InquiryTable, fields, backend.Eq(models.ColumnID, v.ID)); err != nil {
		return v.fail(err)
	}

	v.Inquiry.Apply(fields)
	v.Editing = false
	v.Edit = editOf(*v.Inquiry)
	v.Err = ""
	return nil
}

// EditLabel is the label of the button that enters edit mode.
func (v *DetailView) EditLabel() string { return "Edit" }

func (v *DetailView) SaveLabel() string {
	if v.Saving {
		return "Saving..."
	}
	return "Save Changes"
}

func (v *DetailView) Date() string {
	if v.Inquiry == nil {
		return ""
	}
	return models.FormatDate(v.Inquiry.Date)
}
