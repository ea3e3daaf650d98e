package dashboard

import (
	"context"
	"fmt"

	"inquiry-dashboard/internal/backend"
	"inquiry-dashboard/internal/models"
)

// ListView is the dashboard table: all inquiries, filtered locally, with
// independent per-row edit drafts.
type ListView struct {
	client backend.Client

	Roster    models.Roster
	Facets    Facets
	Inquiries []models.Inquiry
	Drafts    Drafts
	Err       string
}

// Row is what the table template renders for one inquiry.
type Row struct {
	models.Inquiry
	Class   string
	Date    string
	Editing bool
	Draft   Draft
}

func NewListView(client backend.Client, roster models.Roster, facets Facets, drafts Drafts) *ListView {
	if drafts == nil {
		drafts = Drafts{}
	}
	return &ListView{client: client, Roster: roster, Facets: facets, Drafts: drafts}
}

// Load fetches every inquiry. On failure the collection stays empty.
func (v *ListView) Load(ctx context.Context) error {
	var rows []models.Inquiry
	if err := v.client.Select(ctx, models.InquiryTable, models.ListColumns, nil, &rows); err != nil {
		v.Inquiries = nil
		v.Err = err.Error()
		return err
	}
	v.Inquiries = rows
	return nil
}

func (v *ListView) Filtered() []models.Inquiry {
	return v.Facets.Apply(v.Inquiries)
}

func (v *ListView) Rows() []Row {
	filtered := v.Filtered()
	out := make([]Row, 0, len(filtered))
	for _, inq := range filtered {
		dr, editing := v.Drafts.Get(inq.ID)
		out = append(out, Row{
			Inquiry: inq,
			Class:   models.StageClass(inq.Stage),
			Date:    models.FormatDate(inq.Date),
			Editing: editing,
			Draft:   dr,
		})
	}
	return out
}

func (v *ListView) FilterControl() FilterControl {
	return NewFilterControl(v.Roster, v.Facets)
}

func (v *ListView) find(id int64) *models.Inquiry {
	for i := range v.Inquiries {
		if v.Inquiries[i].ID == id {
			return &v.Inquiries[i]
		}
	}
	return nil
}

// ToggleEdit puts a loaded row into edit mode with a snapshot of its current
// values, or takes it out of edit mode if it already is.
func (v *ListView) ToggleEdit(id int64) error {
	if v.Drafts.Editing(id) {
		delete(v.Drafts, id)
		return nil
	}
	inq := v.find(id)
	if inq == nil {
		return ErrNotFound
	}
	v.Drafts[id] = SnapshotDraft(*inq)
	return nil
}

func (v *ListView) Cancel(id int64) {
	delete(v.Drafts, id)
}

func (v *ListView) validate(dr Draft) error {
	if dr.Agent != "" && !v.Roster.IsAgent(dr.Agent) {
		return fmt.Errorf("unknown agent %q", dr.Agent)
	}
	if dr.Stage != "" && !v.Roster.IsStage(dr.Stage) {
		return fmt.Errorf("unknown stage %q", dr.Stage)
	}
	return nil
}

// Save writes every non-empty field of the draft with its own update, in the
// order Agent, Stage, Notes. Fields written before a failure stay written and
// are merged locally; the draft is kept so the user can retry.
func (v *ListView) Save(ctx context.Context, id int64, dr Draft) error {
	v.Drafts[id] = dr
	if err := v.validate(dr); err != nil {
		v.Err = err.Error()
		return err
	}

	steps := []struct {
		column string
		value  string
	}{
		{models.ColumnAgent, dr.Agent},
		{models.ColumnStage, dr.Stage},
		{models.ColumnAgentNotes, dr.Notes},
	}
	for _, step := range steps {
		if step.value == "" {
			continue
		}
		fields := map[string]any{step.column: step.value}
		if err := v.client.Update(ctx, models.InquiryTable, fields, backend.Eq(models.ColumnID, id)); err != nil {
			v.Err = err.Error()
			return err
		}
		if inq := v.find(id); inq != nil {
			inq.Apply(fields)
		}
	}

	delete(v.Drafts, id)
	return nil
}
