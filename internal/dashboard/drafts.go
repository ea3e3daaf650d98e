package dashboard

import "inquiry-dashboard/internal/models"

// Draft holds the proposed values of a row being edited in the table.
type Draft struct {
	Agent string
	Stage string
	Notes string
}

func SnapshotDraft(inq models.Inquiry) Draft {
	return Draft{Agent: inq.Agent, Stage: inq.Stage, Notes: inq.AgentNotes}
}

// Drafts maps row ids to drafts; a row without an entry is not being edited.
type Drafts map[int64]Draft

func (d Drafts) Editing(id int64) bool {
	_, ok := d[id]
	return ok
}

func (d Drafts) Get(id int64) (Draft, bool) {
	dr, ok := d[id]
	return dr, ok
}
