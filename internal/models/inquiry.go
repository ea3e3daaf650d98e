package models

import (
	"strings"
	"time"
)

// InquiryTable is the remote table holding website inquiries.
const InquiryTable = "WebsiteInquiries"

// Inquiry — заявка клиента с сайта. Имена колонок совпадают с удалённой таблицей.
type Inquiry struct {
	ID           int64  `json:"id" gorm:"column:id;primaryKey"`
	CustomerName string `json:"CustomerName" gorm:"column:CustomerName"`
	Country      string `json:"Country" gorm:"column:Country"`
	Email        string `json:"Email" gorm:"column:Email"`
	Phone        string `json:"Phone" gorm:"column:Phone"`
	Date         string `json:"Date" gorm:"column:Date;type:date"`
	Agent        string `json:"Agent" gorm:"column:Agent"`
	Stage        string `json:"Stage" gorm:"column:Stage"`
	Make         string `json:"Make" gorm:"column:Make"`
	Model        string `json:"Model" gorm:"column:Model"`
	Notes        string `json:"Notes" gorm:"column:Notes;type:text"`      // от клиента, только чтение
	AgentNotes   string `json:"AgentNotes" gorm:"column:AgentNotes;type:text"` // заметки сотрудника
}

func (Inquiry) TableName() string { return InquiryTable }

// Column names of the editable fields.
const (
	ColumnID         = "id"
	ColumnAgent      = "Agent"
	ColumnStage      = "Stage"
	ColumnAgentNotes = "AgentNotes"
)

// ListColumns is the projection used by the dashboard table.
var ListColumns = []string{
	"CustomerName", "Country", "Email", "Phone", "Date", "Agent", "id", "Stage", "Make", "Model", "AgentNotes",
}

// DetailColumns is the projection used by the single inquiry page.
var DetailColumns = []string{
	"CustomerName", "Country", "Email", "Phone", "Date", "Agent", "Stage", "Make", "Model", "AgentNotes", "Notes", "id",
}

// Apply merges written column values into the local copy.
func (i *Inquiry) Apply(fields map[string]any) {
	for col, v := range fields {
		s, _ := v.(string)
		switch col {
		case ColumnAgent:
			i.Agent = s
		case ColumnStage:
			i.Stage = s
		case ColumnAgentNotes:
			i.AgentNotes = s
		}
	}
}

// FormatDate renders a calendar date as M/D/YYYY. Values that are not
// dates are returned as is.
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("1/2/2006")
		}
	}
	if len(raw) >= 10 {
		if t, err := time.Parse("2006-01-02", raw[:10]); err == nil {
			return t.Format("1/2/2006")
		}
	}
	return raw
}
