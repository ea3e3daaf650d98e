// Package handlers renders the dashboard pages.
package handlers

import (
	"time"

	"inquiry-dashboard/internal/dashboard"
	"inquiry-dashboard/internal/models"
)

// Handler держит общие для всех запросов зависимости.
type Handler struct {
	Roster models.Roster
	Guard  *dashboard.SaveGuard
	Drafts *dashboard.DraftStore
}

func New(roster models.Roster, guard *dashboard.SaveGuard, drafts *dashboard.DraftStore) *Handler {
	if guard == nil {
		guard = dashboard.NewSaveGuard()
	}
	if drafts == nil {
		drafts = dashboard.NewDraftStore(12 * time.Hour)
	}
	return &Handler{Roster: roster, Guard: guard, Drafts: drafts}
}
