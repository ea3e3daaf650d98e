package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"inquiry-dashboard/internal/dashboard"
	"inquiry-dashboard/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func facetsFrom(c *gin.Context) dashboard.Facets {
	// фильтры приходят в query для GET и в скрытых полях формы для POST
	return dashboard.Facets{
		Agent: c.Request.FormValue("agent"),
		Stage: c.Request.FormValue("stage"),
	}
}

func dataURL(f dashboard.Facets) string {
	q := url.Values{}
	if f.Agent != "" {
		q.Set("agent", f.Agent)
	}
	if f.Stage != "" {
		q.Set("stage", f.Stage)
	}
	if len(q) == 0 {
		return "/data"
	}
	return "/data?" + q.Encode()
}

// listKey возвращает ключ состояния таблицы из cookie. С create новый ключ
// сохраняется в cookie; ошибка записи cookie возвращается вызывающему.
func listKey(sess sessions.Session, create bool) (string, error) {
	key, _ := sess.Get(middleware.ListStateKey).(string)
	if key != "" || !create {
		return key, nil
	}
	key = uuid.NewString()
	sess.Set(middleware.ListStateKey, key)
	if err := sess.Save(); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return key, nil
}

func (h *Handler) newListView(c *gin.Context, key string) *dashboard.ListView {
	mgr := middleware.SessionManager(c)
	return dashboard.NewListView(mgr.Client(), h.Roster, facetsFrom(c), h.Drafts.Drafts(key))
}

// editableView готовит таблицу для POST-действий над строкой.
func (h *Handler) editableView(c *gin.Context) (int64, string, *dashboard.ListView, bool) {
	id, err := dashboard.ParseID(c.Param("id"))
	if err != nil {
		renderError(c, http.StatusBadRequest, err.Error())
		return 0, "", nil, false
	}
	key, err := listKey(sessions.Default(c), true)
	if err != nil {
		renderError(c, http.StatusInternalServerError, err.Error())
		return 0, "", nil, false
	}
	return id, key, h.newListView(c, key), true
}

func (h *Handler) ListInquiries(c *gin.Context) {
	key, _ := listKey(sessions.Default(c), false)
	view := h.newListView(c, key)

	// при ошибке таблица пустая, сообщение выводится над ней
	var alerts []string
	if err := view.Load(c.Request.Context()); err != nil {
		alerts = append(alerts, view.Err)
	}
	if key != "" {
		alerts = append(alerts, h.Drafts.PopAlerts(key)...)
	}

	render(c, http.StatusOK, "dashboard.html", gin.H{
		"rows":   view.Rows(),
		"filter": view.FilterControl(),
		"facets": view.Facets,
		"roster": view.Roster,
		"alerts": alerts,
	})
}

func (h *Handler) ToggleEditInquiry(c *gin.Context) {
	id, key, view, ok := h.editableView(c)
	if !ok {
		return
	}

	if !view.Drafts.Editing(id) {
		// снимок значений строки берём из свежей выборки
		if err := view.Load(c.Request.Context()); err != nil {
			h.Drafts.AddAlert(key, err.Error())
			c.Redirect(http.StatusFound, dataURL(view.Facets))
			return
		}
	}
	if err := view.ToggleEdit(id); err != nil {
		renderError(c, http.StatusNotFound, err.Error())
		return
	}

	h.Drafts.SetDrafts(key, view.Drafts)
	c.Redirect(http.StatusFound, dataURL(view.Facets))
}

func (h *Handler) CancelInquiryEdit(c *gin.Context) {
	id, key, view, ok := h.editableView(c)
	if !ok {
		return
	}
	view.Cancel(id)

	h.Drafts.SetDrafts(key, view.Drafts)
	c.Redirect(http.StatusFound, dataURL(view.Facets))
}

type rowForm struct {
	Agent string `form:"draft_agent"`
	Stage string `form:"draft_stage"`
	Notes string `form:"draft_notes"`
}

func (h *Handler) SaveInquiryRow(c *gin.Context) {
	var form rowForm
	if err := c.ShouldBind(&form); err != nil {
		renderError(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	id, key, view, ok := h.editableView(c)
	if !ok {
		return
	}

	draft := dashboard.Draft{Agent: form.Agent, Stage: form.Stage, Notes: form.Notes}
	if err := view.Save(c.Request.Context(), id, draft); err != nil {
		h.Drafts.AddAlert(key, err.Error())
	}

	h.Drafts.SetDrafts(key, view.Drafts)
	c.Redirect(http.StatusFound, dataURL(view.Facets))
}
