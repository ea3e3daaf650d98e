package handlers

import (
	"errors"
	"net/http"

	"inquiry-dashboard/internal/backend"
	"inquiry-dashboard/internal/dashboard"
	"inquiry-dashboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

// loadDetail грузит заявку по :id. При ошибке страница уже отрисована.
func (h *Handler) loadDetail(c *gin.Context) (*dashboard.DetailView, bool) {
	mgr := middleware.SessionManager(c)
	view := dashboard.NewDetailView(mgr.Client(), h.Roster, h.Guard)

	if err := view.Load(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, dashboard.ErrInvalidID) {
			renderError(c, http.StatusBadRequest, err.Error())
			return nil, false
		}
		status := http.StatusBadGateway
		var qe *backend.QueryError
		if errors.As(err, &qe) && qe.Code == "PGRST116" {
			status = http.StatusNotFound
		}
		render(c, status, "detail.html", gin.H{"view": view})
		return nil, false
	}
	return view, true
}

func (h *Handler) ShowInquiry(c *gin.Context) {
	view, ok := h.loadDetail(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "detail.html", gin.H{"view": view})
}

func (h *Handler) EditInquiry(c *gin.Context) {
	view, ok := h.loadDetail(c)
	if !ok {
		return
	}
	view.StartEdit()
	render(c, http.StatusOK, "detail.html", gin.H{"view": view})
}

type detailForm struct {
	Agent      string `form:"agent"`
	Stage      string `form:"stage"`
	AgentNotes string `form:"agent_notes"`
}

func (h *Handler) UpdateInquiry(c *gin.Context) {
	view, ok := h.loadDetail(c)
	if !ok {
		return
	}

	var form detailForm
	if err := c.ShouldBind(&form); err != nil {
		renderError(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	edit := dashboard.Edit{Agent: form.Agent, Stage: form.Stage, AgentNotes: form.AgentNotes}
	if err := view.Save(c.Request.Context(), edit); err != nil {
		render(c, http.StatusInternalServerError, "detail.html", gin.H{"view": view})
		return
	}

	c.Redirect(http.StatusFound, c.Request.URL.Path)
}
