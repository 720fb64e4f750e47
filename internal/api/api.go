// Package api exposes the application over HTTP with gin.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/celerix-dev/auditoria/internal/admin"
	"github.com/celerix-dev/auditoria/internal/app"
	"github.com/celerix-dev/auditoria/internal/exporter"
	"github.com/celerix-dev/auditoria/internal/rowstore"
	"github.com/celerix-dev/auditoria/internal/search"
	"github.com/celerix-dev/auditoria/pkg/schema"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	App *app.App
}

// NewRouter builds the engine with every route registered. gatherer backs
// /metrics; nil uses the default registry.
func NewRouter(a *app.App, gatherer prometheus.Gatherer) *gin.Engine {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	h := &Handler{App: a}

	r := gin.New()
	r.Use(gin.Recovery(), h.countRequests)

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/locations", h.GetLocations)

	api.GET("/workspace", h.GetWorkspace)
	api.PUT("/workspace/location", h.SelectLocation)
	api.PUT("/workspace/filters", h.SetFilters)
	api.DELETE("/workspace/filters", h.ClearFilters)

	api.GET("/rows", h.ListRows)
	api.POST("/rows", h.CreateRow)
	api.PUT("/rows/:ref", h.UpdateRow)
	api.DELETE("/rows/:ref", h.DeleteRow)
	api.DELETE("/rows", h.ClearRows)

	api.POST("/import", h.Import)
	api.GET("/export/:format", h.Export)
	api.GET("/summary", h.Summary)

	api.GET("/session", h.GetSession)
	api.POST("/session", h.Login)
	api.DELETE("/session", h.Logout)

	api.POST("/admin/reload", h.ReloadAdmins)
	api.GET("/admin/emails", h.requireAdmin, h.GetAdminEmails)
	api.PUT("/admin/emails", h.requireAdmin, h.UpdateAdminEmails)

	return r
}

func (h *Handler) countRequests(c *gin.Context) {
	c.Next()
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	h.App.Metrics().HTTPRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
}

func (h *Handler) requireAdmin(c *gin.Context) {
	if !h.App.IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}
	c.Next()
}

// fail maps an application error onto a status code.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rowstore.ErrUnknownLocation),
		errors.Is(err, app.ErrBadFile),
		errors.Is(err, app.ErrEmptyEmail),
		errors.Is(err, search.ErrUnknownField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, app.ErrRowNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, rowstore.ErrUnsupported), errors.Is(err, admin.ErrReadOnly):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	case errors.Is(err, app.ErrStoreFailed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "failed", "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// location is the ?location= parameter, or the workspace location.
func (h *Handler) location(c *gin.Context) string {
	if loc := c.Query("location"); loc != "" {
		return loc
	}
	return h.App.Location()
}

func confirmed(c *gin.Context) bool {
	if ok, _ := strconv.ParseBool(c.Query("confirm")); ok {
		return true
	}
	c.JSON(http.StatusConflict, gin.H{"error": "confirmation required: repeat with confirm=true"})
	return false
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.App.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "failed", "mode": h.App.Mode(), "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": h.App.Mode()})
}

func (h *Handler) GetLocations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"locations": schema.Locations, "active": h.App.Location()})
}

func (h *Handler) GetWorkspace(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"location": h.App.Location(),
		"filters":  h.App.Filters(),
		"mode":     h.App.Mode(),
		"user":     h.App.CurrentUser(),
		"admin":    h.App.IsAdmin(),
	})
}

func (h *Handler) SelectLocation(c *gin.Context) {
	var input struct {
		Location string `json:"location" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.App.SelectLocation(input.Location); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": h.App.Location(), "filters": h.App.Filters()})
}

func (h *Handler) SetFilters(c *gin.Context) {
	var input map[string]string
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fs, err := h.App.SetFilters(input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filters": fs})
}

func (h *Handler) ClearFilters(c *gin.Context) {
	h.App.ClearFilters()
	c.JSON(http.StatusOK, gin.H{"filters": h.App.Filters()})
}

// view lists the requested location. Workspace filters apply only when that
// is the workspace location.
func (h *Handler) view(c *gin.Context) (app.View, bool) {
	var q search.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return app.View{}, false
	}
	loc, fs := h.location(c), h.App.Filters()
	if loc != h.App.Location() {
		fs = search.FilterSet{}
	}
	v, err := h.App.View(c.Request.Context(), loc, q, fs)
	if err != nil {
		fail(c, err)
		return v, false
	}
	return v, true
}

func (h *Handler) ListRows(c *gin.Context) {
	if v, ok := h.view(c); ok {
		c.JSON(http.StatusOK, v)
	}
}

func (h *Handler) Summary(c *gin.Context) {
	if v, ok := h.view(c); ok {
		c.JSON(http.StatusOK, v.Summary)
	}
}

func (h *Handler) CreateRow(c *gin.Context) {
	var row schema.AuditRow
	if err := c.ShouldBindJSON(&row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.App.Save(c.Request.Context(), h.location(c), row)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) UpdateRow(c *gin.Context) {
	var row schema.AuditRow
	if err := c.ShouldBindJSON(&row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.App.Replace(c.Request.Context(), h.location(c), c.Param("ref"), row)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) DeleteRow(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	if err := h.App.Delete(c.Request.Context(), h.location(c), c.Param("ref")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) ClearRows(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	if err := h.App.Clear(c.Request.Context(), h.location(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (h *Handler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	loc := h.location(c)
	n, err := h.App.Import(c.Request.Context(), loc, fh.Filename, f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"imported": n,
		"location": loc,
		"message":  fmt.Sprintf("Importado %d linhas para %s", n, loc),
	})
}

func (h *Handler) Export(c *gin.Context) {
	format := c.Param("format")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown export format " + format})
		return
	}
	loc := h.location(c)
	rows, err := h.App.Rows(c.Request.Context(), loc)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exporter.FileName(loc, format)))
	if format == "csv" {
		c.Data(http.StatusOK, exporter.ContentTypeCSV, exporter.CSV(rows))
		return
	}
	var buf bytes.Buffer
	if err := exporter.WriteXLSX(&buf, rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, exporter.ContentTypeXLSX, buf.Bytes())
}

func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": h.App.CurrentUser(), "admin": h.App.IsAdmin()})
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.App.Login(c.Request.Context(), input.Email)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "admin": h.App.IsAdmin()})
}

func (h *Handler) Logout(c *gin.Context) {
	h.App.Logout()
	c.JSON(http.StatusOK, gin.H{"user": nil, "admin": false})
}

func (h *Handler) ReloadAdmins(c *gin.Context) {
	h.App.Admins().Load(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"admin": h.App.IsAdmin()})
}

func (h *Handler) GetAdminEmails(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"emails": h.App.Admins().Emails(), "writable": h.App.Admins().Writable()})
}

func (h *Handler) UpdateAdminEmails(c *gin.Context) {
	var input schema.AdminConfig
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.App.Admins().Update(c.Request.Context(), input.Emails); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"emails": h.App.Admins().Emails()})
}
