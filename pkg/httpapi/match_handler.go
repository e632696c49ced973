package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staffing-platform/referral-matcher/pkg/core/services"
)

type MatchHandler struct {
	deps RouterDeps
}

// maxQuery binds the optional ?max= parameter
type maxQuery struct {
	Max *int `form:"max" binding:"omitempty,min=0"`
}

// NewMatchHandler registers the match routes
func NewMatchHandler(group *gin.RouterGroup, deps RouterDeps) {
	h := &MatchHandler{deps: deps}

	requests := group.Group("/requests/:id")
	requests.POST("/matches", h.FindMatches)
	requests.GET("/matches", h.ListMatches)
	requests.GET("/matches/preview", h.PreviewMatches)
}

// FindMatches runs matching for a request and returns the persisted matches
func (h *MatchHandler) FindMatches(c *gin.Context) {
	max, ok := h.bindMax(c)
	if !ok {
		return
	}

	result, err := services.FindMatches(
		c.Request.Context(),
		h.deps.Store,
		h.deps.Clock,
		h.deps.NewRand(),
		h.deps.Config,
		h.deps.Logger,
		c.Param("id"),
		max,
	)
	if err != nil {
		c.Error(err)
		return
	}

	Success(c, http.StatusCreated, "Matches created", matchRunDTO{
		RequestID: result.RequestID,
		Eligible:  result.Eligible,
		Report:    toFilterReportDTO(result.Report),
		Matches:   toMatchDTOs(result.Matches),
	})
}

// ListMatches returns every recorded match for a request
func (h *MatchHandler) ListMatches(c *gin.Context) {
	matches, err := services.ListMatches(c.Request.Context(), h.deps.Store, h.deps.Logger, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	Success(c, http.StatusOK, "Matches retrieved", toMatchDTOs(matches))
}

// PreviewMatches ranks candidates for a request without saving anything
func (h *MatchHandler) PreviewMatches(c *gin.Context) {
	max, ok := h.bindMax(c)
	if !ok {
		return
	}

	result, err := services.PreviewMatches(
		c.Request.Context(),
		h.deps.Store,
		h.deps.Clock,
		h.deps.NewRand(),
		h.deps.Config,
		h.deps.Logger,
		c.Param("id"),
		max,
	)
	if err != nil {
		c.Error(err)
		return
	}

	Success(c, http.StatusOK, "Preview generated", previewDTO{
		RequestID:  result.RequestID,
		Eligible:   result.Eligible,
		Report:     toFilterReportDTO(result.Report),
		Candidates: toCandidateDTOs(result.Candidates),
	})
}

// bindMax reads ?max=, falling back to the configured default
func (h *MatchHandler) bindMax(c *gin.Context) (int, bool) {
	var q maxQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(badRequest("max must be a non-negative integer", err))
		return 0, false
	}
	if q.Max == nil {
		return h.deps.Config.DefaultMaxMatches, true
	}
	return *q.Max, true
}
