package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/staffing-platform/referral-matcher/pkg/core/matcher"
	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

const requestIDKey = "RequestID"

// Response is the JSON envelope for every endpoint
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(requestIDKey),
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: c.GetString(requestIDKey),
	})
}

type matchDTO struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	ProfileID string    `json:"profile_id"`
	Rank      int       `json:"rank"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type candidateDTO struct {
	ProfileID  string   `json:"profile_id"`
	Rank       int      `json:"rank"`
	WFAStatus  string   `json:"wfa_status,omitempty"`
	WFAEndDate *string  `json:"wfa_end_date,omitempty"`
	Languages  []string `json:"languages"`
}

type filterReportDTO struct {
	Initial int            `json:"initial"`
	Dropped map[string]int `json:"dropped"`
	Left    int            `json:"left"`
}

type matchRunDTO struct {
	RequestID string          `json:"request_id"`
	Eligible  int             `json:"eligible"`
	Report    filterReportDTO `json:"report"`
	Matches   []matchDTO      `json:"matches"`
}

type previewDTO struct {
	RequestID  string          `json:"request_id"`
	Eligible   int             `json:"eligible"`
	Report     filterReportDTO `json:"report"`
	Candidates []candidateDTO  `json:"candidates"`
}

func toMatchDTOs(matches []model.Match) []matchDTO {
	out := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchDTO{
			ID:        m.ID,
			RequestID: m.RequestID,
			ProfileID: m.ProfileID,
			Rank:      m.Rank,
			Status:    string(m.Status),
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		})
	}
	return out
}

func toCandidateDTOs(profiles []model.Profile) []candidateDTO {
	out := make([]candidateDTO, 0, len(profiles))
	for i, p := range profiles {
		dto := candidateDTO{
			ProfileID: p.ID,
			Rank:      i + 1,
			Languages: make([]string, 0, len(p.PreferredLanguages)),
		}
		if p.WFAStatus != nil {
			dto.WFAStatus = p.WFAStatus.Code
		}
		if p.WFAEndDate != nil {
			end := p.WFAEndDate.Format(model.DateLayout)
			dto.WFAEndDate = &end
		}
		for _, l := range p.PreferredLanguages {
			dto.Languages = append(dto.Languages, string(l))
		}
		out = append(out, dto)
	}
	return out
}

func toFilterReportDTO(r matcher.FilterReport) filterReportDTO {
	dropped := r.Dropped
	if dropped == nil {
		dropped = map[string]int{}
	}
	return filterReportDTO{Initial: r.Initial, Dropped: dropped, Left: r.Left}
}
