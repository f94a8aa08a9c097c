package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"webdistill/models"
	"webdistill/provider"
	"webdistill/tools/web_search"
)

// Answerer is the pipeline entry point the handler depends on.
type Answerer interface {
	Answer(ctx context.Context, query string) (models.AggregatedAnswer, error)
}

type AnswerHandler struct {
	Answerer Answerer
}

func (h *AnswerHandler) Register(g *echo.Group) {
	g.GET("/answer", h.answer)
}

type pointResponse struct {
	SourceURL string `json:"source_url"`
	Text      string `json:"text"`
}

type answerResponse struct {
	Query     string          `json:"query"`
	Points    []pointResponse `json:"points"`
	Sources   []string        `json:"sources"`
	CreatedAt time.Time       `json:"created_at"`
}

func (h *AnswerHandler) answer(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing q parameter")
	}

	answer, err := h.Answerer.Answer(c.Request().Context(), q)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}

	resp := answerResponse{
		Query:     answer.Query,
		Points:    make([]pointResponse, 0, len(answer.Points)),
		Sources:   answer.Sources,
		CreatedAt: answer.CreatedAt,
	}
	if resp.Sources == nil {
		resp.Sources = []string{}
	}
	for _, p := range answer.Points {
		resp.Points = append(resp.Points, pointResponse{SourceURL: p.SourceURL, Text: p.Text})
	}
	return c.JSON(http.StatusOK, resp)
}

// statusFor maps pipeline failures onto HTTP status codes. Backend outages
// are upstream problems, not client errors.
func statusFor(err error) int {
	switch {
	case errors.Is(err, web_search.ErrSearchTimeout), errors.Is(err, provider.ErrBackendTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, web_search.ErrSearchUnavailable), errors.Is(err, provider.ErrBackendUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
