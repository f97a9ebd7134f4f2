package server

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mohammad-safakhou/daydigest/internal/activity"
	"github.com/mohammad-safakhou/daydigest/internal/auth"
	"github.com/mohammad-safakhou/daydigest/internal/semantic"
)

var digestTracer = otel.Tracer("daydigest/internal/server/digest")

// digestRequest is a day bundle. Callers either send scored visits directly or
// the three parallel arrays the scoring stage produces.
type digestRequest struct {
	semantic.DayInput
	RawVisits []activity.Visit `json:"raw_visits,omitempty"`
	Titles    []string         `json:"titles,omitempty"`
	Scores    []float64        `json:"scores,omitempty"`
}

type digestResponse struct {
	RunID string `json:"run_id"`
	semantic.Digest
}

type digestHandler struct {
	extractor *semantic.Extractor
	logger    *log.Logger
}

func (h *digestHandler) Register(g *echo.Group) {
	g.POST("/digest", h.digest)
}

func (h *digestHandler) digest(c echo.Context) error {
	req := c.Request()
	ctx, span := digestTracer.Start(req.Context(), "DigestHandler.digest")
	defer span.End()
	c.SetRequest(req.WithContext(ctx))

	var body digestRequest
	if err := c.Bind(&body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid body")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	in := body.DayInput
	if len(body.RawVisits) > 0 || len(body.Titles) > 0 || len(body.Scores) > 0 {
		zipped, err := activity.ZipVisits(body.RawVisits, body.Titles, body.Scores)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		in.Visits = append(append([]activity.ScoredVisit(nil), in.Visits...), zipped...)
	}

	runID := uuid.NewString()
	span.SetAttributes(attribute.String("run_id", runID), attribute.String("date", in.Date))
	out := h.extractor.Extract(in)
	span.SetAttributes(
		attribute.Int("clusters", len(out.Clusters)),
		attribute.Int("task_sessions", len(out.TaskSessions)),
		attribute.Int("search_missions", len(out.SearchMissions)),
	)
	if sub, ok := auth.SubjectFromContext(ctx); ok {
		h.logger.Printf("run %s for %s", runID, sub)
	}
	c.Response().Header().Set("X-Run-ID", runID)
	return c.JSON(http.StatusOK, digestResponse{RunID: runID, Digest: out})
}
