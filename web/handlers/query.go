package handlers

import (
	"context"
	"net/http"
	"strings"

	"matchday/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnswerService is the slice of the RAG pipeline the handler needs.
type AnswerService interface {
	Answer(ctx context.Context, query string, resultCount *int, filters map[string]string) (types.SemanticQueryResponse, error)
}

type QueryHandler struct {
	svc    AnswerService
	logger *zap.Logger
	debug  bool
}

func NewQueryHandler(svc AnswerService, logger *zap.Logger, debug bool) *QueryHandler {
	return &QueryHandler{
		svc:    svc,
		logger: logger,
		debug:  debug,
	}
}

// SemanticQuery handles POST /api/semantic-query. Malformed and empty input
// is rejected here, before the pipeline spends anything on provider calls.
func (h *QueryHandler) SemanticQuery(c *gin.Context) {
	var req types.SemanticQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondWithClientError(c, http.StatusBadRequest, "query must not be empty")
		return
	}

	resp, err := h.svc.Answer(c.Request.Context(), req.Query, req.ResultCount, req.Filters)
	if err != nil {
		respondWithPipelineError(c, err, h.debug, h.logger)
		return
	}

	c.JSON(http.StatusOK, resp)
}
