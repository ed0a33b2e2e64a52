package controllers

import (
	"bufio"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitmaster/habitmaster/ai"
	"github.com/habitmaster/habitmaster/config"
	"github.com/habitmaster/habitmaster/utils"
)

// CoachController relays the streaming AI coach conversation with the
// user's habit statistics injected as system context.
type CoachController struct {
	db *gorm.DB
	ai *ai.Client
}

// NewCoachController creates a CoachController.
func NewCoachController(db *gorm.DB, client *ai.Client) *CoachController {
	return &CoachController{db: db, ai: client}
}

// Chat streams the coach's reply as server-sent events. Upstream 429 and
// 402 map to distinct user-facing errors before any bytes are streamed.
func (c *CoachController) Chat(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Messages []ai.Message `json:"messages" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40017, "invalid request payload")
		return
	}

	eng, err := loadEngine(c.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load habit data")
		return
	}

	msgs := make([]ai.Message, 0, len(req.Messages)+1)
	msgs = append(msgs, ai.Message{Role: "system", Content: ai.CoachSystemPrompt(eng.Context())})
	msgs = append(msgs, req.Messages...)

	stream, err := c.ai.Stream(ctx.Request.Context(), config.Get().AICoachModel, msgs)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrRateLimited):
			utils.Error(ctx, http.StatusTooManyRequests, 42930, "rate limits exceeded, please try again later")
		case errors.Is(err, ai.ErrQuotaExceeded):
			utils.Error(ctx, http.StatusPaymentRequired, 40210, "ai credits exhausted, please contact the administrator")
		case errors.Is(err, ai.ErrNoAPIKey):
			utils.Error(ctx, http.StatusServiceUnavailable, 50310, "ai coach is not configured")
		default:
			utils.Sugar.Errorf("coach stream failed: %v", err)
			utils.Error(ctx, http.StatusBadGateway, 50220, "ai service unavailable")
		}
		return
	}
	defer stream.Close()

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Status(http.StatusOK)

	// Relay the upstream SSE lines verbatim, flushing per line so the
	// client sees tokens as they arrive.
	writer := ctx.Writer
	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if _, err := writer.WriteString(scanner.Text() + "\n"); err != nil {
			return
		}
		writer.Flush()
	}
	if err := scanner.Err(); err != nil {
		utils.Sugar.Warnf("coach stream interrupted: %v", err)
	}
}
