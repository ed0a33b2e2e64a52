package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitmaster/habitmaster/ai"
	"github.com/habitmaster/habitmaster/models"
	"github.com/habitmaster/habitmaster/utils"
)

// QuestController exposes the AI game master: quest analysis, plan
// generation, and hero plans. Every endpoint degrades to deterministic
// fallbacks, so none of them can fail on gateway trouble.
type QuestController struct {
	db *gorm.DB
	ai *ai.Client
}

// NewQuestController creates a QuestController.
func NewQuestController(db *gorm.DB, client *ai.Client) *QuestController {
	return &QuestController{db: db, ai: client}
}

// Analyze classifies a quest name into an attribute and XP value.
func (q *QuestController) Analyze(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40015, "invalid request payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40016, "quest name must not be empty")
		return
	}

	utils.Success(ctx, q.ai.AnalyzeQuest(ctx.Request.Context(), req.Name))
}

// GeneratePlan produces habit suggestions from skills and a goal, and
// optionally persists them as habits when accept is set.
func (q *QuestController) GeneratePlan(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Skills string `json:"skills"`
		Goal   string `json:"goal"`
		Accept bool   `json:"accept"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40015, "invalid request payload")
		return
	}

	plan := q.ai.GeneratePlan(ctx.Request.Context(), req.Skills, req.Goal)

	if req.Accept {
		var maxOrder int
		q.db.Model(&models.Habit{}).Where("user_id = ?", userID).
			Select("COALESCE(MAX(sort_order), 0)").Scan(&maxOrder)
		for i, p := range plan {
			habit := models.Habit{
				UserID:    userID,
				Name:      p.Name,
				Goal:      100,
				SortOrder: maxOrder + i + 1,
				XPReward:  p.XP,
				Attribute: models.Attribute(p.Attribute),
			}
			if err := q.db.Create(&habit).Error; err != nil {
				utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to create habits from plan")
				return
			}
		}
		utils.InvalidateByPrefix(utils.DashboardCacheKey(userID))
	}

	utils.Success(ctx, gin.H{"habits": plan, "accepted": req.Accept})
}

// HeroPlan builds the strategic onboarding plan from the profile answers.
func (q *QuestController) HeroPlan(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var profile ai.HeroProfile
	if err := ctx.ShouldBindJSON(&profile); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40015, "invalid request payload")
		return
	}

	utils.Success(ctx, q.ai.GenerateHeroPlan(ctx.Request.Context(), profile))
}
