package tutor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gyansetu/core/internal/modules/profile"
	"github.com/gyansetu/core/internal/pkg/llm"
	"github.com/gyansetu/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// profilePatchTimeout bounds the detached post-session profile update.
const profilePatchTimeout = 90 * time.Second

// Handler exposes the tutoring API: the action dispatch endpoint plus the
// per-resource REST routes.
type Handler struct {
	svc      *Service
	profiles *profile.Service
	logger   *zap.Logger
}

func NewHandler(svc *Service, profiles *profile.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, profiles: profiles, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	tutor := rg.Group("/tutor")
	{
		tutor.POST("/dispatch", h.Dispatch)
		tutor.POST("/solve", h.Solve)
	}

	students := rg.Group("/students")
	{
		students.GET("/:id/profile", h.GetProfile)
		students.POST("/:id/onboarding", h.CompleteOnboarding)
		students.POST("/:id/profile/update", h.RequestProfileUpdate)
		students.GET("/:id/profile/updates", h.ListProfileUpdates)
	}
}

// Dispatch is the single action RPC entry point. The action field selects
// the operation; payloads are typed per action.
func (h *Handler) Dispatch(c *gin.Context) {
	var req DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	payload, err := DecodeDispatch(req)
	if err != nil {
		if errors.Is(err, ErrInvalidAction) {
			response.BadRequest(c, fmt.Sprintf("invalid action: %q", req.Action))
			return
		}
		response.BadRequest(c, "invalid payload for action "+string(req.Action))
		return
	}

	switch p := payload.(type) {
	case SolveProblemPayload:
		result, err := h.svc.Solve(c.Request.Context(), SolveRequest{
			Prompt:  p.Prompt,
			History: p.History,
			Image:   p.Image,
			Grade:   p.Grade,
		})
		if err != nil {
			h.writeError(c, err)
			return
		}
		response.OK(c, result)

	case CompleteOnboardingPayload:
		raw, err := h.analyzeOnboarding(c.Request.Context(), p)
		if err != nil {
			h.writeError(c, err)
			return
		}
		response.OK(c, gin.H{"text": raw})

	case TutoringPayload:
		result, err := h.svc.TutoringResponse(c.Request.Context(), p)
		if err != nil {
			h.writeError(c, err)
			return
		}
		response.OK(c, result)

	case UpdateProfilePayload:
		raw, err := h.profiles.GenerateRaw(c.Request.Context(), p.PromptTemplate)
		if err != nil {
			h.writeError(c, err)
			return
		}
		response.OK(c, gin.H{"text": raw})

	default:
		response.BadRequest(c, fmt.Sprintf("invalid action: %q", req.Action))
	}
}

func (h *Handler) analyzeOnboarding(ctx context.Context, p CompleteOnboardingPayload) (string, error) {
	if p.PromptTemplate != "" {
		return h.profiles.GenerateRaw(ctx, p.PromptTemplate)
	}
	return h.profiles.AnalyzeRaw(ctx, p.Answers)
}

type solveRequestBody struct {
	StudentID  string             `json:"studentId"`
	Prompt     string             `json:"prompt" binding:"required"`
	History    []ConversationTurn `json:"history"`
	Image      *ImagePayload      `json:"image,omitempty"`
	DocText    string             `json:"docText,omitempty"`
	Grade      string             `json:"grade,omitempty"`
	HasProfile bool               `json:"hasProfile"`
	Shared     bool               `json:"shared"`
}

// Solve is the REST form of solveProblem, with the full routing surface
// (profiles, attachments, shared contexts).
func (h *Handler) Solve(c *gin.Context) {
	var body solveRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.svc.Solve(c.Request.Context(), SolveRequest{
		StudentID:  body.StudentID,
		Prompt:     body.Prompt,
		History:    body.History,
		Image:      body.Image,
		DocText:    body.DocText,
		Grade:      body.Grade,
		HasProfile: body.HasProfile,
		Shared:     body.Shared,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.profiles.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if p == nil {
		response.NotFoundMsg(c, "profile not found")
		return
	}
	response.OK(c, p)
}

type onboardingBody struct {
	Answers []string `json:"answers" binding:"required"`
	Name    string   `json:"name,omitempty"`
	Grade   string   `json:"grade,omitempty"`
}

// CompleteOnboarding analyzes the questionnaire answers and creates the
// student's initial profile.
func (h *Handler) CompleteOnboarding(c *gin.Context) {
	var body onboardingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	p, err := h.profiles.CreateFromOnboarding(c.Request.Context(), c.Param("id"), body.Answers, profile.ExplicitFields{
		Name:  body.Name,
		Grade: body.Grade,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, p)
}

type profileUpdateBody struct {
	SessionID      string `json:"sessionId"`
	SessionSummary string `json:"sessionSummary" binding:"required"`
}

// RequestProfileUpdate kicks off the post-session profile patch in the
// background and acknowledges immediately. Patch failures are logged, never
// surfaced: losing one refinement must not break the student's session.
func (h *Handler) RequestProfileUpdate(c *gin.Context) {
	var body profileUpdateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	studentID := c.Param("id")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), profilePatchTimeout)
		defer cancel()
		if err := h.profiles.ApplyPatch(ctx, studentID, body.SessionID, body.SessionSummary); err != nil {
			h.logger.Warn("post-session profile update failed",
				zap.String("student", studentID),
				zap.String("session", body.SessionID),
				zap.Error(err))
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

func (h *Handler) ListProfileUpdates(c *gin.Context) {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 20)

	rows, total, err := h.profiles.ListUpdates(c.Param("id"), page, size)
	if err != nil {
		h.writeError(c, err)
		return
	}

	totalPage := int((total + int64(size) - 1) / int64(size))
	response.Paged(c, rows, response.Pagination{
		Total:       total,
		CurrentPage: page,
		TotalPage:   totalPage,
		Size:        size,
		HasNextPage: page < totalPage,
	})
}

func queryInt(c *gin.Context, key string, def int) int {
	v := def
	if _, err := fmt.Sscanf(c.Query(key), "%d", &v); err != nil || v < 1 {
		return def
	}
	return v
}

// writeError maps service errors onto the response envelope.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidAction):
		response.BadRequest(c, err.Error())
	case errors.Is(err, llm.ErrMissingCredential), errors.Is(err, llm.ErrNoProvider):
		response.FailedPrecondition(c, err.Error())
	case errors.Is(err, profile.ErrProfileParse):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, profile.ErrStaleVersion):
		response.Conflict(c, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFoundMsg(c, "profile not found")
	default:
		h.logger.Error("request failed", zap.Error(err))
		response.InternalError(c, err)
	}
}
