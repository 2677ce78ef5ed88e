package router

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lottery/internal/domain/activity"
	"lottery/internal/domain/draw"
	"lottery/internal/logger"
	"lottery/internal/model"
	"lottery/internal/observability/metrics"
)

// Dependencies enumerates services required by API handlers.
type Dependencies struct {
	ActivityService *activity.Service
	DrawService     *draw.Service
}

// New builds a gin.Engine with all routes registered.
func New(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), traceMiddleware(), metrics.GinMiddleware())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h := &handler{activities: deps.ActivityService, draws: deps.DrawService}

	router.POST("/prize", h.createPrize)
	router.POST("/activity", h.createActivity)
	router.GET("/activity/:id", h.getActivityDetail)
	router.POST("/draw-prize", h.drawPrize)
	router.POST("/winning-records/show", h.showWinningRecords)

	return router
}

type handler struct {
	activities *activity.Service
	draws      *draw.Service
}

type createPrizeRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
}

type activityPrizeRequest struct {
	PrizeID int64  `json:"prize_id" binding:"required"`
	Tier    string `json:"tier" binding:"required"`
	Amount  int64  `json:"amount" binding:"required"`
}

type activityUserRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	UserName string `json:"user_name"`
}

type createActivityRequest struct {
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description"`
	Prizes      []activityPrizeRequest `json:"prizes" binding:"required,dive"`
	Users       []activityUserRequest  `json:"users" binding:"required,dive"`
}

type drawPrizeRequest struct {
	ActivityID  int64         `json:"activity_id" binding:"required"`
	PrizeID     int64         `json:"prize_id" binding:"required"`
	Winners     []draw.Winner `json:"winner_list" binding:"required"`
	WinningTime time.Time     `json:"winning_time"`
}

type showWinningRecordsRequest struct {
	ActivityID int64 `json:"activity_id" binding:"required"`
	PrizeID    int64 `json:"prize_id"`
}

type createdResponse struct {
	ID int64 `json:"id"`
}

func (h *handler) createPrize(c *gin.Context) {
	var req createPrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.activities.CreatePrize(c.Request.Context(), activity.CreatePrizeInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createdResponse{ID: id})
}

func (h *handler) createActivity(c *gin.Context) {
	var req createActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := activity.CreateActivityInput{Name: req.Name, Description: req.Description}
	for _, p := range req.Prizes {
		in.Prizes = append(in.Prizes, activity.PrizeInput{PrizeID: p.PrizeID, Tier: p.Tier, Amount: p.Amount})
	}
	for _, u := range req.Users {
		in.Users = append(in.Users, activity.UserInput{UserID: u.UserID, UserName: u.UserName})
	}
	id, err := h.activities.CreateActivity(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createdResponse{ID: id})
}

func (h *handler) getActivityDetail(c *gin.Context) {
	activityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || activityID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}
	detail, err := h.activities.GetActivityDetail(c.Request.Context(), activityID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *handler) drawPrize(c *gin.Context) {
	var req drawPrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.draws.SubmitDraw(c.Request.Context(), draw.Request{
		ActivityID:  req.ActivityID,
		PrizeID:     req.PrizeID,
		Winners:     req.Winners,
		WinningTime: req.WinningTime,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "message_id": id})
}

func (h *handler) showWinningRecords(c *gin.Context) {
	var req showWinningRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	records, err := h.draws.ShowWinningRecords(c.Request.Context(), req.ActivityID, req.PrizeID)
	if err != nil {
		writeError(c, err)
		return
	}
	if records == nil {
		records = []model.WinningRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// traceMiddleware tags the request context with the caller's X-Request-ID,
// or a fresh one, and writes one access log line per request.
func traceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), id))
		c.Header("X-Request-ID", id)
		start := time.Now()
		c.Next()
		logger.InfoCtx(c.Request.Context(), "http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, activity.ErrInvalidInput), draw.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.ErrorCtx(c.Request.Context(), "request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
