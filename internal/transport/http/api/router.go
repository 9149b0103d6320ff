package apihttp

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ordersift/internal/analysis"
	"ordersift/internal/analysis/visual"
	"ordersift/internal/rules"
	"ordersift/internal/store/outcomelog"
	"ordersift/internal/types"

	"github.com/gin-gonic/gin"
)

// Ingestor 接收一条还原后的原始消息并异步处理。
type Ingestor interface {
	Submit(ctx context.Context, msg types.RawMessage) error
}

// EventParser 把平台事件回调还原为 RawMessage（飞书风格 event.message）。
type EventParser interface {
	ParseEvent(ctx context.Context, payload []byte) (types.RawMessage, error)
}

// RuleStore 暴露规则快照的读写。
type RuleStore interface {
	Snapshot() rules.Snapshot
	Replace(rs rules.RuleSet) error
}

// OutcomeSource 查询消息处理终态。
type OutcomeSource interface {
	Query(ctx context.Context, q outcomelog.OutcomeQuery) ([]types.WorkflowOutcome, error)
	FindByMessageID(ctx context.Context, messageID string) ([]types.WorkflowOutcome, error)
}

// ReportSource 生成分析报表。
type ReportSource interface {
	GenerateReport(ctx context.Context, period analysis.Period) (analysis.Report, error)
}

// Router 承载 /api 路由。
type Router struct {
	ingestor  Ingestor
	eventFeed EventParser
	rules     RuleStore
	outcomes  OutcomeSource
	reports   ReportSource
}

// NewRouter 构造 API router。
func NewRouter(cfg ServerConfig) *Router {
	return &Router{
		ingestor:  cfg.Ingestor,
		eventFeed: cfg.EventFeed,
		rules:     cfg.Rules,
		outcomes:  cfg.Outcomes,
		reports:   cfg.Reports,
	}
}

// Register 将路由挂载到给定分组下。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/webhook/message", r.handleWebhookMessage)
	if r.eventFeed != nil {
		group.POST("/webhook/events", r.handlePlatformEvent)
	}
	if r.rules != nil {
		group.GET("/rules", r.handleGetRules)
		group.PUT("/rules", r.handlePutRules)
	}
	if r.outcomes != nil {
		group.GET("/outcomes", r.handleListOutcomes)
		group.GET("/outcomes/:message_id", r.handleOutcomeByMessage)
	}
	if r.reports != nil {
		group.GET("/reports/:period", r.handleReport)
		group.GET("/reports/:period/charts", r.handleReportCharts)
	}
}

// webhookMessage 为外部系统推送的通用消息体。
type webhookMessage struct {
	MessageID string `json:"message_id"`
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	Content   string `json:"content" binding:"required"`
	Timestamp string `json:"timestamp"`
}

func (r *Router) handleWebhookMessage(c *gin.Context) {
	var body webhookMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg := types.RawMessage{
		MessageID:  strings.TrimSpace(body.MessageID),
		GroupID:    strings.TrimSpace(body.GroupID),
		GroupName:  strings.TrimSpace(body.GroupName),
		Text:       body.Content,
		ReceivedAt: time.Now(),
	}
	if ts, err := time.Parse(time.RFC3339, body.Timestamp); err == nil {
		msg.ReceivedAt = ts
	}
	if msg.MessageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message_id 必填"})
		return
	}
	if msg.GroupName == "" {
		msg.GroupName = "未知群"
	}
	if err := r.ingestor.Submit(c.Request.Context(), msg); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "message_id": msg.MessageID})
}

func (r *Router) handlePlatformEvent(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// 平台回调要求 200 确认，否则会反复重推；解析失败也原样确认并丢弃。
	msg, err := r.eventFeed.ParseEvent(c.Request.Context(), payload)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "skipped", "reason": err.Error()})
		return
	}
	if err := r.ingestor.Submit(c.Request.Context(), msg); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted", "message_id": msg.MessageID})
}

func (r *Router) handleGetRules(c *gin.Context) {
	snap := r.rules.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"version":   snap.Version,
		"loaded_at": snap.LoadedAt,
		"rules":     snap.Rules,
	})
}

func (r *Router) handlePutRules(c *gin.Context) {
	var rs rules.RuleSet
	if err := c.ShouldBindJSON(&rs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.rules.Replace(rs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap := r.rules.Snapshot()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": snap.Version})
}

func (r *Router) handleListOutcomes(c *gin.Context) {
	q := outcomelog.OutcomeQuery{
		MessageID: c.Query("message_id"),
		Stage:     c.Query("stage"),
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Offset = n
		}
	}
	outs, err := r.outcomes.Query(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": outs, "count": len(outs)})
}

func (r *Router) handleOutcomeByMessage(c *gin.Context) {
	messageID := c.Param("message_id")
	outs, err := r.outcomes.FindByMessageID(c.Request.Context(), messageID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(outs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "未找到该消息的处理记录"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message_id": messageID, "outcomes": outs})
}

func (r *Router) handleReport(c *gin.Context) {
	period, err := analysis.ParsePeriod(c.Param("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := r.reports.GenerateReport(c.Request.Context(), period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (r *Router) handleReportCharts(c *gin.Context) {
	period, err := analysis.ParsePeriod(c.Param("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := r.reports.GenerateReport(c.Request.Context(), period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := visual.RenderReportPage(report, c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
