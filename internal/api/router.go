package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/logger"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/metrics"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/calendar"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/compliance"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/contingency"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/equilibrium"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/importstaging"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/scheduler"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/search"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/webhook"
)

// Deps collects every service the API surface dispatches to. Built once in
// cmd/server/main.go and handed to NewRouter.
type Deps struct {
	DB repository.Database

	Compliance    *compliance.Validator
	Contingency   *contingency.Analyzer
	Equilibrium   *equilibrium.Analyzer
	Search        *search.Service
	Scheduler     *scheduler.Scheduler
	Importing     *importstaging.Service
	Webhook       *webhook.Verifier
	Subscriptions *calendar.SubscriptionService
	Calendar      *calendar.Exporter

	Log     *zap.SugaredLogger
	Metrics *metrics.Registry
}

// NewRouter builds the Echo instance and registers every route, mirroring
// the teacher's Router/Handlers split (internal/api/router.go): one Echo
// instance, a single Handlers struct holding Deps, routes grouped by
// resource.
func NewRouter(deps *Deps) *echo.Echo {
	e := echo.New()

	e.Use(middleware.Recover())
	e.Use(logger.RequestIDMiddleware())
	e.Use(logger.CorrelationIDMiddleware())
	if deps.Log != nil {
		e.Use(logger.LoggingMiddleware(deps.Log))
	}
	if deps.Metrics != nil {
		e.Use(deps.Metrics.EchoMiddleware())
		e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	}

	h := &Handlers{deps: deps}

	e.GET("/api/health", h.Health)

	compliance := e.Group("/api/compliance")
	compliance.POST("/validate", h.ValidateCompliance)

	cont := e.Group("/api/contingency")
	cont.POST("/analyze", h.AnalyzeContingency)
	cont.GET("/vulnerability", h.VulnerabilityAssessment)
	cont.POST("/simulate/n1", h.SimulateN1)

	eq := e.Group("/api/equilibrium")
	eq.POST("/stress", h.ApplyStress)
	eq.POST("/compensation", h.InitiateCompensation)
	eq.GET("/report", h.EquilibriumReport)

	e.GET("/api/search", h.Search)

	sched := e.Group("/api/scheduler")
	sched.POST("/tasks", h.RegisterTask)
	sched.POST("/tasks/:task_id/schedule", h.ScheduleTask)
	sched.POST("/executions/:execution_id/cancel", h.CancelTask)
	sched.GET("/queue/stats", h.QueueStats)
	sched.GET("/health", h.SchedulerHealth)

	imp := e.Group("/api/imports")
	imp.POST("", h.StageImport)
	imp.GET("/:batch_id/preview", h.BatchPreview)
	imp.POST("/:batch_id/apply", h.ApplyBatch)
	imp.POST("/:batch_id/rollback", h.RollbackBatch)
	imp.POST("/:batch_id/reject", h.RejectBatch)

	e.POST("/api/webhooks/:webhook_id", h.ReceiveWebhook)

	cal := e.Group("/api/calendar")
	cal.POST("/subscriptions", h.CreateSubscription)
	cal.GET("/subscribe/:token", h.ServeFeed)

	return e
}
