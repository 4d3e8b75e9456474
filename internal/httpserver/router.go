package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"prodplan/internal/handler"
	"prodplan/internal/mq"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	planHandler *handler.PlanHandler,
	calendarHandler *handler.CalendarHandler,
	optimizerHandler *handler.OptimizerHandler,
	jwtSecret string,
	db *pgxpool.Pool,
	publisher *mq.Publisher,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ObservabilityMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		if publisher != nil && !publisher.IsConnected() {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Protected
	api := r.Group("/api")
	api.Use(AuthMiddleware(jwtSecret))
	{
		api.POST("/plans/build", planHandler.BuildPlan)
		api.POST("/plans/reorder", planHandler.Reorder)
		api.POST("/plans/move", planHandler.MoveOrder)
		api.GET("/plans", planHandler.ListPlans)
		api.PUT("/plans/:name", planHandler.SavePlan)
		api.GET("/plans/:name", planHandler.GetPlan)
		api.GET("/plans/:name/machines/:machine/timeline", planHandler.MachineTimeline)

		api.POST("/optimizer/suggest", optimizerHandler.Suggest)
		api.POST("/optimizer/apply", optimizerHandler.Apply)

		api.GET("/calendar/summary", calendarHandler.Summary)
		api.GET("/calendar/holidays", calendarHandler.ListHolidays)
		api.POST("/calendar/holidays", calendarHandler.AddHolidays)
		api.DELETE("/calendar/holidays", calendarHandler.RemoveHolidays)
		api.PUT("/calendar/weekend-policy", calendarHandler.SetWeekendPolicy)
		api.PUT("/calendar/working-weekends", calendarHandler.SetWorkingWeekendDates)
		api.GET("/calendar/weekends/:year", calendarHandler.WeekendsInYear)
		api.DELETE("/calendar", calendarHandler.Clear)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
