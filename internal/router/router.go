package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/hackathon-mentor-api/internal/handler"
	"github.com/noah-isme/hackathon-mentor-api/internal/middleware"
	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	"github.com/noah-isme/hackathon-mentor-api/internal/service"
	"github.com/noah-isme/hackathon-mentor-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/hackathon-mentor-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/hackathon-mentor-api/pkg/middleware/requestid"
)

// Deps lists what the HTTP surface needs.
type Deps struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger

	Auth    middleware.TokenValidator
	Metrics *service.MetricsService
	Checks  map[string]handler.ReadinessCheck

	Mentors      *handler.MentorHandler
	Assignments  *handler.AssignmentHandler
	Distribution *handler.DistributionHandler
	Evaluations  *handler.EvaluationHandler
}

// New builds the gin engine with all routes mounted.
func New(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.Logger))
	r.Use(corsmiddleware.New(d.AllowedOrigins))
	r.Use(middleware.Metrics(d.Metrics))

	ops := handler.NewMetricsHandler(d.Metrics, d.Checks)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	if d.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	organizers := []models.UserRole{models.RoleOrganizer, models.RoleAdmin}
	api := r.Group(d.APIPrefix, middleware.JWT(d.Auth))

	hackathons := api.Group("/hackathons/:id", middleware.RequireRoles(organizers...))
	hackathons.POST("/distribute", d.Distribution.Distribute)
	hackathons.GET("/assignment-runs/latest", d.Distribution.LatestRun)
	hackathons.GET("/assignments", d.Assignments.ListByHackathon)

	judges := middleware.RequireRoles(models.RoleOrganizer, models.RoleAdmin, models.RoleJudge)
	api.POST("/hackathons/:id/evaluations", judges, d.Evaluations.Start)
	api.GET("/hackathons/:id/evaluations", judges, d.Evaluations.List)
	api.GET("/evaluation-jobs/:id", judges, d.Evaluations.Job)

	readMentors := middleware.RequireRoles(models.RoleOrganizer, models.RoleAdmin, models.RoleMentor)
	writeMentors := middleware.RequireRoles(organizers...)
	selfOrOrganizer := middleware.RBAC(string(models.RoleOrganizer), string(models.RoleAdmin), middleware.Self)
	mentors := api.Group("/mentors")
	mentors.POST("", writeMentors, d.Mentors.Create)
	mentors.GET("", readMentors, d.Mentors.List)
	mentors.GET("/:id", readMentors, d.Mentors.Get)
	mentors.PATCH("/:id", writeMentors, d.Mentors.Update)
	mentors.GET("/:id/assignments", selfOrOrganizer, d.Assignments.ListByMentor)
	mentors.GET("/:id/assignments/export", selfOrOrganizer, d.Assignments.ExportByMentor)

	api.PATCH("/assignments/:id/status", readMentors, d.Assignments.UpdateStatus)
	api.POST("/domains/classify", writeMentors, d.Distribution.Classify)

	return r
}
