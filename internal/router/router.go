package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/ravi-menon/dept-attendance-api/internal/handler"
	"github.com/ravi-menon/dept-attendance-api/internal/middleware"
	"github.com/ravi-menon/dept-attendance-api/internal/models"
	"github.com/ravi-menon/dept-attendance-api/internal/service"
	"github.com/ravi-menon/dept-attendance-api/pkg/config"
	"github.com/ravi-menon/dept-attendance-api/pkg/logger"
	corsmiddleware "github.com/ravi-menon/dept-attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ravi-menon/dept-attendance-api/pkg/middleware/requestid"
)

// Dependencies carries everything the router wires together.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	DB         *sqlx.DB
	Auth       *service.AuthService
	Metrics    *service.MetricsService
	AuthH      *handler.AuthHandler
	UserH      *handler.UserHandler
	TimetableH *handler.TimetableHandler
	AttendH    *handler.AttendanceHandler
	ReportH    *handler.ReportHandler
}

// New builds the gin engine with the full middleware chain and route table.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if deps.DB != nil {
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	requireAuth := middleware.JWT(deps.Auth)

	auth := api.Group("/auth")
	{
		auth.POST("/login", deps.AuthH.Login)
		auth.GET("/verify", requireAuth, deps.AuthH.Verify)
	}

	attendance := api.Group("/attendance", requireAuth)
	{
		attendance.POST("/take", middleware.RequireRoles(models.RoleFaculty), deps.AttendH.Take)
		attendance.GET("/student", middleware.RequireRoles(models.RoleStudent), deps.AttendH.Student)
		attendance.GET("/faculty/classes", middleware.RequireRoles(models.RoleFaculty), deps.AttendH.FacultyClasses)
		attendance.GET("/faculty/records", middleware.RequireRoles(models.RoleFaculty), deps.AttendH.FacultyRecords)
		attendance.GET("/class-students", middleware.RequireRoles(models.RoleFaculty, models.RoleHOD), deps.AttendH.ClassStudents)
		attendance.GET("/department", middleware.RequireRoles(models.RoleHOD), deps.ReportH.Department)
		attendance.GET("/department/export", middleware.RequireRoles(models.RoleHOD), deps.ReportH.Export)
		attendance.GET("/summary", deps.ReportH.Summary)
	}

	timetable := api.Group("/timetable", requireAuth)
	{
		timetable.GET("", deps.TimetableH.Query)
		timetable.PUT("", middleware.RequireRoles(models.RoleHOD), deps.TimetableH.Upsert)
		timetable.DELETE("/:id", middleware.RequireRoles(models.RoleHOD), deps.TimetableH.Delete)
		timetable.POST("/bulk-import", middleware.RequireRoles(models.RoleHOD), deps.TimetableH.BulkImport)
	}

	users := api.Group("/users", requireAuth)
	{
		users.GET("/profile", deps.UserH.Profile)
		users.PUT("/profile", deps.UserH.UpdateProfile)
		users.PUT("/change-password", deps.UserH.ChangePassword)
		users.GET("/faculty", middleware.RequireRoles(models.RoleHOD), deps.UserH.Faculty)
		users.GET("/students", middleware.RequireRoles(models.RoleFaculty, models.RoleHOD), deps.UserH.Students)
		users.GET("/department-stats", middleware.RequireRoles(models.RoleHOD), deps.UserH.DepartmentStats)
		users.POST("", middleware.RequireRoles(models.RoleHOD), deps.UserH.Create)
		users.PUT("/:id", middleware.RequireRoles(models.RoleHOD), deps.UserH.Update)
		users.DELETE("/:id", middleware.RequireRoles(models.RoleHOD), deps.UserH.Delete)
	}

	return r
}
