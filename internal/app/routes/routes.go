package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/educareway/internal/app/controllers"
	"github.com/yigit/educareway/internal/middleware"
)

// Controllers groups the handlers mounted under /api
type Controllers struct {
	Auth     *controllers.AuthController
	Course   *controllers.CourseController
	Semester *controllers.SemesterController
	Subject  *controllers.SubjectController
	Resource *controllers.ResourceController
	Health   *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/ping", c.Health.Ping)

	api := router.Group("/api")
	api.GET("/health", c.Health.Health)

	// Admin routes load the user before checking the role
	admin := []gin.HandlerFunc{authMiddleware.RequireUser(), authMiddleware.RequireAdmin()}

	auth := api.Group("/auth")
	{
		// Registration only needs a verified token, the local user is created here
		auth.POST("/register", authMiddleware.RequireIdentity(), c.Auth.Register)
		auth.GET("/me", authMiddleware.RequireUser(), c.Auth.GetMe)
		auth.PUT("/fcm-token", authMiddleware.RequireUser(), c.Auth.UpdatePushToken)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", c.Course.ListCourses)
		courses.GET("/:code", c.Course.GetCourseByCode)

		coursesAdmin := courses.Group("", admin...)
		{
			coursesAdmin.POST("", c.Course.CreateCourse)
			coursesAdmin.PUT("/:id", c.Course.UpdateCourse)
			coursesAdmin.DELETE("/:id", c.Course.DeleteCourse)
		}
	}

	semesters := api.Group("/semesters")
	{
		semesters.GET("/course/:courseId", c.Semester.ListByCourse)

		semestersAdmin := semesters.Group("", admin...)
		{
			semestersAdmin.POST("", c.Semester.CreateSemester)
			semestersAdmin.DELETE("/:id", c.Semester.DeleteSemester)
		}
	}

	subjects := api.Group("/subjects")
	{
		subjects.GET("/semester/:id", c.Subject.ListBySemester)
		subjects.GET("/:id", c.Subject.GetSubject)

		subjectsAdmin := subjects.Group("", admin...)
		{
			subjectsAdmin.POST("", c.Subject.CreateSubject)
			subjectsAdmin.PUT("/:id", c.Subject.UpdateSubject)
			subjectsAdmin.DELETE("/:id", c.Subject.DeleteSubject)
		}
	}

	resources := api.Group("/resources")
	{
		resources.GET("/subject/:id", c.Resource.ListBySubject)
		resources.GET("/download/:id", c.Resource.Download)

		resourcesAdmin := resources.Group("", admin...)
		{
			resourcesAdmin.POST("/upload", c.Resource.Upload)
			resourcesAdmin.POST("/video", c.Resource.CreateVideo)
			resourcesAdmin.PUT("/:id", c.Resource.UpdateResource)
			resourcesAdmin.DELETE("/:id", c.Resource.DeleteResource)
		}
	}
}
