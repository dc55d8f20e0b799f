package http

import (
	"context"
	"time"

	"github.com/devtrails/campdir/internal/config"
	"github.com/devtrails/campdir/internal/http/handlers"
	"github.com/devtrails/campdir/internal/http/middlewares"
	"github.com/devtrails/campdir/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries everything the route table needs; main wires it once.
type Deps struct {
	Cfg  config.Config
	Prom *observability.Prom
	Reg  *prometheus.Registry

	Auth *middlewares.AuthMiddleware

	Health    *handlers.HealthHandler
	AuthH     *handlers.AuthHandler
	Bootcamps *handlers.BootcampsHandler
	Courses   *handlers.CoursesHandler
	Reviews   *handlers.ReviewsHandler
	Users     *handlers.UsersHandler
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("campdir"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORS(d.Cfg.CORSOrigins))
	// leave headroom above the photo size cap for multipart framing
	r.Use(middlewares.BodyLimit(d.Cfg.MaxFileUpload + 512*1024))
	r.Use(middlewares.RequireJSON())
	r.Use(d.Prom.GinHandleMiddleware())

	limiter := middlewares.NewRateLimiter(100, time.Minute)
	r.Use(limiter.Middleware(middlewares.KeyByUserOrIP))

	// liveness/readiness and metrics sit outside the API group
	r.GET("/healthz", d.Health.Healthz)
	r.GET("/readyz", d.Health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Reg, promhttp.HandlerOpts{})))

	// uploaded photos are served statically
	r.Static("/uploads", d.Cfg.FileUploadPath)

	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", d.AuthH.Register)
		authGroup.POST("/login", d.AuthH.Login)
		authGroup.GET("/logout", d.AuthH.Logout)
		authGroup.GET("/me", d.Auth.Protect(), d.AuthH.GetMe)
		authGroup.PUT("/updatedetails", d.Auth.Protect(), d.AuthH.UpdateDetails)
		authGroup.PUT("/updatepassword", d.Auth.Protect(), d.AuthH.UpdatePassword)
		authGroup.POST("/forgotpassword", d.AuthH.ForgotPassword)
		authGroup.PUT("/forgotpassword/:resettoken", d.AuthH.ResetPassword)
	}

	publish := []string{"publisher", "admin"}

	bootcampsGroup := v1.Group("/bootcamps")
	{
		bootcampsGroup.GET("", d.Bootcamps.List)
		bootcampsGroup.GET("/radius/:zipcode/:distance", d.Bootcamps.WithinRadius)
		bootcampsGroup.GET("/:id", d.Bootcamps.Get)
		bootcampsGroup.POST("", d.Auth.Protect(), d.Auth.Authorize(publish...), d.Bootcamps.Create)
		bootcampsGroup.PUT("/:id", d.Auth.Protect(), d.Auth.Authorize(publish...), d.Bootcamps.Update)
		bootcampsGroup.DELETE("/:id", d.Auth.Protect(), d.Auth.Authorize(publish...), d.Bootcamps.Delete)
		bootcampsGroup.PUT("/:id/photo", d.Auth.Protect(), d.Auth.Authorize(publish...), d.Bootcamps.UploadPhoto)

		// nested resources
		bootcampsGroup.GET("/:id/courses", d.Courses.List)
		bootcampsGroup.POST("/:id/courses", d.Auth.Protect(), d.Auth.Authorize(publish...), d.Courses.Create)
		bootcampsGroup.GET("/:id/reviews", d.Reviews.List)
		bootcampsGroup.POST("/:id/reviews", d.Auth.Protect(), d.Auth.Authorize("user", "admin"), d.Reviews.Create)
	}

	coursesGroup := v1.Group("/courses")
	{
		coursesGroup.GET("", d.Courses.List)
		coursesGroup.GET("/:courseId", d.Courses.Get)
		coursesGroup.PUT("/:courseId", d.Auth.Protect(), d.Auth.Authorize(publish...), d.Courses.Update)
		coursesGroup.DELETE("/:courseId", d.Auth.Protect(), d.Auth.Authorize(publish...), d.Courses.Delete)
	}

	reviewsGroup := v1.Group("/reviews")
	{
		reviewsGroup.GET("", d.Reviews.List)
		reviewsGroup.GET("/:reviewId", d.Reviews.Get)
		reviewsGroup.PUT("/:reviewId", d.Auth.Protect(), d.Auth.Authorize("user", "admin"), d.Reviews.Update)
		reviewsGroup.DELETE("/:reviewId", d.Auth.Protect(), d.Auth.Authorize("user", "admin"), d.Reviews.Delete)
	}

	usersGroup := v1.Group("/users", d.Auth.Protect(), d.Auth.Authorize("admin"))
	{
		usersGroup.GET("", d.Users.List)
		usersGroup.POST("", d.Users.Create)
		usersGroup.GET("/:id", d.Users.Get)
		usersGroup.PUT("/:id", d.Users.Update)
		usersGroup.DELETE("/:id", d.Users.Delete)
	}

	return r
}

// MongoPinger adapts the client to the health handler.
type MongoPinger struct {
	Client *mongo.Client
}

func (p MongoPinger) Ping(ctx context.Context) error {
	if p.Client == nil {
		return nil
	}
	return p.Client.Ping(ctx, nil)
}
