package handlers

import (
	"net/http"
	"time"

	"learnplatform/internal/infrastructure/security"
	"learnplatform/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(
	paymentHandler *PaymentHandler,
	courseHandler *CourseHandler,
	progressHandler *ProgressHandler,
	contactHandler *ContactHandler,
	limiter *middleware.RateLimiter,
	verifier *security.TokenVerifier,
) *gin.Engine {
	r := gin.Default()
	r.HandleMethodNotAllowed = true

	// CORS applies to every route uniformly, echoing the request origin.
	config := cors.DefaultConfig()
	config.AllowOriginFunc = func(origin string) bool { return true }
	config.AllowCredentials = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	r.Use(cors.New(config))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Server is running"})
		})

		api.POST("/create-checkout-session", limiter.Limit("checkout", 10, 1*time.Minute), paymentHandler.CreateCheckoutSession)
		api.POST("/webhook", paymentHandler.Webhook)
		api.POST("/record-purchase", paymentHandler.RecordPurchase)
		api.POST("/send-contact-email", limiter.Limit("contact", 5, 5*time.Minute), contactHandler.Send)

		api.GET("/courses", courseHandler.List)
		api.GET("/courses/:id", courseHandler.GetOne)

		authorized := api.Group("")
		authorized.Use(middleware.AuthMiddleware(verifier))
		{
			authorized.GET("/my-courses", courseHandler.MyCourses)
			authorized.GET("/my-courses/stats", courseHandler.Stats)
			authorized.GET("/courses/:id/access", courseHandler.Access)
			authorized.GET("/courses/:id/progress", courseHandler.CourseProgress)
			authorized.GET("/courses/:id/resume", courseHandler.Resume)
			authorized.GET("/lessons/:id/progress", progressHandler.GetLessonProgress)
			authorized.PUT("/lessons/:id/progress", progressHandler.UpdateLessonProgress)
		}
	}

	return r
}
