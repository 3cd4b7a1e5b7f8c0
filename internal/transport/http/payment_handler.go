package handlers

import (
	"log"
	"math"
	"net/http"
	"strings"

	"learnplatform/internal/application"
	"learnplatform/internal/domain"
	"learnplatform/internal/infrastructure/cache"
	"learnplatform/internal/infrastructure/payment"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	ledger        *application.PurchaseLedger
	courses       application.CourseStore
	checkout      *payment.Client
	events        *cache.EventCache
	webhookSecret string
	frontendURL   string
}

func NewPaymentHandler(
	ledger *application.PurchaseLedger,
	courses application.CourseStore,
	checkout *payment.Client,
	events *cache.EventCache,
	webhookSecret, frontendURL string,
) *PaymentHandler {
	return &PaymentHandler{
		ledger:        ledger,
		courses:       courses,
		checkout:      checkout,
		events:        events,
		webhookSecret: webhookSecret,
		frontendURL:   frontendURL,
	}
}

// POST /api/create-checkout-session
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	var req struct {
		CourseID string `json:"courseId"`
		UserID   string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.CourseID == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing courseId or userId"})
		return
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid courseId"})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userId"})
		return
	}

	course, err := h.courses.GetByID(c, courseID)
	if err != nil {
		if err == domain.ErrCourseNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		log.Printf("checkout: loading course %s: %v", courseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
		return
	}

	purchased, err := h.ledger.HasCompletedPurchase(c, userID, courseID)
	if err != nil {
		log.Printf("checkout: purchase check for %s/%s: %v", userID, courseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
		return
	}
	if purchased {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course already purchased"})
		return
	}

	origin := h.requestOrigin(c)
	session, err := h.checkout.CreateCheckoutSession(c, payment.CheckoutParams{
		CourseID:    course.ID.String(),
		CourseName:  course.Name,
		Description: course.Description,
		UnitAmount:  int64(math.Round(course.Price * 100)),
		UserID:      userID.String(),
		SuccessURL:  origin + "/payment-success.html?session_id={CHECKOUT_SESSION_ID}&course_id=" + course.ID.String(),
		CancelURL:   origin + "/courses.html",
	})
	if err != nil {
		log.Printf("checkout: creating session for %s/%s: %v", userID, courseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to start checkout. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": session.ID, "url": session.URL})
}

// requestOrigin picks the URL the user should land back on after checkout:
// the request's Origin header, then Referer, then the configured frontend.
func (h *PaymentHandler) requestOrigin(c *gin.Context) string {
	if origin := c.GetHeader("Origin"); origin != "" {
		return origin
	}
	if referer := c.GetHeader("Referer"); referer != "" {
		return strings.TrimRight(referer, "/")
	}
	return h.frontendURL
}

// POST /api/webhook
func (h *PaymentHandler) Webhook(c *gin.Context) {
	if h.webhookSecret == "" {
		log.Println("webhook: signing secret is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook not configured"})
		return
	}

	rawBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body"})
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	if err := payment.VerifySignature(rawBody, sig, h.webhookSecret, payment.DefaultTolerance); err != nil {
		log.Printf("webhook: signature verification failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook signature verification failed"})
		return
	}

	event, err := payment.ParseEvent(rawBody)
	if err != nil {
		log.Printf("webhook: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed event payload"})
		return
	}

	// Provider retries are acknowledged without re-processing. The ledger
	// is idempotent anyway, so a cache miss here is harmless.
	if h.events != nil && event.ID != "" {
		first, err := h.events.MarkProcessed(c, event.ID)
		if err != nil {
			log.Printf("webhook: event cache unavailable: %v", err)
		} else if !first {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
	}

	if event.Type == payment.EventCheckoutCompleted {
		h.handleCheckoutCompleted(c, &event.Data.Object)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *PaymentHandler) handleCheckoutCompleted(c *gin.Context, session *payment.SessionObject) {
	userID, err := uuid.Parse(session.Metadata["user_id"])
	if err != nil {
		log.Printf("webhook: session %s has invalid user_id metadata", session.ID)
		return
	}
	courseID, err := uuid.Parse(session.Metadata["course_id"])
	if err != nil {
		log.Printf("webhook: session %s has invalid course_id metadata", session.ID)
		return
	}

	amount := float64(session.AmountTotal) / 100
	if _, already, err := h.ledger.RecordFromProvider(c, userID, courseID, session.PaymentIntent, session.Customer, amount); err != nil {
		// Logged only: the delivery is still acknowledged, the client
		// fallback recorder converges the ledger.
		log.Printf("webhook: recording purchase %s/%s: %v", userID, courseID, err)
	} else if already {
		log.Printf("webhook: purchase %s/%s already recorded", userID, courseID)
	}
}

// POST /api/record-purchase
func (h *PaymentHandler) RecordPurchase(c *gin.Context) {
	var req struct {
		CourseID  string `json:"courseId"`
		UserID    string `json:"userId"`
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.CourseID == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing courseId or userId"})
		return
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid courseId"})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userId"})
		return
	}

	purchase, already, err := h.ledger.Record(c, userID, courseID, req.SessionID)
	if err != nil {
		if err == domain.ErrCourseNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		log.Printf("record-purchase: %s/%s: %v", userID, courseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record purchase. Please try again."})
		return
	}

	if already {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Purchase already recorded", "purchase": purchase})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "purchase": purchase})
}
