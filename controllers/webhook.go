package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"admissions-api/config"
	"admissions-api/models"
	"admissions-api/services"
)

// webhookEvent is the envelope Razorpay posts. Only the fields the
// handlers below read are declared.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
		Transfer struct {
			Entity struct {
				ID     string `json:"id"`
				Source string `json:"source"`
				Status string `json:"status"`
			} `json:"entity"`
		} `json:"transfer"`
	} `json:"payload"`
}

// RazorpayWebhook reconciles asynchronous gateway events. Events for
// unknown payments are acknowledged and dropped so the gateway stops
// retrying them.
func RazorpayWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if !services.Gateway.VerifyWebhookSignature(body, signature) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed webhook payload"})
		return
	}

	switch event.Event {
	case "payment.captured":
		handlePaymentCaptured(event)
	case "payment.failed":
		handlePaymentFailed(event)
	case "transfer.processed":
		handleTransferProcessed(event)
	default:
		log.Printf("webhook: ignoring event %s", event.Event)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handlePaymentCaptured covers the case where the client never came back
// after checkout: the webhook is the only confirmation we get.
func handlePaymentCaptured(event webhookEvent) {
	entity := event.Payload.Payment.Entity

	var payment models.Payment
	if err := config.DB.Where("razorpay_order_id = ?", entity.OrderID).First(&payment).Error; err != nil {
		log.Printf("webhook: payment.captured for unknown order %s", entity.OrderID)
		return
	}
	if payment.Status == models.PaymentSuccess {
		return
	}

	if err := config.DB.Model(&payment).Updates(map[string]interface{}{
		"status":              models.PaymentSuccess,
		"razorpay_payment_id": entity.ID,
	}).Error; err != nil {
		log.Printf("webhook: failed to mark payment %s captured: %v", payment.ID, err)
		return
	}

	var application models.Application
	if err := config.DB.Where("id = ?", payment.ApplicationID).First(&application).Error; err != nil {
		return
	}
	var university models.University
	if err := config.DB.Where("id = ?", application.UniversityID).First(&university).Error; err != nil {
		return
	}
	application.PaymentID = payment.ID
	application.PaymentStatus = models.PaymentSuccess
	application.MarkStepCompleted(models.StepPayment,
		services.NextStep(university.RegistrationConfig, models.StepPayment))
	if err := config.DB.Save(&application).Error; err != nil {
		log.Printf("webhook: failed to update application %s: %v", application.ID, err)
		return
	}

	if application.LeadID != "" {
		entry := services.NewTimelineEntry(models.EventPaymentSuccess,
			"Fee payment captured", "system", "Payment Webhook",
			map[string]interface{}{"payment_id": entity.ID})
		services.AppendLeadEvent(config.DB, application.LeadID,
			map[string]interface{}{"stage": models.StageFeePaid}, entry)
	}
}

func handlePaymentFailed(event webhookEvent) {
	entity := event.Payload.Payment.Entity

	var payment models.Payment
	if err := config.DB.Where("razorpay_order_id = ?", entity.OrderID).First(&payment).Error; err != nil {
		log.Printf("webhook: payment.failed for unknown order %s", entity.OrderID)
		return
	}
	// A later failed authorization attempt must not clobber a capture.
	if payment.Status == models.PaymentSuccess {
		return
	}

	if err := config.DB.Model(&payment).Updates(map[string]interface{}{
		"status":              models.PaymentFailed,
		"razorpay_payment_id": entity.ID,
	}).Error; err != nil {
		log.Printf("webhook: failed to mark payment %s failed: %v", payment.ID, err)
		return
	}

	var application models.Application
	if err := config.DB.Where("id = ?", payment.ApplicationID).First(&application).Error; err == nil &&
		application.LeadID != "" {
		entry := services.NewTimelineEntry(models.EventPaymentFailed,
			"Fee payment failed", "system", "Payment Webhook",
			map[string]interface{}{"payment_id": entity.ID})
		services.AppendLeadEvent(config.DB, application.LeadID, nil, entry)
	}
}

func handleTransferProcessed(event webhookEvent) {
	entity := event.Payload.Transfer.Entity

	// The transfer's source is the payment it was split from.
	var payment models.Payment
	if err := config.DB.Where("razorpay_payment_id = ?", entity.Source).First(&payment).Error; err != nil {
		log.Printf("webhook: transfer.processed for unknown payment %s", entity.Source)
		return
	}

	now := time.Now()
	if err := config.DB.Model(&payment).Updates(map[string]interface{}{
		"transfer_id":     entity.ID,
		"transfer_status": models.TransferSuccess,
		"transferred_at":  now,
	}).Error; err != nil {
		log.Printf("webhook: failed to mark transfer %s processed: %v", entity.ID, err)
	}
}
