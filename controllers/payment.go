package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"admissions-api/config"
	"admissions-api/models"
	"admissions-api/services"
)

// CreatePaymentOrder opens a gateway order for the student's registration
// fee. The fee amount always comes from the university configuration,
// never from the client.
func CreatePaymentOrder(c *gin.Context) {
	me := currentActor(c)

	var university models.University
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}
	if !university.RegistrationConfig.FeeEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fee payment is not enabled"})
		return
	}
	if university.RegistrationConfig.FeeAmountPaise <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fee amount is not configured"})
		return
	}

	var application models.Application
	if err := config.DB.Where("university_id = ? AND student_id = ?", me.UniversityID, me.ID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No application found"})
		return
	}
	if application.CompletedSteps.Contains(models.StepPayment) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fee already paid"})
		return
	}

	// Reuse an existing open order instead of opening a second one.
	var existing models.Payment
	if err := config.DB.Where("application_id = ? AND status = ?",
		application.ID, models.PaymentInitiated).
		Order("created_at DESC").First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{
			"message":  "Order already open",
			"order_id": existing.RazorpayOrderID,
			"amount":   existing.AmountPaise,
			"currency": existing.Currency,
			"key_id":   services.Gateway.KeyID(),
		})
		return
	}

	amount := university.RegistrationConfig.FeeAmountPaise
	receipt := fmt.Sprintf("rcpt_%s", application.ApplicationNumber)
	orderID, err := services.Gateway.CreateOrder(amount, "INR", receipt,
		university.RazorpayConfig.LinkedAccountID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create payment order"})
		return
	}

	payment := models.Payment{
		ID:                  uuid.NewString(),
		UniversityID:        me.UniversityID,
		StudentID:           me.ID,
		ApplicationID:       application.ID,
		AmountPaise:         amount,
		Currency:            "INR",
		FeeType:             "registration",
		RazorpayOrderID:     orderID,
		Status:              models.PaymentInitiated,
		TransferStatus:      models.TransferPending,
		TransferAmountPaise: amount,
	}
	if university.RazorpayConfig.LinkedAccountID == "" {
		payment.TransferAmountPaise = 0
	}

	if err := config.DB.Create(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}

	if application.LeadID != "" {
		entry := services.NewTimelineEntry(models.EventPaymentInitiated, "Fee payment initiated", me.ID, me.Name,
			map[string]interface{}{"order_id": orderID, "amount_paise": amount})
		services.AppendLeadEvent(config.DB, application.LeadID,
			map[string]interface{}{"stage": models.StageFeePending}, entry)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Order created",
		"order_id": orderID,
		"amount":   amount,
		"currency": "INR",
		"key_id":   services.Gateway.KeyID(),
	})
}

// VerifyPayment validates the checkout callback signature and, on success,
// marks the payment captured and the wizard step complete.
func VerifyPayment(c *gin.Context) {
	type VerifyPaymentRequest struct {
		RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
		RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
		RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	var payment models.Payment
	if err := config.DB.Where("razorpay_order_id = ? AND student_id = ?",
		req.RazorpayOrderID, me.ID).First(&payment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	if payment.Status == models.PaymentSuccess {
		c.JSON(http.StatusOK, gin.H{"message": "Payment already verified"})
		return
	}

	if !services.Gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		config.DB.Model(&payment).Updates(map[string]interface{}{
			"status":              models.PaymentFailed,
			"razorpay_payment_id": req.RazorpayPaymentID,
		})
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment signature"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&payment).Updates(map[string]interface{}{
			"status":              models.PaymentSuccess,
			"razorpay_payment_id": req.RazorpayPaymentID,
			"razorpay_signature":  req.RazorpaySignature,
		}).Error; err != nil {
			return err
		}

		var application models.Application
		if err := tx.Where("id = ?", payment.ApplicationID).First(&application).Error; err != nil {
			return err
		}
		var university models.University
		if err := tx.Where("id = ?", application.UniversityID).First(&university).Error; err != nil {
			return err
		}
		application.PaymentID = payment.ID
		application.PaymentStatus = models.PaymentSuccess
		application.MarkStepCompleted(models.StepPayment,
			services.NextStep(university.RegistrationConfig, models.StepPayment))
		return tx.Save(&application).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}

	var application models.Application
	if err := config.DB.Where("id = ?", payment.ApplicationID).First(&application).Error; err == nil &&
		application.LeadID != "" {
		entry := services.NewTimelineEntry(models.EventPaymentSuccess, "Fee payment successful", me.ID, me.Name,
			map[string]interface{}{"payment_id": req.RazorpayPaymentID, "amount_paise": payment.AmountPaise})
		services.AppendLeadEvent(config.DB, application.LeadID,
			map[string]interface{}{"stage": models.StageFeePaid}, entry)
	}

	var university models.University
	universityName := ""
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err == nil {
		universityName = university.Name
	}
	services.SendPaymentReceiptEmail(me.Email, me.Name, payment.AmountPaise,
		req.RazorpayPaymentID, payment.FeeType, universityName,
		services.EmailContext{UniversityID: me.UniversityID, UserID: me.ID, ApplicationID: payment.ApplicationID})

	c.JSON(http.StatusOK, gin.H{"message": "Payment verified", "payment_id": payment.ID})
}

// GetMyPayments returns the calling student's payment history.
func GetMyPayments(c *gin.Context) {
	me := currentActor(c)

	var payments []models.Payment
	if err := config.DB.Where("student_id = ? AND university_id = ?", me.ID, me.UniversityID).
		Order("created_at DESC").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments, "total": len(payments)})
}

// ListPayments returns tenant payments for staff, filterable by status.
func ListPayments(c *gin.Context) {
	me := currentActor(c)

	query := config.DB.Model(&models.Payment{}).Where("university_id = ?", me.UniversityID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	page, limit := pageParams(c)
	var payments []models.Payment
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments, "total": total, "page": page, "limit": limit})
}

// InitiateRefund refunds part or all of a captured payment.
func InitiateRefund(c *gin.Context) {
	type RefundRequest struct {
		AmountPaise int64  `json:"amount_paise"`
		Reason      string `json:"reason" binding:"required"`
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	var university models.University
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}
	if !university.RegistrationConfig.RefundAllowed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refunds are not enabled for this university"})
		return
	}

	var payment models.Payment
	if err := config.DB.Where("id = ? AND university_id = ?", c.Param("id"), me.UniversityID).
		First(&payment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	if payment.Status != models.PaymentSuccess && payment.Status != models.PaymentPartiallyRefunded {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only successful payments can be refunded"})
		return
	}

	amount := req.AmountPaise
	remaining := payment.AmountPaise - payment.RefundAmountPaise
	if amount <= 0 {
		amount = remaining
	}
	if amount > remaining {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refund amount exceeds the refundable balance"})
		return
	}

	refundID, err := services.Gateway.Refund(payment.RazorpayPaymentID, amount, req.Reason)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Refund failed at the gateway"})
		return
	}

	now := time.Now()
	status := models.PaymentPartiallyRefunded
	if payment.RefundAmountPaise+amount >= payment.AmountPaise {
		status = models.PaymentRefunded
	}
	if err := config.DB.Model(&payment).Updates(map[string]interface{}{
		"status":              status,
		"refund_id":           refundID,
		"refund_amount_paise": payment.RefundAmountPaise + amount,
		"refund_status":       "processed",
		"refund_reason":       req.Reason,
		"refunded_at":         now,
		"refunded_by":         me.ID,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record refund"})
		return
	}

	var application models.Application
	if err := config.DB.Where("id = ?", payment.ApplicationID).First(&application).Error; err == nil &&
		application.LeadID != "" {
		entry := services.NewTimelineEntry(models.EventRefundCompleted, "Fee refund processed", me.ID, me.Name,
			map[string]interface{}{"refund_id": refundID, "amount_paise": amount})
		services.AppendLeadEvent(config.DB, application.LeadID, nil, entry)
	}

	var student models.User
	if err := config.DB.Where("id = ?", payment.StudentID).First(&student).Error; err == nil {
		services.SendRefundEmail(student.Email, student.Name, amount, req.Reason,
			services.EmailContext{UniversityID: me.UniversityID, UserID: student.ID, ApplicationID: payment.ApplicationID})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Refund processed", "refund_id": refundID, "amount_paise": amount})
}
