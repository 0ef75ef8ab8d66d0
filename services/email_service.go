package services

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"admissions-api/config"
	"admissions-api/models"
)

// EmailContext links a logged mail back to the entities it concerns.
type EmailContext struct {
	UniversityID  string
	UserID        string
	LeadID        string
	ApplicationID string
}

// sendMail is swappable in tests.
var sendMail = config.SendMail

// deliver sends one templated notification and records the attempt in
// email_logs. Failures are logged and swallowed: notification mail never
// blocks a request.
func deliver(toEmail, toName, subject, html, emailType string, ctx EmailContext) {
	entry := models.EmailLog{
		ID:            uuid.NewString(),
		ToEmail:       toEmail,
		ToName:        toName,
		Subject:       subject,
		EmailType:     emailType,
		Status:        models.EmailSent,
		UniversityID:  ctx.UniversityID,
		UserID:        ctx.UserID,
		LeadID:        ctx.LeadID,
		ApplicationID: ctx.ApplicationID,
	}

	if err := sendMail([]string{toEmail}, subject, html); err != nil {
		log.Printf("email: failed to send %s to %s: %v", emailType, toEmail, err)
		entry.Status = models.EmailFailed
		entry.ErrorMessage = err.Error()
	}

	if err := config.DB.Create(&entry).Error; err != nil {
		log.Printf("email: failed to log %s to %s: %v", emailType, toEmail, err)
	}
}

func SendWelcomeEmail(toEmail, toName, universityName string, ctx EmailContext) {
	subject := fmt.Sprintf("Welcome to %s", universityName)
	html := fmt.Sprintf(`<p>Dear %s,</p>
<p>Your student account at <b>%s</b> has been created. Log in to continue
your application.</p>`, toName, universityName)
	deliver(toEmail, toName, subject, html, models.EmailStudentRegistration, ctx)
}

func SendCredentialsEmail(toEmail, toName, role, personID, password string, ctx EmailContext) {
	subject := "Your staff account credentials"
	html := fmt.Sprintf(`<p>Dear %s,</p>
<p>A %s account has been created for you.</p>
<p>Login ID: <b>%s</b><br>Temporary password: <b>%s</b></p>
<p>Please change your password after first login.</p>`, toName, role, personID, password)
	deliver(toEmail, toName, subject, html, models.EmailUserCredentials, ctx)
}

func SendLeadAssignmentEmail(toEmail, toName, leadName, leadEmail, leadPhone string, ctx EmailContext) {
	subject := fmt.Sprintf("New lead assigned: %s", leadName)
	html := fmt.Sprintf(`<p>Dear %s,</p>
<p>A new lead has been assigned to you.</p>
<p>Name: %s<br>Email: %s<br>Phone: %s</p>`, toName, leadName, leadEmail, leadPhone)
	deliver(toEmail, toName, subject, html, models.EmailLeadAssignment, ctx)
}

func SendPaymentReceiptEmail(toEmail, toName string, amountPaise int64, paymentID, feeType, universityName string, ctx EmailContext) {
	subject := fmt.Sprintf("Payment receipt - %s", universityName)
	html := fmt.Sprintf(`<p>Dear %s,</p>
<p>We received your %s payment of <b>₹%.2f</b>.</p>
<p>Payment reference: %s</p>`, toName, feeType, float64(amountPaise)/100, paymentID)
	deliver(toEmail, toName, subject, html, models.EmailPaymentReceipt, ctx)
}

func SendRefundEmail(toEmail, toName string, amountPaise int64, reason string, ctx EmailContext) {
	subject := "Refund processed"
	html := fmt.Sprintf(`<p>Dear %s,</p>
<p>A refund of <b>₹%.2f</b> has been processed.</p>
<p>Reason: %s</p>`, toName, float64(amountPaise)/100, reason)
	deliver(toEmail, toName, subject, html, models.EmailRefundNotification, ctx)
}

func SendTestResultEmail(toEmail, toName string, marks, total float64, passed bool, ctx EmailContext) {
	outcome := "did not pass"
	if passed {
		outcome = "passed"
	}
	subject := "Your entrance test result"
	html := fmt.Sprintf(`<p>Dear %s,</p>
<p>You scored <b>%.2f / %.2f</b> and %s the entrance test.</p>`, toName, marks, total, outcome)
	deliver(toEmail, toName, subject, html, models.EmailTestResult, ctx)
}

func SendApplicationStatusEmail(toEmail, toName, applicationNumber, status, message string, ctx EmailContext) {
	subject := "Application status update"
	html := fmt.Sprintf(`<p>Dear %s,</p>
<p>Your application <b>%s</b> is now <b>%s</b>.</p>
<p>%s</p>`, toName, applicationNumber, status, message)
	deliver(toEmail, toName, subject, html, models.EmailApplicationStatus, ctx)
}
