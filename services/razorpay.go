package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// PaymentGateway wraps the order, signature and refund calls the payment
// flow needs. Every call is single-attempt; failures surface to the caller.
type PaymentGateway interface {
	// CreateOrder opens an order for the given amount in minor units.
	// A non-empty linkedAccountID adds a marketplace transfer of the
	// full amount to the university's account.
	CreateOrder(amountPaise int64, currency, receipt, linkedAccountID string) (orderID string, err error)
	// VerifyPaymentSignature checks the checkout callback signature.
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	// VerifyWebhookSignature checks the webhook body HMAC.
	VerifyWebhookSignature(body []byte, signature string) bool
	// Refund returns part or all of a captured payment.
	Refund(paymentID string, amountPaise int64, reason string) (refundID string, err error)
	// KeyID is the public key the frontend checkout needs.
	KeyID() string
}

// Gateway is the process-wide payment gateway, set by InitGateway.
// Tests may substitute a fake.
var Gateway PaymentGateway

// InitGateway picks the live Razorpay client when keys are configured and
// a mock otherwise, mirroring the keyless development mode.
func InitGateway() {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if keyID == "" || keySecret == "" {
		Gateway = &mockGateway{}
		return
	}
	Gateway = &razorpayGateway{
		client:        razorpay.NewClient(keyID, keySecret),
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
	}
}

type razorpayGateway struct {
	client        *razorpay.Client
	keyID         string
	keySecret     string
	webhookSecret string
}

func (g *razorpayGateway) CreateOrder(amountPaise int64, currency, receipt, linkedAccountID string) (string, error) {
	data := map[string]interface{}{
		"amount":          amountPaise,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}
	if linkedAccountID != "" {
		data["transfers"] = []map[string]interface{}{{
			"account":  linkedAccountID,
			"amount":   amountPaise,
			"currency": currency,
			"on_hold":  false,
		}}
	}

	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	id, _ := order["id"].(string)
	if id == "" {
		return "", fmt.Errorf("create order: gateway returned no order id")
	}
	return id, nil
}

func (g *razorpayGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return utils.VerifyPaymentSignature(map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}, signature, g.keySecret)
}

func (g *razorpayGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	if g.webhookSecret == "" {
		return true
	}
	return utils.VerifyWebhookSignature(string(body), signature, g.webhookSecret)
}

func (g *razorpayGateway) Refund(paymentID string, amountPaise int64, reason string) (string, error) {
	refund, err := g.client.Payment.Refund(paymentID, int(amountPaise), map[string]interface{}{
		"notes": map[string]interface{}{"reason": reason},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("refund: %w", err)
	}
	id, _ := refund["id"].(string)
	if id == "" {
		return "", fmt.Errorf("refund: gateway returned no refund id")
	}
	return id, nil
}

func (g *razorpayGateway) KeyID() string { return g.keyID }

// mockGateway fabricates ids so the flow can run without gateway keys.
type mockGateway struct{}

func (m *mockGateway) CreateOrder(int64, string, string, string) (string, error) {
	return "order_mock_" + mockSuffix(), nil
}

func (m *mockGateway) VerifyPaymentSignature(string, string, string) bool { return true }

func (m *mockGateway) VerifyWebhookSignature([]byte, string) bool { return true }

func (m *mockGateway) Refund(string, int64, string) (string, error) {
	return "rfnd_mock_" + mockSuffix(), nil
}

func (m *mockGateway) KeyID() string { return "mock_key" }

func mockSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
