package services

import (
	"os"
	"strings"
	"testing"
)

func TestInitGatewayFallsBackToMock(t *testing.T) {
	os.Unsetenv("RAZORPAY_KEY_ID")
	os.Unsetenv("RAZORPAY_KEY_SECRET")

	InitGateway()

	if _, ok := Gateway.(*mockGateway); !ok {
		t.Fatalf("Gateway = %T, want *mockGateway without keys", Gateway)
	}
}

func TestMockGatewayIDs(t *testing.T) {
	g := &mockGateway{}

	orderID, err := g.CreateOrder(50000, "INR", "rcpt_1", "")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if !strings.HasPrefix(orderID, "order_mock_") {
		t.Fatalf("order id = %q", orderID)
	}

	refundID, err := g.Refund("pay_123", 50000, "withdrawn")
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if !strings.HasPrefix(refundID, "rfnd_mock_") {
		t.Fatalf("refund id = %q", refundID)
	}

	if !g.VerifyPaymentSignature("o", "p", "s") {
		t.Fatalf("mock signature verification must accept")
	}
}
