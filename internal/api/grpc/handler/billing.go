package handler

import (
	"context"
	"crypto/subtle"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dtroode/cardkeeper-server/internal/logger"
	"github.com/dtroode/cardkeeper-server/internal/model"
)

// BillingServiceName is the gRPC service name of payment operations.
const BillingServiceName = "cardkeeper.Billing"

// webhookSecretKey is the metadata key the payment network signs confirmations with.
const webhookSecretKey = "x-webhook-secret"

// BillingService defines payment operations.
type BillingService interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (model.PaymentIntent, bool, error)
	HandleConfirmation(ctx context.Context, event model.PaymentEvent) error
}

// Billing handles gRPC endpoints for payments.
type Billing struct {
	billingService BillingService
	webhookSecret  string
	logger         *logger.Logger
}

// NewBilling creates a new Billing handler. Confirmations are refused while
// webhookSecret is empty.
func NewBilling(billingService BillingService, webhookSecret string, logger *logger.Logger) *Billing {
	return &Billing{billingService: billingService, webhookSecret: webhookSecret, logger: logger}
}

// BillingServiceDesc describes cardkeeper.Billing.
var BillingServiceDesc = grpc.ServiceDesc{
	ServiceName: BillingServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(BillingServiceName, "CreateIntent", (*Billing).CreateIntent),
		unaryMethod(BillingServiceName, "HandlePaymentConfirmation", (*Billing).HandlePaymentConfirmation),
	},
	Metadata: "cardkeeper/billing",
}

func (h *Billing) CreateIntent(ctx context.Context, req *CreateIntentRequest) (*CreateIntentResponse, error) {
	intent, ok, err := h.billingService.CreateIntent(ctx, req.Amount, req.Currency)
	if err != nil {
		return nil, handleError(err)
	}
	if !ok {
		return &CreateIntentResponse{}, nil
	}
	return &CreateIntentResponse{Intent: &intent, Created: true}, nil
}

// HandlePaymentConfirmation receives the payment network's confirmation
// event. It is authenticated by the shared webhook secret, not by a session.
func (h *Billing) HandlePaymentConfirmation(ctx context.Context, req *PaymentConfirmationRequest) (*Empty, error) {
	if h.webhookSecret == "" {
		return nil, status.Error(codes.PermissionDenied, "payment confirmations are disabled")
	}

	var secret string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(webhookSecretKey); len(values) > 0 {
			secret = values[0]
		}
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.webhookSecret)) != 1 {
		h.logger.Warn("Billing handler: rejected payment confirmation", "intent_id", req.IntentID)
		return nil, status.Error(codes.Unauthenticated, "invalid webhook secret")
	}

	err := h.billingService.HandleConfirmation(ctx, model.PaymentEvent{
		IntentID: req.IntentID,
		UserID:   req.UserID,
		Status:   req.Status,
	})
	if err != nil {
		h.logger.Error("Billing handler: confirmation failed", "intent_id", req.IntentID, "error", err.Error())
		return nil, handleError(err)
	}
	return &Empty{}, nil
}
