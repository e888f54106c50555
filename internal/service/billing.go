package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/cardkeeper-server/internal/logger"
	"github.com/dtroode/cardkeeper-server/internal/model"
	"github.com/dtroode/cardkeeper-server/internal/validate"
)

// PlanGranter changes the plan of an account without an administrator check.
type PlanGranter interface {
	GrantPlan(ctx context.Context, userID uuid.UUID, plan model.Plan) (model.User, error)
}

// Billing connects the payment gateway to account plans.
type Billing struct {
	users   UserResolver
	plans   PlanGranter
	gateway model.PaymentGateway
	logger  *logger.Logger
}

func NewBilling(users UserResolver, plans PlanGranter, gateway model.PaymentGateway, logger *logger.Logger) *Billing {
	return &Billing{
		users:   users,
		plans:   plans,
		gateway: gateway,
		logger:  logger,
	}
}

// CreateIntent asks the gateway for a payment intent. A gateway failure is
// logged and reported as ok=false.
func (s *Billing) CreateIntent(ctx context.Context, amount int64, currency string) (model.PaymentIntent, bool, error) {
	user, ok, err := s.users.CurrentUser(ctx)
	if err != nil {
		return model.PaymentIntent{}, false, err
	}
	if !ok {
		return model.PaymentIntent{}, false, model.ErrNoSession
	}

	currency = strings.ToLower(strings.TrimSpace(currency))
	err = validate.New().
		Custom("amount", amount <= 0, "must be positive").
		Custom("currency", len(currency) != 3, "must be a three-letter currency code").
		Err()
	if err != nil {
		return model.PaymentIntent{}, false, err
	}

	intent, err := s.gateway.CreateIntent(ctx, amount, currency)
	if err != nil {
		s.logger.Warn("Billing service: failed to create payment intent", "user_id", user.ID, "error", err.Error())
		return model.PaymentIntent{}, false, nil
	}

	s.logger.Info("Billing service: payment intent created", "user_id", user.ID, "intent_id", intent.ID)
	return intent, true, nil
}

// HandleConfirmation upgrades the paying account to premium when the payment
// succeeded. Other outcomes are logged and ignored.
func (s *Billing) HandleConfirmation(ctx context.Context, event model.PaymentEvent) error {
	if event.Status != model.PaymentSucceeded {
		s.logger.Info("Billing service: ignoring payment event", "intent_id", event.IntentID, "status", string(event.Status))
		return nil
	}
	if event.UserID == uuid.Nil {
		return model.NewValidationError("userId", "is required")
	}

	if _, err := s.plans.GrantPlan(ctx, event.UserID, model.PlanPremium); err != nil {
		return err
	}

	s.logger.Info("Billing service: plan upgraded", "user_id", event.UserID, "intent_id", event.IntentID)
	return nil
}
