package checkout

import (
	"context"
	"fmt"
	"log"
)

// Step is one screen of the three-step checkout wizard.
type Step string

const (
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
	StepReview   Step = "review"
)

// ShippingPrefill caches the buyer's address between checkouts. It is a
// convenience cache, never a source of truth, so failures are tolerated.
type ShippingPrefill interface {
	Put(ctx context.Context, userID string, info ShippingInfo) error
	Get(ctx context.Context, userID string) (*ShippingInfo, error)
}

// Wizard walks a buyer through shipping -> payment -> review, strictly
// linear in both directions. Forward transitions are guarded; backward
// ones are not.
type Wizard struct {
	step     Step
	userID   string
	prefill  ShippingPrefill
	logger   *log.Logger
	Shipping ShippingInfo
	Method   PaymentMethod
	Card     CardDetails
	Phone    string // mpesa number
}

func NewWizard(userID string, prefill ShippingPrefill, logger *log.Logger) *Wizard {
	return &Wizard{
		step:    StepShipping,
		userID:  userID,
		prefill: prefill,
		logger:  logger,
	}
}

func (w *Wizard) Step() Step {
	return w.step
}

// Next advances one step. It returns an error and stays put when the
// current step's guard fails; no network or storage call happens in
// that case.
func (w *Wizard) Next(ctx context.Context) error {
	switch w.step {
	case StepShipping:
		if missing := w.Shipping.Validate(); missing != "" {
			return fmt.Errorf("missing required field: %s", missing)
		}
		// Best effort: a cache failure must not block the buyer.
		if w.prefill != nil {
			if err := w.prefill.Put(ctx, w.userID, w.Shipping); err != nil && w.logger != nil {
				w.logger.Printf("cache shipping info for %s: %v", w.userID, err)
			}
		}
		w.step = StepPayment
		return nil
	case StepPayment:
		if err := w.validatePayment(); err != nil {
			return err
		}
		w.step = StepReview
		return nil
	default:
		return fmt.Errorf("no step after %s", w.step)
	}
}

// Back moves one step backward, unguarded.
func (w *Wizard) Back() {
	switch w.step {
	case StepReview:
		w.step = StepPayment
	case StepPayment:
		w.step = StepShipping
	}
}

func (w *Wizard) validatePayment() error {
	return paymentPrecondition(w.Method, w.Card, w.Phone)
}

// paymentPrecondition is the payment step's guard. Submission runs the
// same check, so the wizard and the submit path cannot drift apart.
func paymentPrecondition(method PaymentMethod, card CardDetails, phone string) error {
	switch method {
	case MethodCard:
		if !card.Complete() {
			return fmt.Errorf("missing required field: card details")
		}
	case MethodMpesa:
		if phone == "" {
			return fmt.Errorf("missing required field: phone")
		}
	case MethodWhatsApp, MethodCash:
		// no precondition
	default:
		return fmt.Errorf("unknown payment method %q", method)
	}
	return nil
}
