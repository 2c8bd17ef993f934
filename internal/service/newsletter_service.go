package service

import (
	"context"
	"mbs-hub/internal/common"
	"mbs-hub/internal/logger"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	subscribeSuccessMessage   = "Successfully subscribed to the newsletter!"
	subscribeFailureMessage   = "Failed to subscribe. Please try again."
	unsubscribeSuccessMessage = "You have been unsubscribed."
	unsubscribeFailureMessage = "Failed to unsubscribe. Please try again."
)

// SubscriptionResult is returned by the newsletter mutations.
type SubscriptionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewsletterService handles newsletter sign-ups.
type NewsletterService struct {
	repo     NewsletterRepository
	validate *validator.Validate
	log      logger.Logger
}

// NewNewsletterService creates a new NewsletterService.
func NewNewsletterService(repo NewsletterRepository, log logger.Logger) *NewsletterService {
	return &NewsletterService{repo: repo, validate: validator.New(), log: log}
}

// normalizeEmail trims and lower-cases email and checks its syntax.
func (s *NewsletterService) normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email,max=320"); err != nil {
		return "", common.NewValidationError("email", "must be a valid email address")
	}
	return email, nil
}

// Subscribe records a subscription. Store failures are logged and replaced by a
// caller-facing message.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*SubscriptionResult, error) {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Subscribe(ctx, email); err != nil {
		s.log.With(map[string]interface{}{"email": email}).Error(err, "Newsletter subscription error")
		return nil, common.NewPublicError(subscribeFailureMessage, err)
	}
	return &SubscriptionResult{Success: true, Message: subscribeSuccessMessage}, nil
}

// Unsubscribe marks a subscription as ended. Unknown addresses succeed.
func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) (*SubscriptionResult, error) {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Unsubscribe(ctx, email); err != nil {
		s.log.With(map[string]interface{}{"email": email}).Error(err, "Newsletter unsubscribe error")
		return nil, common.NewPublicError(unsubscribeFailureMessage, err)
	}
	return &SubscriptionResult{Success: true, Message: unsubscribeSuccessMessage}, nil
}
