package contact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	maxNameLen    = 120
	maxSubjectLen = 200
	maxMessageLen = 5000
)

// Service accepts contact form submissions.
type Service interface {
	Submit(ctx context.Context, input Input) (*Receipt, error)
}

// Input is a contact form submission.
type Input struct {
	Name     string
	Email    string
	Phone    *string
	Subject  *string
	Message  string
	RemoteIP string
}

// Receipt acknowledges a stored submission.
type Receipt struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type service struct {
	repo     Repository
	logg     *logger.Logger
	validate *validator.Validate
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, validate: validator.New()}, nil
}

func (s *service) Submit(ctx context.Context, input Input) (*Receipt, error) {
	msg, err := s.build(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store contact message")
	}
	s.logg.Info(s.logg.WithField(ctx, "contact_id", msg.ID.String()), "contact.message_received")
	return &Receipt{ID: msg.ID, CreatedAt: msg.CreatedAt}, nil
}

func (s *service) build(input Input) (*models.ContactMessage, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	message := strings.TrimSpace(input.Message)

	details := map[string]string{}
	switch {
	case name == "":
		details["name"] = "is required"
	case len(name) > maxNameLen:
		details["name"] = fmt.Sprintf("must be at most %d characters", maxNameLen)
	}
	switch {
	case email == "":
		details["email"] = "is required"
	case s.validate.Var(email, "email") != nil:
		details["email"] = "must be a valid email"
	}
	switch {
	case message == "":
		details["message"] = "is required"
	case len(message) > maxMessageLen:
		details["message"] = fmt.Sprintf("must be at most %d characters", maxMessageLen)
	}
	subject := trimmed(input.Subject)
	if subject != nil && len(*subject) > maxSubjectLen {
		details["subject"] = fmt.Sprintf("must be at most %d characters", maxSubjectLen)
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	msg := &models.ContactMessage{
		Name:    name,
		Email:   email,
		Phone:   trimmed(input.Phone),
		Subject: subject,
		Message: message,
	}
	if ip := strings.TrimSpace(input.RemoteIP); ip != "" {
		msg.RemoteIP = &ip
	}
	return msg, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
