package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/xid"

	"github.com/portfolio-site/portfolio-api/internal/apperror"
	"github.com/portfolio-site/portfolio-api/internal/mail"
	"github.com/portfolio-site/portfolio-api/internal/portfolio"
	"github.com/portfolio-site/portfolio-api/internal/portfolio/repository"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
)

var personName = regexp.MustCompile(`^[A-Za-z\s'-]+$`)

// ContactInput is the contact form as submitted.
type ContactInput struct {
	FirstName string `json:"firstName" validate:"required,max=50,personname"`
	LastName  string `json:"lastName" validate:"required,max=50,personname"`
	Email     string `json:"email" validate:"required,email"`
	Subject   string `json:"subject" validate:"required,max=100"`
	Message   string `json:"message" validate:"required,min=10,max=2000"`
	SourceIP  string `json:"-" validate:"-"`
	UserAgent string `json:"-" validate:"-"`
}

// SubmitResult reports which side effects of a submission succeeded.
type SubmitResult struct {
	Submission portfolio.Submission
	Stored     bool
	Emailed    bool
	Warnings   []string
}

// ErrSubmissionLost is returned when neither storing nor emailing worked.
var ErrSubmissionLost = errors.New("submission could not be stored or delivered")

// SubmissionService accepts contact-form messages.
type SubmissionService struct {
	docs     *repository.Guard
	mailer   mail.Mailer
	from     string
	to       []string
	timeout  time.Duration
	validate *validator.Validate
	newID    func() string
}

func NewSubmissionService(docs *repository.Guard, mailer mail.Mailer, from, to string, timeout time.Duration) *SubmissionService {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personName.MatchString(fl.Field().String())
	})
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var recipients []string
	if to != "" {
		recipients = []string{to}
	}
	return &SubmissionService{
		docs:     docs,
		mailer:   mailer,
		from:     from,
		to:       recipients,
		timeout:  timeout,
		validate: v,
		newID:    func() string { return xid.New().String() },
	}
}

// Submit validates and records a contact message, then notifies the owner.
// Storing and emailing are both best effort: the call succeeds when at least
// one of them worked and lists what failed in Warnings.
func (s *SubmissionService) Submit(ctx context.Context, in ContactInput) (*SubmitResult, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)

	if err := s.check(in); err != nil {
		metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		return nil, err
	}

	sub := portfolio.Submission{
		ID:          s.newID(),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Subject:     in.Subject,
		Message:     in.Message,
		SubmittedAt: s.docs.Now().UTC(),
		SourceIP:    in.SourceIP,
		UserAgent:   in.UserAgent,
	}
	res := &SubmitResult{Submission: sub}

	if err := s.docs.Update(ctx, func(doc *portfolio.Document) error {
		doc.AddSubmission(sub)
		return nil
	}); err != nil {
		logger.Errorf("contact submit: store submission %s: %v", sub.ID, err)
		res.Warnings = append(res.Warnings, "Your message could not be saved")
	} else {
		res.Stored = true
	}

	if err := s.notify(ctx, sub); err != nil {
		logger.Warnf("contact submit: send notification for %s via %s: %v", sub.ID, s.mailer.Name(), err)
		res.Warnings = append(res.Warnings, "Email notification could not be sent")
	} else {
		res.Emailed = true
	}

	switch {
	case !res.Stored && !res.Emailed:
		metrics.ContactSubmissions.WithLabelValues("failed").Inc()
		return nil, ErrSubmissionLost
	case res.Stored && res.Emailed:
		metrics.ContactSubmissions.WithLabelValues("ok").Inc()
	default:
		metrics.ContactSubmissions.WithLabelValues("degraded").Inc()
	}
	return res, nil
}

func (s *SubmissionService) notify(ctx context.Context, sub portfolio.Submission) error {
	if len(s.to) == 0 {
		return errors.New("no notification recipient configured")
	}
	msg, err := mail.ContactMessage(s.from, s.to, mail.Contact{
		FirstName: sub.FirstName,
		LastName:  sub.LastName,
		Email:     sub.Email,
		Subject:   sub.Subject,
		Message:   sub.Message,
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.mailer.Send(ctx, msg)
}

var fieldLabels = map[string]string{
	"firstName": "First name",
	"lastName":  "Last name",
	"email":     "Email",
	"subject":   "Subject",
	"message":   "Message",
}

var fieldOrder = []string{"firstName", "lastName", "email", "subject", "message"}

func (s *SubmissionService) check(in ContactInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate contact: %w", err)
	}
	byField := map[string]string{}
	for _, fe := range verrs {
		field := jsonName(fe.StructField())
		if _, seen := byField[field]; seen {
			continue
		}
		byField[field] = fieldMessage(field, fe)
	}
	var fields []apperror.FieldError
	for _, f := range fieldOrder {
		if msg, ok := byField[f]; ok {
			fields = append(fields, apperror.FieldError{Field: f, Message: msg})
		}
	}
	return apperror.Validation(fields...)
}

func jsonName(structField string) string {
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

func fieldMessage(field string, fe validator.FieldError) string {
	label := fieldLabels[field]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please provide a valid email address"
	case "personname":
		return label + " contains invalid characters"
	case "min", "max":
		if field == "message" {
			return "Message must be between 10 and 2000 characters"
		}
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	}
	return label + " is invalid"
}
