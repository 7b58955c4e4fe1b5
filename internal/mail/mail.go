// Package mail validates contact-form submissions and relays them by email.
package mail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SubjectPrefix is prepended to every relayed subject line.
const SubjectPrefix = "[Portfolio] "

// ContactMessage is a contact-form submission
type ContactMessage struct {
	Name    string `json:"name" validate:"required,max=60"`
	Email   string `json:"email" validate:"required,email,max=120"`
	Subject string `json:"subject" validate:"required,max=120"`
	Message string `json:"message" validate:"required,max=2000"`
}

// Mailer delivers contact messages
type Mailer interface {
	Send(ctx context.Context, msg ContactMessage) error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the message and returns one readable problem per invalid
// field. A nil slice means the message is valid.
func (m ContactMessage) Validate() []string {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("%s should not be empty", fe.Field()))
		case "email":
			problems = append(problems, fmt.Sprintf("%s must be an email", fe.Field()))
		case "max":
			problems = append(problems, fmt.Sprintf("%s must be shorter than or equal to %s characters", fe.Field(), fe.Param()))
		default:
			problems = append(problems, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return problems
}

// FullSubject returns the relayed subject line
func (m ContactMessage) FullSubject() string {
	return SubjectPrefix + m.Subject
}

// HTMLBody renders the message for the site owner. Visitor input is escaped.
func (m ContactMessage) HTMLBody() string {
	message := html.EscapeString(m.Message)
	message = strings.ReplaceAll(message, "\r\n", "\n")
	message = strings.ReplaceAll(message, "\n", "<br/>")

	var b strings.Builder
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>\n", html.EscapeString(m.Name))
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>\n", html.EscapeString(m.Email))
	b.WriteString("<p><strong>Message:</strong></p>\n")
	fmt.Fprintf(&b, "<p>%s</p>\n", message)
	return b.String()
}

// TextBody renders the plain-text alternative
func (m ContactMessage) TextBody() string {
	return fmt.Sprintf("Name: %s\nEmail: %s\n\nMessage:\n%s\n", m.Name, m.Email, m.Message)
}

// SMTPConfig holds the relay settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// SMTPMailer sends contact messages through an SMTP relay over implicit TLS
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

// NewSMTPMailer creates a new SMTPMailer
func NewSMTPMailer(cfg SMTPConfig, logger *zap.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.To == "" {
		return nil, errors.New("contact recipient is required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg, logger: logger}, nil
}

// Build assembles the outgoing message. The visitor is the display name
// and Reply-To; the envelope sender stays the authenticated account.
func (s *SMTPMailer) Build(msg ContactMessage) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.FromFormat(msg.Name, s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(s.cfg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if err := m.ReplyToFormat(msg.Name, msg.Email); err != nil {
		return nil, fmt.Errorf("invalid reply-to address: %w", err)
	}
	m.Subject(msg.FullSubject())
	m.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody())
	m.AddAlternativeString(gomail.TypeTextPlain, msg.TextBody())
	return m, nil
}

// Send delivers msg, honouring ctx for the dial and transfer
func (s *SMTPMailer) Send(ctx context.Context, msg ContactMessage) error {
	m, err := s.Build(msg)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithSSL(),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send contact mail: %w", err)
	}

	s.logger.Info("contact mail sent",
		zap.String("host", s.cfg.Host),
		zap.String("subject", msg.FullSubject()),
	)
	return nil
}

// LogMailer records submissions in the log instead of sending them. It is
// used when no SMTP credentials are configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a new LogMailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs msg and always succeeds unless ctx is already done
func (l *LogMailer) Send(ctx context.Context, msg ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.logger.Info("contact message received (smtp disabled)",
		zap.String("name", msg.Name),
		zap.String("email", msg.Email),
		zap.String("subject", msg.FullSubject()),
		zap.Int("message_length", len(msg.Message)),
	)
	return nil
}
