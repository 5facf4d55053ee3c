package services

import (
	"context"
	"fmt"
	"html"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sirupsen/logrus"
)

// Mailer sends the account emails of the family workflow.
type Mailer interface {
	SendInviteEmail(ctx context.Context, toEmail, toName, familyName, token string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, toName, token string) error
}

// sesAPI is the part of the SES client the service calls.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	log        *logrus.Logger
}

// NewEmailService creates a new email service. Without a from address the
// service is disabled and every send is a logged no-op.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, log *logrus.Logger) (*EmailService, error) {
	if fromEmail == "" {
		log.Info("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, appBaseURL: appBaseURL, log: log}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.WithFields(logrus.Fields{"from": fromEmail, "region": awsRegion}).Info("Email service enabled")

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		log:        log,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendInviteEmail sends the first-login link to a new family member
func (s *EmailService) SendInviteEmail(ctx context.Context, toEmail, toName, familyName, token string) error {
	link := s.link("/auth/invite", token)
	subject := fmt.Sprintf("You're invited to join %s", familyName)
	text := fmt.Sprintf(`Hi %s,

You have been added to the family "%s".

Open the link below and choose a password to sign in for the first time:
%s

This link expires in 7 days.
`, toName, familyName, link)
	htmlBody := fmt.Sprintf(`<p>Hi %s,</p>
<p>You have been added to the family <strong>%s</strong>.</p>
<p><a href="%s">Choose your password</a></p>
<p>This link expires in 7 days.</p>`, html.EscapeString(toName), html.EscapeString(familyName), html.EscapeString(link))

	return s.send(ctx, toEmail, subject, htmlBody, text)
}

// SendPasswordResetEmail sends a password reset email with a reset link
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, toName, token string) error {
	link := s.link("/auth/reset-password", token)
	subject := "Reset your password"
	text := fmt.Sprintf(`Hi %s,

We received a request to reset your password. Open the link below to choose a new one:
%s

This link will expire in 1 hour. If you didn't request a reset, you can ignore this email.
`, toName, link)
	htmlBody := fmt.Sprintf(`<p>Hi %s,</p>
<p>We received a request to reset your password.</p>
<p><a href="%s">Reset password</a></p>
<p>This link will expire in 1 hour. If you didn't request a reset, you can ignore this email.</p>`, html.EscapeString(toName), html.EscapeString(link))

	return s.send(ctx, toEmail, subject, htmlBody, text)
}

func (s *EmailService) link(path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", s.appBaseURL, path, url.QueryEscape(token))
}

func (s *EmailService) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	if !s.enabled {
		s.log.WithFields(logrus.Fields{"to": toEmail, "subject": subject}).Info("Skipping email send (service disabled)")
		return nil
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	entry := s.log.WithFields(logrus.Fields{"to": toEmail, "subject": subject})
	if result.MessageId != nil {
		entry = entry.WithField("message_id", *result.MessageId)
	}
	entry.Info("Email sent")
	return nil
}
