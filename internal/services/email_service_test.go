package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/family-chores-api/internal/logging"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func newTestEmailService(client sesAPI) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  "noreply@example.com",
		fromName:   "Family Chores",
		appBaseURL: "https://chores.example.com",
		enabled:    true,
		log:        logging.Discard(),
	}
}

func TestEmailService_SendInviteEmail(t *testing.T) {
	ses := &fakeSES{}
	svc := newTestEmailService(ses)

	require.NoError(t, svc.SendInviteEmail(context.Background(), "bob@example.com", "Bob", "Smith", "abc123"))

	require.Len(t, ses.inputs, 1)
	input := ses.inputs[0]
	assert.Equal(t, "Family Chores <noreply@example.com>", *input.FromEmailAddress)
	assert.Equal(t, []string{"bob@example.com"}, input.Destination.ToAddresses)
	assert.Equal(t, "You're invited to join Smith", *input.Content.Simple.Subject.Data)
	assert.Contains(t, *input.Content.Simple.Body.Text.Data, "https://chores.example.com/auth/invite?token=abc123")
}

func TestEmailService_SendPasswordResetEmail(t *testing.T) {
	ses := &fakeSES{}
	svc := newTestEmailService(ses)

	require.NoError(t, svc.SendPasswordResetEmail(context.Background(), "alice@example.com", "Alice", "t0k/en"))

	require.Len(t, ses.inputs, 1)
	assert.Contains(t, *ses.inputs[0].Content.Simple.Body.Html.Data, "/auth/reset-password?token=t0k%2Fen")
}

func TestEmailService_EscapesNamesInHTML(t *testing.T) {
	ses := &fakeSES{}
	svc := newTestEmailService(ses)

	require.NoError(t, svc.SendInviteEmail(context.Background(), "bob@example.com", "<b>Bob</b>", `Smith & "Sons"`, "abc123"))
	require.NoError(t, svc.SendPasswordResetEmail(context.Background(), "bob@example.com", "<img src=x>", "t0k"))

	require.Len(t, ses.inputs, 2)
	invite := *ses.inputs[0].Content.Simple.Body.Html.Data
	assert.Contains(t, invite, "Hi &lt;b&gt;Bob&lt;/b&gt;,")
	assert.Contains(t, invite, "<strong>Smith &amp; &#34;Sons&#34;</strong>")
	assert.NotContains(t, invite, "<b>")
	assert.Contains(t, *ses.inputs[0].Content.Simple.Body.Text.Data, "Hi <b>Bob</b>,")

	reset := *ses.inputs[1].Content.Simple.Body.Html.Data
	assert.Contains(t, reset, "Hi &lt;img src=x&gt;,")
	assert.NotContains(t, reset, "<img")
}

func TestEmailService_SendError(t *testing.T) {
	svc := newTestEmailService(&fakeSES{err: errors.New("throttled")})

	err := svc.SendPasswordResetEmail(context.Background(), "alice@example.com", "Alice", "token")
	assert.ErrorContains(t, err, "throttled")
}

func TestEmailService_Disabled(t *testing.T) {
	svc, err := NewEmailService(context.Background(), "us-east-1", "", "", "http://localhost:3000", logging.Discard())
	require.NoError(t, err)

	assert.False(t, svc.IsEnabled())
	assert.NoError(t, svc.SendInviteEmail(context.Background(), "bob@example.com", "Bob", "Smith", "token"))
}
