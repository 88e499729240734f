package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	awsclient "loan-origination/internal/common/aws"
	"loan-origination/internal/common/config"
	"loan-origination/internal/common/logger"
	"loan-origination/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

type memoryRecorder struct {
	mu     sync.Mutex
	events []models.ActivityEvent
}

func (m *memoryRecorder) Record(ctx context.Context, e models.ActivityEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *memoryRecorder) Search(ctx context.Context, q models.ActivityQuery) ([]models.ActivityEvent, error) {
	return nil, nil
}

func testConfig() config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = true
	cfg.Email.FromEmail = "loans@example.ph"
	cfg.SMS.Enabled = true
	cfg.SMS.SenderID = "MFILOANS"
	return cfg
}

func approvedView() models.ApplicationView {
	return models.ApplicationView{
		LoanApplication: models.LoanApplication{
			ID:         "LA-2024-0001",
			UserID:     "u-maria",
			LoanAmount: 25000,
			Status:     models.StatusApproved,
		},
		Profile: models.UserProfile{
			ID:           "u-maria",
			FirstName:    "Maria",
			Email:        "maria.santos@example.ph",
			MobileNumber: "+639171234567",
		},
	}
}

func TestStatusChanged_SendsBothChannels(t *testing.T) {
	var smsInput *sns.PublishInput
	var emailInput *ses.SendEmailInput

	snsMock := &MockSNSService{PublishFunc: func(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
		smsInput = in
		return &sns.PublishOutput{MessageId: aws.String("sms-1")}, nil
	}}
	sesMock := &MockSESService{SendEmailFunc: func(ctx context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		emailInput = in
		return &ses.SendEmailOutput{MessageId: aws.String("email-1")}, nil
	}}

	rec := &memoryRecorder{}
	n := NewNotifier(testConfig(), awsclient.NewSNSClientWithAPI(snsMock), awsclient.NewSESClientWithAPI(sesMock), rec, logger.NewTestLogger(t))
	n.now = func() time.Time { return time.Date(2024, 5, 9, 1, 2, 3, 0, time.UTC) }

	out := n.StatusChanged(context.Background(), approvedView())
	require.Len(t, out, 2)

	assert.Equal(t, models.ChannelSMS, out[0].Channel)
	assert.Equal(t, models.NotificationSent, out[0].Status)
	assert.Equal(t, "sms-1", out[0].MessageID)
	assert.Equal(t, "2024-05-09T01:02:03Z", out[0].SentAt)

	assert.Equal(t, models.ChannelEmail, out[1].Channel)
	assert.Equal(t, "email-1", out[1].MessageID)

	require.NotNil(t, smsInput)
	assert.Equal(t, "+639171234567", aws.ToString(smsInput.PhoneNumber))
	assert.Contains(t, aws.ToString(smsInput.Message), "Good news, Maria")
	assert.Contains(t, aws.ToString(smsInput.Message), "₱25,000")
	assert.Equal(t, "MFILOANS", aws.ToString(smsInput.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))

	require.NotNil(t, emailInput)
	assert.Equal(t, "loans@example.ph", aws.ToString(emailInput.Source))
	assert.Equal(t, []string{"maria.santos@example.ph"}, emailInput.Destination.ToAddresses)
	assert.Equal(t, "Your loan application has been approved", aws.ToString(emailInput.Message.Subject.Data))

	assert.Len(t, rec.events, 2)
	assert.Equal(t, models.ActivityNotification, rec.events[0].Type)
}

func TestStatusChanged_IgnoresOtherStatuses(t *testing.T) {
	n := NewNotifier(testConfig(), nil, nil, nil, logger.NewTestLogger(t))

	view := approvedView()
	view.Status = models.StatusUnderReview
	assert.Nil(t, n.StatusChanged(context.Background(), view))
}

func TestStatusChanged_DisabledAndMissingContacts(t *testing.T) {
	cfg := testConfig()
	cfg.SMS.Enabled = false

	sesMock := &MockSESService{SendEmailFunc: func(ctx context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		t.Fatal("email should not be sent without an address")
		return nil, nil
	}}
	rec := &memoryRecorder{}
	n := NewNotifier(cfg, nil, awsclient.NewSESClientWithAPI(sesMock), rec, logger.NewTestLogger(t))

	view := approvedView()
	view.Status = models.StatusNeedsDocuments
	view.Profile.Email = ""

	out := n.StatusChanged(context.Background(), view)
	require.Len(t, out, 2)
	assert.Equal(t, models.NotificationSkipped, out[0].Status)
	assert.Equal(t, "channel disabled", out[0].Error)
	assert.Equal(t, models.NotificationSkipped, out[1].Status)
	assert.Empty(t, rec.events)
}

func TestStatusChanged_SendFailureIsRecorded(t *testing.T) {
	snsMock := &MockSNSService{PublishFunc: func(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
		return nil, errors.New("throttled")
	}}
	cfg := testConfig()
	cfg.Email.Enabled = false

	rec := &memoryRecorder{}
	n := NewNotifier(cfg, awsclient.NewSNSClientWithAPI(snsMock), nil, rec, logger.NewTestLogger(t))

	view := approvedView()
	view.Status = "Rejected"
	out := n.StatusChanged(context.Background(), view)

	require.Len(t, out, 2)
	assert.Equal(t, models.NotificationFailed, out[0].Status)
	assert.Equal(t, "throttled", out[0].Error)
	assert.Equal(t, models.StatusRejected, out[0].Type)
	require.Len(t, rec.events, 1)
	assert.Equal(t, models.NotificationFailed, rec.events[0].Attributes["status"])
}

func TestNotable(t *testing.T) {
	assert.True(t, Notable("approved"))
	assert.True(t, Notable(" NEEDS_DOCUMENTS "))
	assert.False(t, Notable("pending"))
	assert.False(t, Notable(""))
}

func TestRenderTemplate(t *testing.T) {
	got := renderTemplate("Hi {{name}}, ref {{ref}}.", map[string]string{"name": "Ana"})
	assert.Equal(t, "Hi Ana, ref .", got)
}
