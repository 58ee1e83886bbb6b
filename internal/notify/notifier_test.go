package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beforest/forest-guide/internal/common/config"
	"github.com/beforest/forest-guide/internal/common/logger"
)

type fakeEmail struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeEmail) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	return &ses.SendEmailOutput{}, f.err
}

type fakeSMS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSMS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	return &sns.PublishOutput{}, f.err
}

func alertsConfig() config.AlertsConfig {
	return config.AlertsConfig{
		EmailEnabled:  true,
		FromEmail:     "bot@beforest.co",
		SalesEmail:    "sales@beforest.co",
		EmailMinScore: 70,
		SMSEnabled:    true,
		SalesPhone:    "+911234567890",
		SMSMinScore:   90,
	}
}

func lead(score int) HotLead {
	return HotLead{
		DisplayName: "Asha",
		ContactID:   "contact-1",
		Intent:      "stay",
		Stage:       "intent",
		Score:       score,
		Message:     "Can I book a stay today?",
	}
}

func TestShouldAlert(t *testing.T) {
	n := New(&fakeEmail{}, &fakeSMS{}, alertsConfig(), logger.NewNoOpLogger())

	assert.False(t, n.ShouldAlert(69))
	assert.True(t, n.ShouldAlert(70))
	assert.True(t, n.ShouldAlert(95))
}

func TestShouldAlert_AllDisabled(t *testing.T) {
	cfg := alertsConfig()
	cfg.EmailEnabled = false
	cfg.SMSEnabled = false
	n := New(&fakeEmail{}, &fakeSMS{}, cfg, logger.NewNoOpLogger())

	assert.False(t, n.ShouldAlert(100))
}

func TestNotifyHotLead_EmailOnly(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	n := New(email, sms, alertsConfig(), logger.NewNoOpLogger())

	err := n.NotifyHotLead(context.Background(), lead(75))

	require.NoError(t, err)
	require.Len(t, email.inputs, 1)
	assert.Empty(t, sms.inputs)

	in := email.inputs[0]
	assert.Equal(t, "bot@beforest.co", *in.Source)
	assert.Equal(t, []string{"sales@beforest.co"}, in.Destination.ToAddresses)
	assert.Contains(t, *in.Message.Subject.Data, "Asha")
	assert.Contains(t, *in.Message.Body.Text.Data, "Can I book a stay today?")
}

func TestNotifyHotLead_EmailAndSMS(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	n := New(email, sms, alertsConfig(), logger.NewNoOpLogger())

	err := n.NotifyHotLead(context.Background(), lead(95))

	require.NoError(t, err)
	assert.Len(t, email.inputs, 1)
	require.Len(t, sms.inputs, 1)
	assert.Equal(t, "+911234567890", *sms.inputs[0].PhoneNumber)
	assert.Contains(t, *sms.inputs[0].Message, "score 95")
}

func TestNotifyHotLead_BelowThresholds(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	n := New(email, sms, alertsConfig(), logger.NewNoOpLogger())

	err := n.NotifyHotLead(context.Background(), lead(50))

	require.NoError(t, err)
	assert.Empty(t, email.inputs)
	assert.Empty(t, sms.inputs)
}

func TestNotifyHotLead_EmailFailureStillSendsSMS(t *testing.T) {
	email := &fakeEmail{err: errors.New("ses throttled")}
	sms := &fakeSMS{}
	n := New(email, sms, alertsConfig(), logger.NewNoOpLogger())

	err := n.NotifyHotLead(context.Background(), lead(95))

	assert.Error(t, err)
	assert.Len(t, sms.inputs, 1)
}
