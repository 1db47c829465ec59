package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/socialhub-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendHTML(to, subject string, body []byte) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

func TestRenderEmail_ContainsCodeAndExpiry(t *testing.T) {
	u := &domain.User{Username: "alice", FirstName: "Alice"}
	body, err := RenderEmail(u, "482913", 10*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, string(body), "482913")
	assert.Contains(t, string(body), "10 minutes")
	assert.Contains(t, string(body), "Alice")
}

func TestRenderEmail_FallsBackToUsername(t *testing.T) {
	body, err := RenderEmail(&domain.User{Username: "bob"}, "123456", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, string(body), "bob")
	assert.Contains(t, string(body), "1 minute")
}

func TestEmailDelivery_SendsToUserEmail(t *testing.T) {
	m := &mockMailer{}
	m.On("SendHTML", "alice@example.com", emailSubject, mock.MatchedBy(func(b []byte) bool {
		return assert.Contains(t, string(b), "654321")
	})).Return(nil)

	d := NewEmailDelivery(m)
	assert.Equal(t, ChannelEmail, d.Channel())
	err := d.Deliver(context.Background(), &domain.User{Email: "alice@example.com"}, "654321", 10*time.Minute)
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestEmailDelivery_MailerError(t *testing.T) {
	m := &mockMailer{}
	m.On("SendHTML", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("pool timeout"))

	err := NewEmailDelivery(m).Deliver(context.Background(), &domain.User{Email: "a@b.c"}, "1", time.Minute)
	assert.EqualError(t, err, "pool timeout")
}

func TestSMSDelivery_SendsCode(t *testing.T) {
	s := &mockSMS{}
	s.On("SendSMS", mock.Anything, "+15550001111", "Your SocialHub verification code is 482913. It expires in 10 minutes.").Return(nil)

	phone := "+15550001111"
	d := NewSMSDelivery(s)
	assert.Equal(t, ChannelSMS, d.Channel())
	require.NoError(t, d.Deliver(context.Background(), &domain.User{Phone: &phone}, "482913", 10*time.Minute))
	s.AssertExpectations(t)
}

func TestSMSDelivery_MissingPhone(t *testing.T) {
	s := &mockSMS{}
	err := NewSMSDelivery(s).Deliver(context.Background(), &domain.User{}, "482913", time.Minute)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	s.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "1 minute", humanDuration(time.Minute))
	assert.Equal(t, "15 minutes", humanDuration(15*time.Minute))
	assert.Equal(t, "1m30s", humanDuration(90*time.Second))
}
