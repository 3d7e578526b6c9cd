package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return nil
}

func TestSendPaymentReceipt(t *testing.T) {
	d := &recordingDialer{}
	svc := &emailService{dialer: d, senderEmail: "billing@viraliza.ai", senderName: "ViralizaAI", frontendURL: "https://app.viraliza.ai"}

	err := svc.SendPaymentReceipt(Receipt{
		ToEmail:       "ana@example.com",
		PaymentId:     "p-1",
		ItemName:      "Plano Anual",
		Amount:        "797.00",
		TransactionId: "tx123",
		ValidUntil:    "2026-01-01",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	assert.Equal(t, []string{"ana@example.com"}, d.sent[0].GetHeader("To"))

	var buf bytes.Buffer
	_, err = d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "797.00")
	assert.Contains(t, buf.String(), "tx123")
}

func TestSendPaymentReceipt_NoRecipient(t *testing.T) {
	d := &recordingDialer{}
	svc := &emailService{dialer: d}

	assert.Error(t, svc.SendPaymentReceipt(Receipt{PaymentId: "p-1"}))
	assert.Empty(t, d.sent)
}
