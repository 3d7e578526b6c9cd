package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"viralizaai-be/internal/config"
	"viralizaai-be/internal/entity"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

type CardCheckout struct {
	Token       string
	RedirectURL string
}

// ICardCheckoutGateway hands card payments to the hosted checkout. The
// outcome comes back later through the gateway webhook.
type ICardCheckoutGateway interface {
	CreateCheckout(ctx context.Context, record *entity.PaymentRecord) (*CardCheckout, error)
	VerifySignature(orderId, statusCode, grossAmount, signature string) bool
}

type midtransGateway struct {
	client         snap.Client
	serverKey      string
	finishRedirect string
}

func NewMidtransGateway(cfg config.MidtransConfig) ICardCheckoutGateway {
	env := midtrans.Sandbox
	if cfg.IsProduction {
		env = midtrans.Production
	}
	g := &midtransGateway{serverKey: cfg.ServerKey, finishRedirect: cfg.FinishRedirect}
	g.client.New(cfg.ServerKey, env)
	return g
}

func (g *midtransGateway) CreateCheckout(ctx context.Context, record *entity.PaymentRecord) (*CardCheckout, error) {
	if g.serverKey == "" {
		return nil, fmt.Errorf("card gateway is not configured")
	}

	// The gateway only takes whole currency units.
	gross := record.Amount.Ceil().IntPart()

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  record.Id.String(),
			GrossAmt: gross,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: g.finishRedirect,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			Email: record.PayerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    string(record.Kind),
				Price: gross,
				Qty:   1,
				Name:  record.ItemName,
			},
		},
		EnabledPayments: []snap.SnapPaymentType{snap.PaymentTypeCreditCard},
	}

	resp, midErr := g.client.CreateTransaction(req)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %s", midErr.GetMessage())
	}
	return &CardCheckout{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// VerifySignature checks SHA512(order_id + status_code + gross_amount + server_key).
func (g *midtransGateway) VerifySignature(orderId, statusCode, grossAmount, signature string) bool {
	if g.serverKey == "" {
		return false
	}
	expected := Signature(orderId, statusCode, grossAmount, g.serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// Signature is the gateway's notification signature for the given fields.
func Signature(orderId, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderId + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}
