package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// Receipt is the data shown in a purchase confirmation e-mail.
type Receipt struct {
	ToEmail       string
	PaymentId     string
	ItemName      string
	Amount        string
	TransactionId string
	ValidUntil    string
}

type IEmailService interface {
	SendPaymentReceipt(receipt Receipt) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      dialer
	senderEmail string
	senderName  string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderName, frontendURL string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendPaymentReceipt(receipt Receipt) error {
	if receipt.ToEmail == "" {
		return fmt.Errorf("receipt for payment %s has no recipient", receipt.PaymentId)
	}
	return s.dialer.DialAndSend(s.buildReceipt(receipt))
}

func (s *emailService) buildReceipt(receipt Receipt) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", receipt.ToEmail)
	m.SetHeader("Subject", fmt.Sprintf("Pagamento confirmado: %s", receipt.ItemName))

	validity := ""
	if receipt.ValidUntil != "" {
		validity = fmt.Sprintf(`<p>Acesso válido até <strong>%s</strong>.</p>`, html.EscapeString(receipt.ValidUntil))
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Pagamento confirmado</h2>
			<p>Recebemos o pagamento de <strong>R$ %s</strong> referente a <strong>%s</strong>.</p>
			%s
			<p>Pedido: %s<br/>Transação: %s</p>
			<a href="%s/dashboard" style="background-color: #7C3AED; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Acessar ferramentas</a>
		</div>
	`,
		html.EscapeString(receipt.Amount),
		html.EscapeString(receipt.ItemName),
		validity,
		html.EscapeString(receipt.PaymentId),
		html.EscapeString(receipt.TransactionId),
		s.frontendURL,
	)
	m.SetBody("text/html", body)
	return m
}
