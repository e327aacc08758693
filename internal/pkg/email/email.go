package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/redago/redago-server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendWelcome greets a new subscriber.
func (s *Service) SendWelcome(to, name, planType string) error {
	subject := "Bem-vindo ao Redago"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #16a34a;">Assinatura confirmada!</h2>
        <p>Olá %s,</p>
        <p>Sua assinatura do plano <strong>%s</strong> está ativa. Boa escrita!</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">E-mail automático, não responda.</p>
    </div>
</body>
</html>
`, name, strings.ToUpper(planType))

	return s.sendHTML(to, subject, body)
}

// SendExpiringSoon reminds a subscriber the plan ends in daysLeft days.
func (s *Service) SendExpiringSoon(to, name string, daysLeft int) error {
	subject := "Sua assinatura está perto de vencer"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #d97706;">Assinatura perto de vencer</h2>
        <p>Olá %s,</p>
        <p>Sua assinatura vence em <strong>%d dia(s)</strong>. Renove para continuar enviando redações.</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">E-mail automático, não responda.</p>
    </div>
</body>
</html>
`, name, daysLeft)

	return s.sendHTML(to, subject, body)
}

// SendExpired notifies a subscriber the plan lapsed.
func (s *Service) SendExpired(to, name string) error {
	subject := "Sua assinatura expirou"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #dc2626;">Assinatura expirada</h2>
        <p>Olá %s,</p>
        <p>Sua assinatura expirou. Assine novamente para voltar a enviar redações.</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">E-mail automático, não responda.</p>
    </div>
</body>
</html>
`, name)

	return s.sendHTML(to, subject, body)
}

func (s *Service) sendHTML(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}
