package mailer

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendLeadNotification(sessionId, source, criteria string, recentMessages []string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	leadEmail   string
}

func NewEmailService(host string, port int, username, password, senderEmail, leadEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		leadEmail:   leadEmail,
	}
}

// SendLeadNotification mails the manager when a user asks for a human.
// Includes whatever the funnel collected so the manager does not start cold.
func (s *emailService) SendLeadNotification(sessionId, source, criteria string, recentMessages []string) error {
	if s.leadEmail == "" {
		return fmt.Errorf("lead email not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", s.leadEmail)
	m.SetHeader("Subject", fmt.Sprintf("Новый лид из чат-бота (%s)", source))

	var history strings.Builder
	for _, msg := range recentMessages {
		history.WriteString("<li>" + msg + "</li>")
	}
	if criteria == "" {
		criteria = "не указаны"
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Пользователь запросил менеджера</h2>
			<p><b>Сессия:</b> %s</p>
			<p><b>Источник:</b> %s</p>
			<p><b>Собранные параметры:</b> %s</p>
			<p><b>Последние сообщения:</b></p>
			<ul>%s</ul>
		</div>
	`, sessionId, source, criteria, history.String())

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send lead notification for %s: %v\n", sessionId, err)
		return err
	}

	fmt.Printf("[MAILER] Lead notification sent for session %s\n", sessionId)
	return nil
}
