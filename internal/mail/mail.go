// Package mail delivers password-reset codes over SMTP.
package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends operational email. The auth service depends on this
// interface; tests substitute a recorder.
type Mailer interface {
	SendOtp(to, otp string) error
}

// SMTPMailer is the production Mailer.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

// SendOtp emails a password-reset code.
func (m *SMTPMailer) SendOtp(to, otp string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password Reset")
	msg.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; border: 1px solid #eee; border-radius: 8px;">
			<h2 style="color: #333;">Password Reset Request</h2>
			<p>You requested a password reset. Use the code below to proceed:</p>
			<h1 style="color: #2563eb; letter-spacing: 5px; font-size: 32px;">%s</h1>
			<p style="color: #666;">This code expires in <strong>5 minutes</strong>.</p>
			<hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
			<p style="font-size: 12px; color: #999;">If you did not request this, please ignore this email.</p>
		</div>`, otp))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending otp email: %w", err)
	}
	return nil
}
