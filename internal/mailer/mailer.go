// Package mailer sends outbound SMTP notifications. Configuration comes
// from env vars; delivery is best-effort and never blocks a request.
package mailer

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Configured reports whether SMTP credentials are present. Without them the
// contact form still stores submissions but skips the notification mail.
func Configured() bool {
	return os.Getenv("SENDER_EMAIL") != "" && os.Getenv("SENDER_PASSWORD") != ""
}

// Send delivers one message through the configured SMTP server.
func Send(to, subject, body string) error {
	host := os.Getenv("SMTP_SERVER")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	sender := os.Getenv("SENDER_EMAIL")
	password := os.Getenv("SENDER_PASSWORD")

	m := gomail.NewMessage()
	m.SetHeader("From", sender)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(host, port, sender, password)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("could not send email to %s: %v", to, err)
		return err
	}
	return nil
}

// SendContactNotification forwards a contact-form submission to the support
// inbox. Fire-and-forget; failures are logged, not surfaced.
func SendContactNotification(name, email, subject, message, reference string) {
	if !Configured() {
		log.Printf("mailer not configured, skipping contact notification %s", reference)
		return
	}
	receiver := os.Getenv("RECEIVER_EMAIL")
	if receiver == "" {
		receiver = "support@healthaisuperapp.com"
	}
	body := fmt.Sprintf("Ticket: %s\nName: %s\nEmail: %s\n\n%s", reference, name, email, message)
	go Send(receiver, subject, body)
}

// SendPasswordResetEmail mails a reset link for the issued token.
func SendPasswordResetEmail(to, token string) {
	if !Configured() {
		log.Printf("mailer not configured, skipping reset email to %s", to)
		return
	}
	link := os.Getenv("APP_URL") + "/reset-password?token=" + token
	body := fmt.Sprintf(
		"You requested a password reset.\n\nUse the link below to set a new password (valid for 1 hour):\n%s\n\nIf you did not request this, please ignore this email.",
		link,
	)
	go Send(to, "Reset your password", body)
}
