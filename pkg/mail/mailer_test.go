package mail

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestVerificationMessage(t *testing.T) {
	msg := VerificationMessage("Ayesha", "ayesha@example.com", "123456", 10*time.Minute)

	if len(msg.To) != 1 || msg.To[0] != "ayesha@example.com" {
		t.Fatalf("unexpected recipients: %v", msg.To)
	}
	if msg.Subject != "Your verification code" {
		t.Fatalf("unexpected subject: %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "123456") || !strings.Contains(msg.Body, "10m") {
		t.Fatalf("body missing code or validity window: %q", msg.Body)
	}
}

func TestNewSMTPMailerValidatesConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	if err == nil || !strings.Contains(err.Error(), "host is required") {
		t.Fatalf("expected host validation error, got %v", err)
	}

	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	if err != nil {
		t.Fatalf("expected disabled configuration to succeed: %v", err)
	}
	if mailer == nil {
		t.Fatal("expected mailer to be returned")
	}
}

func TestSMTPMailerSendDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	err = mailer.Send(context.Background(), Message{
		To:      []string{"user@example.com"},
		Subject: "Your OTP",
		Body:    "123456",
	})
	if err != ErrSMTPDisabled {
		t.Fatalf("expected ErrSMTPDisabled, got %v", err)
	}
}

func TestFormatMessageSanitisesSubject(t *testing.T) {
	content := formatMessage("no-reply@example.com", []string{"to@example.com"}, "OTP\r\nBcc: evil", "123456")
	if !strings.Contains(content, "Subject: OTP  Bcc: evil") {
		t.Fatalf("expected folded subject header, got %q", content)
	}
	if !strings.HasSuffix(content, "123456") {
		t.Fatalf("expected body suffix, got %q", content)
	}
}

func TestSMTPMailerDefaultTimeout(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "no-reply@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	sm, ok := mailer.(*smtpMailer)
	if !ok {
		t.Fatal("expected smtpMailer type")
	}
	if sm.cfg.Timeout <= 0 {
		t.Fatal("expected default timeout to be assigned")
	}
}
