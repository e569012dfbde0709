// Package notify sends transactional email and SMS. Both senders are
// best-effort collaborators: callers log failures and move on, since
// the booking or payment state change has already been committed.
package notify

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/smtp"
	"net/url"
	"os"
	"strings"
	"time"
)

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

func SendEmail(to, subject, body string, attachments ...Attachment) error {
	from := os.Getenv("EMAIL_USER")
	pass := os.Getenv("EMAIL_PASS")
	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		smtpHost = "smtp.gmail.com"
	}
	smtpPort := os.Getenv("SMTP_PORT")
	if smtpPort == "" {
		smtpPort = "587"
	}

	msg, err := buildMessage(from, to, subject, body, attachments)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", from, pass, smtpHost)
	return smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{to}, msg)
}

// buildMessage assembles a MIME message; plain text when there are no
// attachments, multipart/mixed otherwise.
func buildMessage(from, to, subject, body string, attachments []Attachment) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")

	if len(attachments) == 0 {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(body)
		return buf.Bytes(), nil
	}

	writer := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", writer.Boundary())

	textPart, err := writer.CreatePart(map[string][]string{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, err
	}

	for _, att := range attachments {
		part, err := writer.CreatePart(map[string][]string{
			"Content-Type":              {att.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", att.Filename)},
		})
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(att.Data)
		if _, err := part.Write([]byte(encoded)); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var smsClient = &http.Client{Timeout: 10 * time.Second}

// SendSMS posts to a Twilio-style messaging endpoint. The country code
// prefix matches the original deployment.
func SendSMS(to, body string) error {
	apiURL := os.Getenv("SMS_API_URL")
	if apiURL == "" {
		return fmt.Errorf("SMS_API_URL not configured")
	}

	if !strings.HasPrefix(to, "+") {
		to = "+91" + to
	}

	form := url.Values{}
	form.Set("From", os.Getenv("SMS_FROM"))
	form.Set("To", to)
	form.Set("Body", body)

	req, err := http.NewRequest(http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(os.Getenv("SMS_SID"), os.Getenv("SMS_AUTH_TOKEN"))

	resp, err := smsClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms send failed: %s", resp.Status)
	}
	return nil
}
