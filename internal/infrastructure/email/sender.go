package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
)

const sendgridURL = "https://api.sendgrid.com/v3/mail/send"

// EmailSender delivers transactional mail through the hosted provider's
// REST API.
type EmailSender struct {
	apiKey       string
	senderEmail  string
	senderName   string
	contactEmail string
	httpClient   *http.Client
}

func NewEmailSender(apiKey, senderEmail, contactEmail string) *EmailSender {
	return &EmailSender{
		apiKey:       apiKey,
		senderEmail:  senderEmail,
		senderName:   "Learn Portuguese Support",
		contactEmail: contactEmail,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

type sgEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgPersonalization struct {
	To []sgEmail `json:"to"`
}

type sgRequest struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgEmail             `json:"from"`
	ReplyTo          *sgEmail            `json:"reply_to,omitempty"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

// SendContactEmail forwards a contact-form submission to the site owner
// with reply-to set to the submitter.
func (s *EmailSender) SendContactEmail(ctx context.Context, name, fromEmail, subject, message string) error {
	htmlBody := fmt.Sprintf(`
		<h2>New Contact Form Submission</h2>
		<p><strong>Name:</strong> %s</p>
		<p><strong>Email:</strong> %s</p>
		<p><strong>Subject:</strong> %s</p>
		<p><strong>Message:</strong></p>
		<p>%s</p>`,
		html.EscapeString(name),
		html.EscapeString(fromEmail),
		html.EscapeString(subject),
		strings.ReplaceAll(html.EscapeString(message), "\n", "<br>"),
	)

	body := sgRequest{
		Personalizations: []sgPersonalization{
			{To: []sgEmail{{Email: s.contactEmail}}},
		},
		From:    sgEmail{Email: s.senderEmail, Name: s.senderName},
		ReplyTo: &sgEmail{Email: fromEmail, Name: name},
		Subject: "Contact Form: " + subject,
		Content: []sgContent{{Type: "text/html", Value: htmlBody}},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendgridURL, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Provider answers 202 on success.
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sendgrid error: status=%d body=%s", resp.StatusCode, respBody)
	}
	return nil
}
