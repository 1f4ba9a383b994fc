package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// Contact is the data rendered into the notification email.
type Contact struct {
	FirstName string
	LastName  string
	Email     string
	Subject   string
	Message   string
}

var contactHTML = htmltemplate.Must(htmltemplate.New("contact").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #96bb7c; border-bottom: 2px solid #96bb7c; padding-bottom: 10px;">New Contact Form Submission</h2>
  <div style="padding: 20px 0;">
    <p><strong>Name:</strong> {{.FirstName}} {{.LastName}}</p>
    <p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
    <p><strong>Subject:</strong> {{.Subject}}</p>
  </div>
  <div style="background-color: #f8f9fa; padding: 20px; border-radius: 5px;">
    <h3 style="margin-top: 0; color: #333;">Message:</h3>
    <p style="color: #666; line-height: 1.6; white-space: pre-wrap;">{{.Message}}</p>
  </div>
</div>
`))

var contactText = texttemplate.Must(texttemplate.New("contact").Parse(`New Contact Form Submission

Name: {{.FirstName}} {{.LastName}}
Email: {{.Email}}
Subject: {{.Subject}}

{{.Message}}
`))

// ContactMessage renders the owner notification for a contact submission.
// Replies go to the submitter.
func ContactMessage(from string, to []string, c Contact) (Message, error) {
	var html, text bytes.Buffer
	if err := contactHTML.Execute(&html, c); err != nil {
		return Message{}, fmt.Errorf("render contact html: %w", err)
	}
	if err := contactText.Execute(&text, c); err != nil {
		return Message{}, fmt.Errorf("render contact text: %w", err)
	}
	return Message{
		From:    from,
		To:      to,
		ReplyTo: c.Email,
		Subject: "Portfolio Contact: " + c.Subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
