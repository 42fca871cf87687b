package mail

import (
	"bytes"
	"html/template"
	"strings"
)

const optInTpl = `<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;padding:20px">
  <div style="text-align:center;margin-bottom:30px">
    <h1 style="color:#f0641e;margin:0">Lingoletics</h1>
  </div>
  <h2 style="color:#333;margin-top:0">Confirm your subscription</h2>
  <p>Hi {{.Greeting}},</p>
  <p>Thank you for your interest in Lingoletics! We're excited to have you on board.</p>
  <p>To complete your subscription and receive notifications when we launch, please confirm your email address by clicking the button below:</p>
  <div style="text-align:center;margin:30px 0">
    <a href="{{.ConfirmURL}}" style="background-color:#f0641e;color:white;padding:12px 30px;text-decoration:none;border-radius:5px;display:inline-block;font-weight:bold">Confirm Subscription</a>
  </div>
  <p style="color:#666;font-size:14px">Or copy and paste this link into your browser:</p>
  <p style="color:#666;font-size:12px;word-break:break-all">{{.ConfirmURL}}</p>
  <p style="color:#666;font-size:14px;margin-top:30px">If you didn't request this subscription, you can safely ignore this email.</p>
  <hr style="border:none;border-top:1px solid #eee;margin:30px 0">
  <p style="color:#999;font-size:12px;margin:0">Best regards,<br>The Lingoletics Team</p>
</div>`

const welcomeTpl = `<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;padding:20px">
  <div style="text-align:center;margin-bottom:30px">
    <h1 style="color:#f0641e;margin:0">Lingoletics</h1>
  </div>
  <h2 style="color:#333;margin-top:0">Welcome to Lingoletics!</h2>
  <p>Hi {{.Greeting}},</p>
  <p>Thank you for confirming your subscription! We're excited to have you on board.</p>
  <p>We're currently working hard to launch Lingoletics - a platform that makes language learning fun and engaging for students with:</p>
  <ul>
    <li>&#128218; Engaging Stories</li>
    <li>&#127919; Tests &amp; Quizzes</li>
    <li>&#128214; Vocabulary Trainer</li>
    <li>&#127918; Fun Games</li>
  </ul>
  <p>We'll notify you as soon as we launch. Stay tuned!</p>
  <hr style="border:none;border-top:1px solid #eee;margin:30px 0">
  <p style="color:#999;font-size:12px;margin:0">Best regards,<br>The Lingoletics Team</p>
</div>`

const broadcastTpl = `<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h1 style="color:#4f46e5">Lingoletics Launch!</h1>
  <p>Hi {{.Greeting}},</p>
  <div style="margin:20px 0">{{.Body}}</div>
  <p>Best regards,<br>The Lingoletics Team</p>
</div>`

// OptInData is the data for the double opt-in confirmation email.
type OptInData struct {
	Name       string
	ConfirmURL string
}

// WelcomeData is the data for the post-confirmation welcome email.
type WelcomeData struct {
	Name string
}

// BroadcastData is the data for an admin launch-announcement email.
type BroadcastData struct {
	Name    string
	Message string
}

func renderTemplate(tpl string, data interface{}) (string, error) {
	t, err := template.New("").Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func greeting(name string) string {
	if strings.TrimSpace(name) == "" {
		return "there"
	}
	return name
}

// SendOptIn sends the confirmation-link email to a new or resubscribing signup.
func (s *Sender) SendOptIn(to string, data OptInData) error {
	html, err := renderTemplate(optInTpl, struct {
		Greeting   string
		ConfirmURL string
	}{greeting(data.Name), data.ConfirmURL})
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: "Confirm your subscription to Lingoletics",
		HTML:    html,
	})
}

// SendWelcome sends the welcome email after a confirmed opt-in.
func (s *Sender) SendWelcome(to string, data WelcomeData) error {
	html, err := renderTemplate(welcomeTpl, struct {
		Greeting string
	}{greeting(data.Name)})
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: "Welcome to Lingoletics!",
		HTML:    html,
	})
}

// SendBroadcast sends a launch announcement. The plain-text message keeps its
// line breaks in the rendered HTML.
func (s *Sender) SendBroadcast(to, subject string, data BroadcastData) error {
	escaped := template.HTMLEscapeString(data.Message)
	body := template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
	html, err := renderTemplate(broadcastTpl, struct {
		Greeting string
		Body     template.HTML
	}{greeting(data.Name), body})
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
}
