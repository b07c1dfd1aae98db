package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	SubjectVerifyEmail   = "Verify your email"
	SubjectResetPassword = "Reset your password"
)

var (
	verifyTmpl = template.Must(template.New("verify").Parse(
		`<p>Click <a href="{{.Link}}">here</a> to verify your email</p>`))
	resetTmpl = template.Must(template.New("reset").Parse(
		`<p>Click <a href="{{.Link}}">here</a> to reset your password</p>`))
)

// VerificationBody renders the email-verification message for link.
func VerificationBody(link string) (string, error) {
	return render(verifyTmpl, link)
}

// PasswordResetBody renders the password-reset message for link.
func PasswordResetBody(link string) (string, error) {
	return render(resetTmpl, link)
}

func render(t *template.Template, link string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, struct{ Link string }{Link: link}); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
