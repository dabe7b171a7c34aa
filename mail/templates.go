package mail

import (
	"bytes"
	"html/template"

	"github.com/pkg/errors"
)

var (
	magicLinkTemplate = template.Must(template.New("magic-link").Parse(`<div style="font-family: sans-serif; padding: 20px; max-width: 600px; margin: 0 auto">
<h2>Sign in to {{.AppName}}</h2>
<p>Click the link below to sign in securely. This link expires in {{.ExpiresIn}}.</p>
<p><a href="{{.URL}}">Sign In</a></p>
<p style="color: #666; font-size: 12px">Or copy and paste this URL into your browser:<br>{{.URL}}</p>
</div>`))

	resetPasswordTemplate = template.Must(template.New("reset-password").Parse(`<div style="font-family: sans-serif; padding: 20px; max-width: 600px; margin: 0 auto">
<h2>Reset your {{.AppName}} password</h2>
<p>We received a request to reset your password. This link expires in {{.ExpiresIn}}.</p>
<p><a href="{{.URL}}">Reset Password</a></p>
<p style="color: #666; font-size: 12px">If you did not request this, you can ignore this email.</p>
</div>`))
)

// LinkEmail is the data rendered into link bearing templates
type LinkEmail struct {
	AppName   string
	URL       string
	ExpiresIn string
}

func MagicLinkMessage(to string, data LinkEmail) (Message, error) {
	return render(magicLinkTemplate, to, "Your sign-in link", data)
}

func ResetPasswordMessage(to string, data LinkEmail) (Message, error) {
	return render(resetPasswordTemplate, to, "Reset your password", data)
}

func render(tmpl *template.Template, to, subject string, data LinkEmail) (Message, error) {
	var b bytes.Buffer
	if err := tmpl.Execute(&b, data); err != nil {
		return Message{}, errors.Wrapf(err, "render %s email", tmpl.Name())
	}
	return Message{To: to, Subject: subject, HTML: b.String()}, nil
}
