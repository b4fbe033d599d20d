package mail

type verificationData struct {
	VerifyURL string
}

type passwordResetData struct {
	ResetURL string
}

// emailTemplates holds the embedded HTML message bodies.
const emailTemplates = `
{{define "verification"}}
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Verify your email address</h2>
  <p>Thanks for signing up. Click the link below to activate your account.</p>
  <p><a href="{{.VerifyURL}}">Verify my email</a></p>
  <p>This link expires in 24 hours. If you did not create an account, you can ignore this message.</p>
</body>
</html>
{{end}}

{{define "password_reset"}}
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Reset your password</h2>
  <p>We received a request to reset the password for your account.</p>
  <p><a href="{{.ResetURL}}">Choose a new password</a></p>
  <p>This link expires in 1 hour. If you did not request a reset, you can ignore this message.</p>
</body>
</html>
{{end}}
`
