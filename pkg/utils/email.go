package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

var (
	emailFrom     = os.Getenv("EMAIL_FROM")
	emailPassword = os.Getenv("EMAIL_PASSWORD")
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	companyName   = "Go Swift"
	baseURL       = os.Getenv("BASE_URL")
)

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #1E90FF; margin: 0;">Go Swift</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>© 2026 Go Swift. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

func sendEmail(to []string, subject, body string) error {
	if emailFrom == "" || emailPassword == "" || smtpHost == "" || smtpPort == "" {
		return fmt.Errorf("email configuration not set")
	}

	// Headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", companyName, emailFrom)
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"
	headers["X-Mailer"] = "GoSwift-Mailer"

	// Build message
	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	// Authentication
	auth := smtp.PlainAuth("", emailFrom, emailPassword, smtpHost)

	// Send email
	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, emailFrom, to, []byte(message))
	if err != nil {
		log.Printf("Failed to send email: %v", err)
		return err
	}

	log.Printf("Successfully sent email to recipients: %v", to)
	return nil
}

// SendVerificationEmail sends the account verification link after signup.
func SendVerificationEmail(email, token string) error {
	link := fmt.Sprintf("%s/api/auth/verify-email?token=%s", baseURL, token)
	subject := "Verify Your Go Swift Account"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Welcome to Go Swift!</h1>
					<p>Please verify your email address by clicking the button below:</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s" style="background-color: #1E90FF; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Verify Email</a>
					</div>
					<p>Or copy this link: %s</p>
					<p>This link will expire in 24 hours.</p>
					<p>If you didn't create this account, please ignore this email.</p>
				</div>`+emailFooter,
		link, link)

	return sendEmail([]string{email}, subject, body)
}

// SendPasswordResetEmail sends the password reset link.
func SendPasswordResetEmail(email, name, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", baseURL, token)
	subject := "Reset Your Go Swift Password"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Password Reset Request</h1>
					<p>Hi %s,</p>
					<p>Click the link below to reset your password:</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s" style="background-color: #1E90FF; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Reset Password</a>
					</div>
					<p>Or copy this link: %s</p>
					<p>This link will expire in 1 hour.</p>
					<p>If you didn't request this, please ignore this email.</p>
				</div>`+emailFooter,
		name, link, link)

	return sendEmail([]string{email}, subject, body)
}

// SendBookingRequestEmail notifies a trip owner of a new booking request.
func SendBookingRequestEmail(ownerEmail, riderName string, seats int) error {
	subject := "New Booking Request - Go Swift"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">New Booking Request</h1>
					<p>Hello,</p>
					<p><strong>%s</strong> requested to book <strong>%d</strong> seat(s) on your trip.</p>
					<p>Please log in to your Go Swift account to confirm or cancel this booking.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/login" style="background-color: #1E90FF; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Login to Go Swift</a>
					</div>
					<p>Best regards,<br>The Go Swift Team</p>
				</div>`+emailFooter,
		riderName, seats, baseURL)

	return sendEmail([]string{ownerEmail}, subject, body)
}
