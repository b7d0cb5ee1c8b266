package mail

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vairaleo03/classrent/logger"
	"github.com/vairaleo03/classrent/models/booking_models"
	"github.com/vairaleo03/classrent/models/space_models"
	gomail "gopkg.in/gomail.v2"
)

// Email template names (files under templates/email/).
const (
	bookingConfirmationTemplate = "booking_confirmation.html"
	bookingUpdatedTemplate      = "booking_updated.html"
	bookingCancelledTemplate    = "booking_cancelled.html"
	bookingReminderTemplate     = "booking_reminder.html"
)

var templates *template.Template

// InitTemplates parses the embedded email templates. Must be called once at
// startup before any mail is sent.
func InitTemplates(fs embed.FS) {
	templates = template.Must(template.ParseFS(fs, "templates/email/*.html"))
}

type bookingEmailData struct {
	FullName  string
	SpaceName string
	Location  string
	Start     string
	End       string
	Purpose   string
	Materials string
	Notes     string
	Reason    string
}

func newBookingEmailData(fullName string, b *booking_models.Booking, s *space_models.Space, reason string) bookingEmailData {
	return bookingEmailData{
		FullName:  fullName,
		SpaceName: s.Name,
		Location:  s.Location,
		Start:     b.StartDatetime.Format("Mon, 02 Jan 2006 15:04"),
		End:       b.EndDatetime.Format("Mon, 02 Jan 2006 15:04"),
		Purpose:   b.Purpose,
		Materials: strings.Join(b.MaterialsRequested, ", "),
		Notes:     b.Notes,
		Reason:    reason,
	}
}

// sendEmail renders a template and delivers it over SMTP using gomail.
func sendEmail(toEmail, subject, templateName string, data interface{}) error {
	if templates == nil {
		return fmt.Errorf("email templates not initialized")
	}

	mailer := gomail.NewMessage()
	mailer.SetHeader("From", os.Getenv("FROM_EMAIL"))
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, templateName, data); err != nil {
		logger.ErrorLogger.Errorf("Failed to execute email template %s: %v", templateName, err)
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	mailer.SetBody("text/html", body.String())

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid SMTP port: %v", err)
		return fmt.Errorf("invalid SMTP port: %w", err)
	}

	smtpHost := os.Getenv("SMTP_HOST")
	dialer := gomail.NewDialer(smtpHost, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	dialer.TLSConfig = &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         smtpHost,
	}

	start := time.Now()
	if err := dialer.DialAndSend(mailer); err != nil {
		logger.ErrorLogger.Errorf("Failed to send email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.InfoLogger.Infof("Email %q sent to %s in %v", subject, toEmail, time.Since(start))
	return nil
}

// SendBookingConfirmation delivers the confirmation email for a new booking.
func SendBookingConfirmation(toEmail, fullName string, b *booking_models.Booking, s *space_models.Space) error {
	subject := fmt.Sprintf("Booking confirmed: %s", s.Name)
	return sendEmail(toEmail, subject, bookingConfirmationTemplate, newBookingEmailData(fullName, b, s, ""))
}

// SendBookingUpdated notifies the owner that their booking changed.
func SendBookingUpdated(toEmail, fullName string, b *booking_models.Booking, s *space_models.Space) error {
	subject := fmt.Sprintf("Booking updated: %s", s.Name)
	return sendEmail(toEmail, subject, bookingUpdatedTemplate, newBookingEmailData(fullName, b, s, ""))
}

// SendBookingCancellation notifies the owner that their booking was cancelled.
func SendBookingCancellation(toEmail, fullName string, b *booking_models.Booking, s *space_models.Space, reason string) error {
	subject := fmt.Sprintf("Booking cancelled: %s", s.Name)
	return sendEmail(toEmail, subject, bookingCancelledTemplate, newBookingEmailData(fullName, b, s, reason))
}

// SendBookingReminder delivers the 24-hour reminder for an upcoming booking.
func SendBookingReminder(toEmail, fullName string, b *booking_models.Booking, s *space_models.Space) error {
	subject := fmt.Sprintf("Reminder: %s tomorrow", s.Name)
	return sendEmail(toEmail, subject, bookingReminderTemplate, newBookingEmailData(fullName, b, s, ""))
}
