package services

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"risehub/logger"
	"risehub/models"
	"risehub/utils"
)

// SiteInfo is the branding used in outgoing mail.
type SiteInfo struct {
	Name         string
	SupportEmail string
}

// Notifier renders registrant emails and sends them in the background.
// Delivery is best effort: a failed send is logged and dropped. A nil
// *Notifier sends nothing.
type Notifier struct {
	mailer  Mailer
	site    SiteInfo
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewNotifier(mailer Mailer, site SiteInfo) *Notifier {
	return &Notifier{mailer: mailer, site: site, timeout: 30 * time.Second}
}

// Wait blocks until every dispatched email has been attempted.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

func (n *Notifier) dispatch(e Email) {
	if n == nil || n.mailer == nil || e.To == "" {
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.mailer.Send(ctx, e); err != nil {
			logger.Warn("Failed to send %q to %s: %v", e.Subject, e.To, err)
		}
	}()
}

func (n *Notifier) layout(title, content string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #1e6f5c; color: white; padding: 20px; text-align: center; border-radius: 5px; }
        .content { background-color: #f9f9f9; padding: 20px; margin-top: 20px; border-radius: 5px; }
        .info { background-color: #e8f5e9; padding: 15px; margin: 15px 0; border-left: 4px solid #1e6f5c; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h2>%s</h2></div>
        <div class="content">
%s
            <p>Questions? Write to <a href="mailto:%s">%s</a>.</p>
            <p>Best regards,<br/>The %s Team</p>
        </div>
    </div>
</body>
</html>
`, html.EscapeString(title), content,
		html.EscapeString(n.site.SupportEmail), html.EscapeString(n.site.SupportEmail), html.EscapeString(n.site.Name))
}

// EnrollmentReceived tells the student their seat is held pending payment.
func (n *Notifier) EnrollmentReceived(student models.User, cohort models.Cohort, course models.Course) {
	if n == nil {
		return
	}
	content := fmt.Sprintf(`
            <p>Dear <strong>%s</strong>,</p>
            <p>We have received your enrollment and reserved your seat.</p>
            <div class="info">
                <p><strong>Course:</strong> %s</p>
                <p><strong>Cohort:</strong> %s (starts %s)</p>
                <p><strong>Course fee:</strong> %s %s</p>
            </div>
            <p>Your enrollment is pending until payment is confirmed by our team.</p>`,
		html.EscapeString(student.FullName()), html.EscapeString(course.Title),
		html.EscapeString(cohort.Name), cohort.StartDate.Format(utils.DisplayDate),
		html.EscapeString(course.Currency), course.Price)

	n.dispatch(Email{
		To:      student.Email,
		Subject: fmt.Sprintf("Enrollment received - %s", cohort.Name),
		Body:    n.layout("Enrollment Received", content),
	})
}

// WebinarRegistered confirms a webinar seat and shares the meeting link.
func (n *Notifier) WebinarRegistered(reg models.WebinarRegistration, webinar models.Webinar) {
	if n == nil {
		return
	}
	link := ""
	if webinar.ZoomLink != "" {
		link = fmt.Sprintf(`<p><strong>Join link:</strong> <a href="%s">%s</a></p>`,
			html.EscapeString(webinar.ZoomLink), html.EscapeString(webinar.ZoomLink))
	}
	content := fmt.Sprintf(`
            <p>Dear <strong>%s</strong>,</p>
            <p>You are registered for our free webinar.</p>
            <div class="info">
                <p><strong>%s</strong></p>
                <p><strong>When:</strong> %s (%d minutes)</p>
                %s
            </div>`,
		html.EscapeString(reg.FullName), html.EscapeString(webinar.Title),
		webinar.Date.Format(utils.DateTimeLayout), webinar.DurationMinutes, link)

	n.dispatch(Email{
		To:      reg.Email,
		Subject: fmt.Sprintf("You're registered: %s", webinar.Title),
		Body:    n.layout("Webinar Registration", content),
	})
}

// InterestReceived thanks a lead for the interest form.
func (n *Notifier) InterestReceived(form models.InterestForm, courseTitle string) {
	if n == nil {
		return
	}
	content := fmt.Sprintf(`
            <p>Dear <strong>%s</strong>,</p>
            <p>Thank you for your interest in <strong>%s</strong>. We will contact you within 24 hours.</p>`,
		html.EscapeString(form.FullName), html.EscapeString(courseTitle))

	n.dispatch(Email{
		To:      form.Email,
		Subject: fmt.Sprintf("Thank you for your interest in %s", n.site.Name),
		Body:    n.layout("Thank You", content),
	})
}

// ContactReceived acknowledges a contact form message.
func (n *Notifier) ContactReceived(msg models.ContactMessage) {
	if n == nil {
		return
	}
	content := fmt.Sprintf(`
            <p>Dear <strong>%s</strong>,</p>
            <p>We received your message about "%s" and will respond soon.</p>`,
		html.EscapeString(msg.Name), html.EscapeString(msg.Subject))

	n.dispatch(Email{
		To:      msg.Email,
		Subject: "We received your message",
		Body:    n.layout("Message Received", content),
	})
}

// ContactResponded forwards a staff reply to the original sender.
func (n *Notifier) ContactResponded(msg models.ContactMessage) {
	if n == nil || msg.Response == "" {
		return
	}
	content := fmt.Sprintf(`
            <p>Dear <strong>%s</strong>,</p>
            <p>%s</p>`,
		html.EscapeString(msg.Name), html.EscapeString(msg.Response))

	n.dispatch(Email{
		To:      msg.Email,
		Subject: "Re: " + msg.Subject,
		Body:    n.layout("Our Reply", content),
	})
}
