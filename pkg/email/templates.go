package email

import (
	"fmt"
	"html"
	"strings"
)

// LessonEmailData carries what the lesson notification emails render.
type LessonEmailData struct {
	To             string
	StudentName    string
	InstructorName string
	// When is the lesson time already formatted in the school timezone.
	When       string
	SchoolName string
}

func (d LessonEmailData) school() string {
	if d.SchoolName == "" {
		return DefaultSchoolName
	}
	return d.SchoolName
}

func (d LessonEmailData) greeting() string {
	if d.StudentName == "" {
		return "there"
	}
	return d.StudentName
}

func lessonHTML(greeting, body, school string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>%s</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">See you on the road,<br>%s</p>
</body>
</html>`, html.EscapeString(greeting), html.EscapeString(body), html.EscapeString(school))
}

func lessonMessage(d LessonEmailData, subject, body string) Message {
	return Message{
		To:       []string{d.To},
		Subject:  subject,
		TextBody: fmt.Sprintf("Hi %s,\n\n%s\n\nSee you on the road,\n%s", d.greeting(), body, d.school()),
		HTMLBody: lessonHTML(d.greeting(), body, d.school()),
	}
}

func BuildLessonBookedEmail(d LessonEmailData) Message {
	body := fmt.Sprintf("Your driving lesson with %s is booked for %s.", d.InstructorName, d.When)
	return lessonMessage(d, "Your driving lesson is booked", body)
}

func BuildLessonCancelledEmail(d LessonEmailData) Message {
	body := fmt.Sprintf("Your driving lesson with %s on %s has been cancelled.", d.InstructorName, d.When)
	return lessonMessage(d, "Your driving lesson was cancelled", body)
}

func BuildLessonRescheduledEmail(d LessonEmailData) Message {
	body := fmt.Sprintf("Your driving lesson has moved to %s with %s.", d.When, d.InstructorName)
	return lessonMessage(d, "Your driving lesson was rescheduled", body)
}

// BuildContactEmail forwards a contact form submission to the school.
func BuildContactEmail(adminEmail, name, from, message string) Message {
	return Message{
		To:       []string{adminEmail},
		ReplyTo:  from,
		Subject:  "New Contact Form Submission from " + name,
		TextBody: fmt.Sprintf("Name: %s\nEmail: %s\nMessage: %s", name, from, message),
	}
}

// BuildJobApplicationEmail notifies the school about a new careers submission.
func BuildJobApplicationEmail(adminEmail, firstName, lastName, from, phone, cvLink string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s %s\nEmail: %s\nPhone: %s\n", firstName, lastName, from, phone)
	if cvLink != "" {
		fmt.Fprintf(&b, "CV: %s\n", cvLink)
	}
	return Message{
		To:       []string{adminEmail},
		ReplyTo:  from,
		Subject:  fmt.Sprintf("New Job Application from %s %s", firstName, lastName),
		TextBody: b.String(),
	}
}
