package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService handles sending parent notification emails via Amazon SES
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
	debug     bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName string, debug bool) (*EmailService, error) {
	// If fromEmail is empty, create a disabled service
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{
			enabled: false,
			debug:   debug,
		}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From Email: %s", fromEmail)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		debug:     debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendMilestoneEmail tells a parent their child is nearing the free
// question allowance
func (s *EmailService) SendMilestoneEmail(ctx context.Context, toEmail, childName string, remaining int) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): milestone to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("%s has %d free questions left on StoryJars", childName, remaining)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #f5a623; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>%s is on a roll!</h1>
		</div>
		<div class="content">
			<p>Hi,</p>
			<p>%s has been reading up a storm and has <strong>%d free comprehension questions</strong> remaining on StoryJars.</p>
			<p>Upgrade to premium for unlimited questions and keep the momentum going.</p>
		</div>
		<div class="footer">
			<p>This is an automated email from StoryJars. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, childName, childName, remaining)

	textBody := fmt.Sprintf(`Hi,

%s has been reading up a storm and has %d free comprehension questions remaining on StoryJars.

Upgrade to premium for unlimited questions and keep the momentum going.

---
This is an automated email from StoryJars. Please do not reply.
`, childName, remaining)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendWeeklySummaryEmail sends a parent a digest of a child's week
func (s *EmailService) SendWeeklySummaryEmail(ctx context.Context, toEmail, childName string, chaptersRead int, earned float64, streak int) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): weekly summary to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("%s's reading week on StoryJars", childName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Weekly Reading Summary</h1>
		</div>
		<div class="content">
			<p>Hi,</p>
			<p>Here's how %s did this week on StoryJars:</p>
			<ul>
				<li>Chapters finished: <strong>%d</strong></li>
				<li>Money earned: <strong>$%.2f</strong></li>
				<li>Current reading streak: <strong>%d days</strong></li>
			</ul>
			<p>Keep up the great work!</p>
		</div>
		<div class="footer">
			<p>This is an automated email from StoryJars. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, childName, chaptersRead, earned, streak)

	textBody := fmt.Sprintf(`Hi,

Here's how %s did this week on StoryJars:
- Chapters finished: %d
- Money earned: $%.2f
- Current reading streak: %d days

Keep up the great work!

---
This is an automated email from StoryJars. Please do not reply.
`, childName, chaptersRead, earned, streak)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] sendEmail: from=%s, to=%s, subject=%s", fromAddress, toEmail, subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
