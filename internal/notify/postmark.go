package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"donationhub/pkg/types"

	"github.com/keighl/postmark"
)

type PostmarkNotifier struct {
	client     *postmark.Client
	sender     string
	adminEmail string
}

func NewPostmarkNotifier(serverToken, sender, adminEmail string) *PostmarkNotifier {
	return &PostmarkNotifier{
		client:     postmark.NewClient(serverToken, ""),
		sender:     sender,
		adminEmail: adminEmail,
	}
}

func (n *PostmarkNotifier) NotifyAdmin(ctx context.Context, notice AdminNotice) error {
	if n.adminEmail == "" {
		return fmt.Errorf("no admin notification address configured")
	}

	subject, text := AdminMessage(notice)
	return n.send(ctx, n.adminEmail, subject, text)
}

func (n *PostmarkNotifier) NotifyDonor(ctx context.Context, notice DonorNotice) error {
	subject, text := DonorMessage(notice)
	return n.send(ctx, notice.DonorEmail, subject, text)
}

func (n *PostmarkNotifier) send(ctx context.Context, to, subject, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := n.client.SendEmail(postmark.Email{
		From:     n.sender,
		To:       to,
		Subject:  subject,
		HtmlBody: htmlBody(text),
		TextBody: text,
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	return nil
}

func htmlBody(text string) string {
	lines := strings.Split(html.EscapeString(text), "\n")
	return "<p>" + strings.Join(lines, "<br>") + "</p>"
}

// AdminMessage renders the subject and plain text body of an admin notice.
func AdminMessage(notice AdminNotice) (string, string) {
	subject := fmt.Sprintf("New donation submitted: %s", notice.ItemName)

	var b strings.Builder
	fmt.Fprintf(&b, "A new donation is waiting for review.\n\n")
	fmt.Fprintf(&b, "Donor: %s (%s)\n", notice.DonorName, notice.DonorEmail)
	fmt.Fprintf(&b, "Item: %s\n", notice.ItemName)
	fmt.Fprintf(&b, "Quantity: %d\n", notice.Quantity)
	fmt.Fprintf(&b, "Description: %s\n", notice.Description)
	fmt.Fprintf(&b, "Donation ID: %s", notice.DonationID)

	return subject, b.String()
}

// DonorMessage renders the subject and plain text body of a donor notice.
func DonorMessage(notice DonorNotice) (string, string) {
	verb := "approved"
	if notice.Status == types.DonationStatusRejected {
		verb = "rejected"
	}

	subject := fmt.Sprintf("Your donation has been %s", verb)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", notice.DonorName)
	fmt.Fprintf(&b, "Your donation of %s (quantity %d) has been %s.\n", notice.ItemName, notice.Quantity, verb)
	if notice.AdminNotes != nil && *notice.AdminNotes != "" {
		fmt.Fprintf(&b, "\nNotes from the reviewer: %s\n", *notice.AdminNotes)
	}
	fmt.Fprintf(&b, "\nDonation ID: %s", notice.DonationID)

	return subject, b.String()
}
