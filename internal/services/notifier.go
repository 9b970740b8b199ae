package services

import (
	"context"
	"fmt"
	"strings"

	resend "github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"

	"github.com/Mrcarnj/MajorPools-sub000/internal/models"
)

// Notifier delivers pool emails to entrants.
type Notifier interface {
	SendWithdrawalNotice(ctx context.Context, email, entryName string, tournament *models.Tournament, golfers []string) error
	SendResultsSummary(ctx context.Context, emails []string, tournament *models.Tournament, standings []ResultLine) error
}

// ResultLine is one row of the final standings email.
type ResultLine struct {
	Position  string
	EntryName string
	Total     string
	Payout    int
}

// ResendNotifier sends email through the Resend API.
type ResendNotifier struct {
	client  *resend.Client
	from    string
	siteURL string
	logger  *logrus.Logger
}

func NewResendNotifier(apiKey, from, siteURL string, logger *logrus.Logger) *ResendNotifier {
	return &ResendNotifier{
		client:  resend.NewClient(apiKey),
		from:    from,
		siteURL: siteURL,
		logger:  logger,
	}
}

func (n *ResendNotifier) SendWithdrawalNotice(ctx context.Context, email, entryName string, tournament *models.Tournament, golfers []string) error {
	subject := fmt.Sprintf("Action Required: Update Your %s %d Entry", tournament.Name, tournament.Year)
	body := withdrawalBody(entryName, tournament, golfers, n.siteURL)

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	}

	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send withdrawal notice to %s: %w", email, err)
	}

	n.logger.WithFields(logrus.Fields{
		"email":   email,
		"entry":   entryName,
		"golfers": len(golfers),
	}).Info("Sent withdrawal notice")
	return nil
}

func (n *ResendNotifier) SendResultsSummary(ctx context.Context, emails []string, tournament *models.Tournament, standings []ResultLine) error {
	subject := fmt.Sprintf("%s %d Final Results", tournament.Name, tournament.Year)
	body := resultsBody(tournament, standings)

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.from},
		Bcc:     emails,
		Subject: subject,
		Text:    body,
	}

	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send results summary: %w", err)
	}

	n.logger.WithField("recipients", len(emails)).Info("Sent final results summary")
	return nil
}

func withdrawalBody(entryName string, tournament *models.Tournament, golfers []string, siteURL string) string {
	return fmt.Sprintf(`Hello,

We noticed that your entry "%s" for %s %d has the following golfers who are no longer in the tournament:

%s

Please visit %s/create-team to update your entry with replacement golfers.

Best regards,
Major Pools Team`, entryName, tournament.Name, tournament.Year, strings.Join(golfers, ", "), siteURL)
}

func resultsBody(tournament *models.Tournament, standings []ResultLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "HELLO FRIENDS AND GOLF FANS,\n\n")
	fmt.Fprintf(&b, "%s %d is in the books. Final pool standings:\n\n", tournament.Name, tournament.Year)
	for _, line := range standings {
		if line.Payout > 0 {
			fmt.Fprintf(&b, "  %-4s %s (%s) - $%d\n", line.Position, line.EntryName, line.Total, line.Payout)
		} else {
			fmt.Fprintf(&b, "  %-4s %s (%s)\n", line.Position, line.EntryName, line.Total)
		}
	}
	fmt.Fprintf(&b, "\nThanks for playing, and see you at the next major!\n\nCheers,\nMajor Pools Team\n")
	return b.String()
}

// MockNotifier for development and tests - records sends instead of emailing.
type MockNotifier struct {
	WithdrawalNotices []MockWithdrawalNotice
	ResultsSummaries  int
}

type MockWithdrawalNotice struct {
	Email     string
	EntryName string
	Golfers   []string
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (n *MockNotifier) SendWithdrawalNotice(ctx context.Context, email, entryName string, tournament *models.Tournament, golfers []string) error {
	logrus.Infof("MOCK EMAIL: withdrawal notice for entry %q to %s: %s", entryName, email, strings.Join(golfers, ", "))
	n.WithdrawalNotices = append(n.WithdrawalNotices, MockWithdrawalNotice{
		Email:     email,
		EntryName: entryName,
		Golfers:   golfers,
	})
	return nil
}

func (n *MockNotifier) SendResultsSummary(ctx context.Context, emails []string, tournament *models.Tournament, standings []ResultLine) error {
	logrus.Infof("MOCK EMAIL: final results summary to %d recipients", len(emails))
	n.ResultsSummaries++
	return nil
}
