package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes notices to the log instead of sending them. It is used
// when no mail provider is configured.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyAdmin(_ context.Context, notice AdminNotice) error {
	subject, _ := AdminMessage(notice)
	n.logger.WithFields(logrus.Fields{
		"donation_id": notice.DonationID,
		"donor_email": notice.DonorEmail,
		"subject":     subject,
	}).Info("admin notification")
	return nil
}

func (n *LogNotifier) NotifyDonor(_ context.Context, notice DonorNotice) error {
	subject, _ := DonorMessage(notice)
	n.logger.WithFields(logrus.Fields{
		"donation_id": notice.DonationID,
		"donor_email": notice.DonorEmail,
		"status":      notice.Status,
		"subject":     subject,
	}).Info("donor notification")
	return nil
}
