package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/edupay-lk/edupay/internal/domain/claim"
	"github.com/edupay-lk/edupay/internal/shared/biztime"
	"github.com/edupay-lk/edupay/internal/shared/config"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

// EmailNotifier sends verification outcome emails over SMTP. Approvals go
// to the student; claims the engine gave up on go to the admin inbox.
type EmailNotifier struct {
	cfg    *config.EmailConfig
	dialer *gomail.Dialer
	logger logger.Interface
}

func NewEmailNotifier(cfg *config.EmailConfig, log logger.Interface) *EmailNotifier {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)

	return &EmailNotifier{
		cfg:    cfg,
		dialer: dialer,
		logger: log,
	}
}

func (n *EmailNotifier) ClaimAutoApproved(ctx context.Context, c *claim.Claim, ledgerSID string) error {
	amount := formatRupees(c.ClaimedAmount())
	when := biztime.FormatInBizTimezone(c.UpdatedAt(), "2006-01-02 15:04")

	subject := fmt.Sprintf("Payment confirmed for %s", c.PackageName())
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Payment Confirmed</h2>
			<p>Your payment of <strong>%s</strong> for <strong>%s</strong> has been verified and approved.</p>
			<p>Claim ID: %s</p>
			<p>Approved at: %s</p>
			<p>You now have access to your class materials. Thank you!</p>
		</body>
		</html>
	`, amount, c.PackageName(), c.SID(), when)

	plainBody := fmt.Sprintf(`
Payment Confirmed

Your payment of %s for %s has been verified and approved.

Claim ID: %s
Approved at: %s

You now have access to your class materials. Thank you!
	`, amount, c.PackageName(), c.SID(), when)

	if err := n.sendEmail(c.SubmitterEmail(), subject, htmlBody, plainBody); err != nil {
		return err
	}

	n.logger.Infow("sent auto-approval email",
		"claim_id", c.SID(),
		"ledger_id", ledgerSID,
		"to", c.SubmitterEmail(),
	)
	return nil
}

func (n *EmailNotifier) ClaimNeedsReview(ctx context.Context, c *claim.Claim) error {
	if n.cfg.AdminAddress == "" {
		n.logger.Warnw("no admin address configured, skipping needs-review email",
			"claim_id", c.SID())
		return nil
	}

	amount := formatRupees(c.ClaimedAmount())
	submitted := biztime.FormatInBizTimezone(c.CreatedAt(), "2006-01-02 15:04")

	subject := fmt.Sprintf("Payment claim needs review: %s", c.SID())
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Claim Needs Manual Review</h2>
			<p>Automatic verification could not approve this claim after %d attempts.</p>
			<ul>
				<li>Claim ID: %s</li>
				<li>Submitter: %s (%s)</li>
				<li>Contact: %s</li>
				<li>Package: %s</li>
				<li>Claimed amount: %s</li>
				<li>Submitted: %s</li>
			</ul>
			<p>Slip image: <a href="%s">%s</a></p>
		</body>
		</html>
	`, c.VerifyAttempts(), c.SID(), c.SubmitterID(), c.SubmitterEmail(),
		c.ContactNumber(), c.PackageName(), amount, submitted,
		c.ReceiptImageRef(), c.ReceiptImageRef())

	plainBody := fmt.Sprintf(`
Claim Needs Manual Review

Automatic verification could not approve this claim after %d attempts.

Claim ID: %s
Submitter: %s (%s)
Contact: %s
Package: %s
Claimed amount: %s
Submitted: %s
Slip image: %s
	`, c.VerifyAttempts(), c.SID(), c.SubmitterID(), c.SubmitterEmail(),
		c.ContactNumber(), c.PackageName(), amount, submitted, c.ReceiptImageRef())

	if err := n.sendEmail(n.cfg.AdminAddress, subject, htmlBody, plainBody); err != nil {
		return err
	}

	n.logger.Infow("sent needs-review email",
		"claim_id", c.SID(),
		"to", n.cfg.AdminAddress,
	)
	return nil
}

func (n *EmailNotifier) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	if n.cfg.FromName != "" {
		m.SetAddressHeader("From", n.cfg.FromAddress, n.cfg.FromName)
	} else {
		m.SetHeader("From", n.cfg.FromAddress)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func formatRupees(cents int64) string {
	return fmt.Sprintf("Rs. %.2f", float64(cents)/100)
}
