package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Email delivery is always fire-and-forget: the economic transaction that triggered
// the email is already durably committed, so send failures are logged here and
// never propagated to callers.

func smtpDialer() (*gomail.Dialer, string, error) {
	host := os.Getenv("SMTP_HOST")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	if host == "" || user == "" {
		return nil, "", fmt.Errorf("SMTP_HOST or SMTP_USER is not set")
	}
	port := 587
	if s := os.Getenv("SMTP_PORT"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			port = v
		}
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}
	return gomail.NewDialer(host, port, user, pass), from, nil
}

func sendMail(to, subject, htmlBody string) {
	if to == "" {
		return
	}
	d, from, err := smtpDialer()
	if err != nil {
		log.Printf("[mailer] not configured, skipping %q to %s: %v", subject, to, err)
		return
	}
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("ResellHub Alerts <%s>", from))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("[mailer] send %q to %s failed: %v", subject, to, err)
	}
}

// SendPurchaseEmail confirms a plan/product purchase to the buyer and alerts the admin.
func SendPurchaseEmail(email, name, itemName string, amount float64) {
	subject := fmt.Sprintf("Purchase confirmed: %s", itemName)
	body := fmt.Sprintf(`<h3>Hello %s,</h3>
<p>Your purchase of <strong>%s</strong> for <strong>PKR %.2f</strong> was successful.</p>
<p>The automated sales cycle has started. Check your dashboard for daily updates.</p>
<p>Regards,<br>ResellHub Team</p>`, name, itemName, amount)
	sendMail(email, subject, body)
	sendMail(os.Getenv("ADMIN_EMAIL"), fmt.Sprintf("New sale: %s", itemName),
		fmt.Sprintf("<p>User %s bought %s for PKR %.2f.</p>", name, itemName, amount))
}

// SendPayoutEmail notifies the owner that a completed cycle paid out to their wallet.
func SendPayoutEmail(email, name, itemName string, amount float64) {
	subject := fmt.Sprintf("Cycle complete! Payout: PKR %.2f", amount)
	body := fmt.Sprintf(`<h3>Congratulations %s!</h3>
<p>Your <strong>%s</strong> sales cycle is complete.</p>
<p>We have added <strong>PKR %.2f</strong> (capital + profit) to your wallet.</p>
<p>You can withdraw anytime or start a new cycle.</p>`, name, itemName, amount)
	sendMail(email, subject, body)
}

// SendWithdrawalRequestEmail alerts the admin that a withdrawal awaits a decision.
func SendWithdrawalRequestEmail(userName, bankName string, amount float64) {
	subject := fmt.Sprintf("New withdrawal request: PKR %.2f", amount)
	body := fmt.Sprintf(`<h3>Admin Alert</h3>
<p>User <strong>%s</strong> has requested a withdrawal.</p>
<ul><li>Amount: PKR %.2f</li><li>Bank: %s</li></ul>
<p>Please log in to the admin panel to approve or reject.</p>`, userName, amount, bankName)
	sendMail(os.Getenv("ADMIN_EMAIL"), subject, body)
}

// SendWithdrawalApprovedEmail notifies the user their withdrawal was processed.
func SendWithdrawalApprovedEmail(email, name string, amount float64) {
	subject := fmt.Sprintf("Withdrawal approved: PKR %.2f", amount)
	body := fmt.Sprintf(`<h3>Hi %s,</h3>
<p>Your withdrawal request for <strong>PKR %.2f</strong> has been processed.</p>
<p>The funds should appear in your bank account shortly.</p>`, name, amount)
	sendMail(email, subject, body)
}
