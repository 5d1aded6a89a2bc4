package notification

import (
	"fmt"
	"time"
)

const dateLayout = "Jan 2, 2006"

// Message templates for lifecycle events. Kept in one place so the services
// only decide when to notify, not how the text reads.

func MembershipExpiring(name, planName string, endDate time.Time, autoRenew bool) (string, string) {
	renewLine := "Please renew your membership to continue enjoying our facilities."
	if autoRenew {
		renewLine = "Your membership will automatically renew."
	}

	subject := "Your Membership Expires Soon"
	body := fmt.Sprintf(`Hi %s,

This is a reminder that your %s membership expires on %s.

%s

If you have any questions, please contact us.

Thank you for being a valued member!
The FitFlow Pro Team`, name, planName, endDate.Format(dateLayout), renewLine)

	return subject, body
}

func MembershipFrozen(name string, freezeEnd time.Time) (string, string) {
	subject := "Your Membership Has Been Frozen"
	body := fmt.Sprintf(`Hi %s,

Your membership is now frozen until %s. Your end date has been extended by the freeze duration.

The FitFlow Pro Team`, name, freezeEnd.Format(dateLayout))

	return subject, body
}

func MembershipUnfrozen(name string) (string, string) {
	subject := "Your Membership Is Active Again"
	body := fmt.Sprintf(`Hi %s,

Your membership freeze has ended and your membership is active again. See you at the gym!

The FitFlow Pro Team`, name)

	return subject, body
}

func MembershipCancelled(name string, cancellationDate time.Time) (string, string) {
	subject := "Membership Cancelled"
	body := fmt.Sprintf(`Hi %s,

Your membership was cancelled on %s. We're sorry to see you go.

The FitFlow Pro Team`, name, cancellationDate.Format(dateLayout))

	return subject, body
}

func MembershipRenewed(name string, newEndDate time.Time) (string, string) {
	subject := "Membership Renewed"
	body := fmt.Sprintf(`Hi %s,

Your membership has been renewed and is now valid until %s.

Thank you for staying with us!
The FitFlow Pro Team`, name, newEndDate.Format(dateLayout))

	return subject, body
}

func PaymentFailed(name string) (string, string) {
	subject := "Payment Failed - Action Required"
	body := fmt.Sprintf(`Hi %s,

Your membership renewal payment has failed. Your membership has been frozen to protect your account.

Please update your payment method to restore access.

The FitFlow Pro Team`, name)

	return subject, body
}

func PaymentReceipt(name string, amountCents int64, currency string) (string, string) {
	subject := "Payment Received"
	body := fmt.Sprintf(`Hi %s,

We received your payment of %.2f %s. Your membership has been renewed.

Thank you!
The FitFlow Pro Team`, name, float64(amountCents)/100, currency)

	return subject, body
}

func PaymentReminder(name string, amountCents int64, currency string, dueDate time.Time) (string, string) {
	subject := "Payment Reminder - Due in 3 Days"
	body := fmt.Sprintf(`Hi %s,

This is a reminder that your payment of %.2f %s is due on %s.

Please ensure your payment method is up to date to avoid any interruption in your membership.

Thank you!
The FitFlow Pro Team`, name, float64(amountCents)/100, currency, dueDate.Format(dateLayout))

	return subject, body
}

func ClassReminder(name, className string, startsAt time.Time) (string, string) {
	subject := fmt.Sprintf("Class Reminder: %s", className)
	body := fmt.Sprintf(`Hi %s,

Your class "%s" starts at %s. Don't forget your gear!

See you there!
The FitFlow Pro Team`, name, className, startsAt.Format("Jan 2, 2006 at 3:04 PM"))

	return subject, body
}

func BookingConfirmed(name, className string, date time.Time) (string, string) {
	subject := fmt.Sprintf("Booking Confirmed - %s", className)
	body := fmt.Sprintf(`Hi %s,

Your booking for "%s" on %s is confirmed.

See you at the gym!
The FitFlow Pro Team`, name, className, date.Format(dateLayout))

	return subject, body
}

func BookingWaitlisted(name, className string, date time.Time) (string, string) {
	subject := fmt.Sprintf("You're on the Waitlist - %s", className)
	body := fmt.Sprintf(`Hi %s,

"%s" on %s is currently full, so we've added you to the waitlist. We'll let you know as soon as a spot opens up.

The FitFlow Pro Team`, name, className, date.Format(dateLayout))

	return subject, body
}

func WaitlistPromoted(name, className string, date time.Time) (string, string) {
	subject := fmt.Sprintf("A Spot Opened Up - %s", className)
	body := fmt.Sprintf(`Hi %s,

Good news! A spot opened up in "%s" on %s and your waitlisted booking is now confirmed.

See you there!
The FitFlow Pro Team`, name, className, date.Format(dateLayout))

	return subject, body
}

func BookingCancelled(name, className string, date time.Time) (string, string) {
	subject := fmt.Sprintf("Booking Cancelled - %s", className)
	body := fmt.Sprintf(`Hi %s,

Your booking for "%s" on %s has been cancelled.

The FitFlow Pro Team`, name, className, date.Format(dateLayout))

	return subject, body
}
