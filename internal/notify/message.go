package notify

import (
	"fmt"
	"strings"

	"rentdesk/internal/models"
)

func guestName(b *models.Booking) string {
	if b.Guest != nil && b.Guest.Name != "" {
		return b.Guest.Name
	}
	return "Customer"
}

// customerConfirmationBody is the plain-text email sent to the guest after
// a successful admission.
func customerConfirmationBody(b *models.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s,\n\n", guestName(b))
	sb.WriteString("Your vehicle booking has been confirmed. Here are your details:\n\n")
	fmt.Fprintf(&sb, "Vehicle:             %s\n", b.VehicleName)
	fmt.Fprintf(&sb, "Pick-up:             %s\n", b.StartDate.Format(models.DateLayout))
	fmt.Fprintf(&sb, "Return:              %s\n", b.EndDate.Format(models.DateLayout))
	fmt.Fprintf(&sb, "Total price:         %.2f\n", b.TotalPrice)
	fmt.Fprintf(&sb, "Confirmation number: %s\n\n", b.ConfirmationCode)
	sb.WriteString("Please bring a valid driving license and an ID document when picking up the vehicle.\n\n")
	sb.WriteString("Thank you for choosing us.\n")
	return sb.String()
}

func customerCancellationBody(b *models.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s,\n\n", guestName(b))
	fmt.Fprintf(&sb, "Your booking %s for %s (%s to %s) has been cancelled.\n\n",
		b.ConfirmationCode, b.VehicleName,
		b.StartDate.Format(models.DateLayout), b.EndDate.Format(models.DateLayout))
	sb.WriteString("If this was not you, please contact us.\n")
	return sb.String()
}

// adminAlertText is the message posted to the staff chat for every
// admission and cancellation, regardless of channel.
func adminAlertText(b *models.Booking, action string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Booking %s\n\n", action)
	fmt.Fprintf(&sb, "Vehicle: %s\n", b.VehicleName)
	fmt.Fprintf(&sb, "Dates: %s to %s\n",
		b.StartDate.Format(models.DateLayout), b.EndDate.Format(models.DateLayout))
	fmt.Fprintf(&sb, "Total: %.2f\n", b.TotalPrice)
	fmt.Fprintf(&sb, "Code: %s\n", b.ConfirmationCode)
	if b.Channel == models.ChannelGuest && b.Guest != nil {
		fmt.Fprintf(&sb, "Customer: %s\n", b.Guest.Name)
		fmt.Fprintf(&sb, "Phone: %s\n", b.Guest.Phone)
		fmt.Fprintf(&sb, "Email: %s\n", b.Guest.Email)
	} else {
		fmt.Fprintf(&sb, "User ID: %d\n", b.UserID)
	}
	return sb.String()
}
