package notification

import (
	"fmt"
	"strings"

	"github.com/gorider/gorider-api/internal/domain/coupon"
	"github.com/gorider/gorider-api/internal/domain/payment"
)

// ReceiptMessage renders the post-payment receipt
func ReceiptMessage(recipient string, p payment.Payment) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for riding with GoRider.\n\n")
	fmt.Fprintf(&b, "Ride: %s\n", p.RideID)
	if p.CarName != "" {
		fmt.Fprintf(&b, "Vehicle: %s (%s)\n", p.CarName, p.VehicleType)
	}
	if p.DriverName != "" {
		fmt.Fprintf(&b, "Driver: %s\n", p.DriverName)
	}
	if p.Distance > 0 {
		fmt.Fprintf(&b, "Distance: %.2f km\n", p.Distance)
	}
	fmt.Fprintf(&b, "Amount paid: $%.2f\n", p.Price)
	fmt.Fprintf(&b, "Transaction: %s\n", p.TransactionID)

	return Message{
		To:      recipient,
		Subject: fmt.Sprintf("GoRider receipt for ride %s", p.RideID),
		Body:    b.String(),
	}
}

// CouponAnnouncement renders the promotional broadcast for a new coupon
func CouponAnnouncement(c coupon.Coupon) (subject, body string) {
	subject = fmt.Sprintf("New GoRider offer: %s", c.Name)
	body = fmt.Sprintf("Use code %s to get %.0f%% off your next ride.\n", c.Code, c.Discount)
	return subject, body
}
