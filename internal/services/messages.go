package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/joshua-takyi/fasttrack/internal/helpers"
	"github.com/joshua-takyi/fasttrack/internal/models"
)

// ComposeBookingAlert is the operations message sent when a booking comes in.
func ComposeBookingAlert(b *models.Booking, svc *models.Service) string {
	var sb strings.Builder
	sb.WriteString("🚗✨ New Fast Track Booking!\n\n")
	fmt.Fprintf(&sb, "Service: %s\n", svc.NameEn)
	fmt.Fprintf(&sb, "Customer: %s | +%s\n", b.CustomerName, helpers.InternationalNumber(b.WhatsAppNumber))
	fmt.Fprintf(&sb, "Location: %s - %s\n", b.Area, b.FullAddress)
	fmt.Fprintf(&sb, "Time: %s at %s\n", b.PreferredDate, b.PreferredTime)
	fmt.Fprintf(&sb, "Car Type: %s", b.CarType)
	if b.HasCoordinates() {
		fmt.Fprintf(&sb, "\n\nNavigate: %s", b.MapsURL())
	}
	return sb.String()
}

// ComposeConfirmation is the message the admin hands off to the customer on confirmation.
func ComposeConfirmation(b *models.Booking, locale string) string {
	locale = helpers.NormalizeLocale(locale)
	date := b.PreferredDate
	if d, err := time.Parse(helpers.DateLayout, b.PreferredDate); err == nil {
		date = helpers.FormatDate(d, locale)
	}
	clock := helpers.FormatTimeLabel(b.EffectiveTime(), locale)
	address := b.Area + " - " + b.FullAddress

	if locale == helpers.LocaleArabic {
		return fmt.Sprintf("مرحباً %s، تم تأكيد حجزك لدى فاست تراك واش 🚗✨\n\n"+
			"التاريخ: %s\n"+
			"الوقت: %s\n"+
			"العنوان: %s\n"+
			"نوع السيارة: %s\n\n"+
			"شكراً لاختيارك فاست تراك واش!",
			b.CustomerName, date, clock, address, b.CarType)
	}
	return fmt.Sprintf("Hello %s, your Fast Track Wash booking is confirmed 🚗✨\n\n"+
		"Date: %s\n"+
		"Time: %s\n"+
		"Address: %s\n"+
		"Car Type: %s\n\n"+
		"Thank you for choosing Fast Track Wash!",
		b.CustomerName, date, clock, address, b.CarType)
}

// ComposeDigest lists the day's bookings, already sorted by the caller.
func ComposeDigest(day time.Time, bookings []*models.Booking, locale string) string {
	locale = helpers.NormalizeLocale(locale)
	var sb strings.Builder
	count := fmt.Sprintf("%d", len(bookings))
	if locale == helpers.LocaleArabic {
		fmt.Fprintf(&sb, "📋 حجوزات فاست تراك واش ليوم %s (%s)\n", helpers.FormatDate(day, locale), helpers.LocalizeDigits(count, locale))
	} else {
		fmt.Fprintf(&sb, "📋 Fast Track Wash bookings for %s (%s)\n", helpers.FormatDate(day, locale), count)
	}
	for i, b := range bookings {
		line := fmt.Sprintf("\n%d. %s | %s | %s | %s | %s",
			i+1, b.EffectiveTime(), b.CustomerName, b.Area, b.CarType, b.Status)
		if b.Service != nil {
			line += " | " + b.Service.Name(locale)
		}
		sb.WriteString(line)
	}
	return sb.String()
}
