package helpers

import (
	"strings"
	"time"
)

const (
	LocaleEnglish = "en"
	LocaleArabic  = "ar"

	slotLayout = "03:04 PM"
	// First and last bookable hour, inclusive.
	firstSlotHour = 8
	lastSlotHour  = 18
)

// KuwaitTime is Arabia Standard Time. Kuwait has no daylight saving, so a fixed zone
// avoids depending on the host's tzdata.
var KuwaitTime = time.FixedZone("AST", 3*60*60)

const DateLayout = "2006-01-02"

var clockLayouts = []string{"03:04 PM", "3:04 PM", "03:04PM", "3:04PM", "15:04"}

// TimeSlots are the hourly booking slots offered to customers.
var TimeSlots = func() []string {
	slots := make([]string, 0, lastSlotHour-firstSlotHour+1)
	for h := firstSlotHour; h <= lastSlotHour; h++ {
		slots = append(slots, time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format(slotLayout))
	}
	return slots
}()

var CarTypes = map[string][]string{
	LocaleEnglish: {
		"Sedan", "SUV", "Hatchback", "Coupe", "Pickup Truck", "Van", "Luxury Car", "Sports Car",
	},
	LocaleArabic: {
		"سيدان", "دفع رباعي", "هاتشباك", "كوبيه", "بيك أب", "فان", "سيارة فاخرة", "سيارة رياضية",
	},
}

var Areas = map[string][]string{
	LocaleEnglish: {
		"Kuwait City", "Hawalli", "Farwaniya", "Mubarak Al-Kabeer", "Ahmadi", "Jahra", "Salmiya",
		"Mangaf", "Fahaheel", "Mahboula", "Fintas", "Sabah Al-Salem", "Rumaithiya", "Bayan",
		"Mishref", "Salwa",
	},
	LocaleArabic: {
		"مدينة الكويت", "حولي", "الفروانية", "مبارك الكبير", "الأحمدي", "الجهراء", "السالمية",
		"المنقف", "الفحيحيل", "المهبولة", "الفنطاس", "صباح السالم", "الرميثية", "بيان",
		"مشرف", "سلوى",
	},
}

// BookingOptions is what the booking form needs to render its selects.
type BookingOptions struct {
	Locale    string   `json:"locale"`
	TimeSlots []string `json:"time_slots"`
	Areas     []string `json:"areas"`
	CarTypes  []string `json:"car_types"`
}

func OptionsFor(locale string) BookingOptions {
	locale = NormalizeLocale(locale)
	return BookingOptions{
		Locale:    locale,
		TimeSlots: TimeSlots,
		Areas:     Areas[locale],
		CarTypes:  CarTypes[locale],
	}
}

func IsArea(s string) bool {
	return inLocaleLists(Areas, s)
}

func IsCarType(s string) bool {
	return inLocaleLists(CarTypes, s)
}

func inLocaleLists(lists map[string][]string, s string) bool {
	s = strings.TrimSpace(s)
	for _, list := range lists {
		for _, v := range list {
			if v == s {
				return true
			}
		}
	}
	return false
}

// ParseClock accepts "3:00 PM", "03:00 PM" or 24h "15:00".
func ParseClock(s string) (time.Time, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatClock renders a clock value in the slot label format, e.g. "03:30 PM".
func FormatClock(t time.Time) string {
	return t.Format(slotLayout)
}

// NormalizeTimeSlot maps any accepted clock spelling of a slot onto its canonical label.
func NormalizeTimeSlot(s string) (string, bool) {
	t, ok := ParseClock(s)
	if !ok || t.Minute() != 0 || t.Hour() < firstSlotHour || t.Hour() > lastSlotHour {
		return "", false
	}
	return FormatClock(t), true
}

func IsTimeSlot(s string) bool {
	_, ok := NormalizeTimeSlot(s)
	return ok
}
