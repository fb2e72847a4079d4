package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

const (
	CurrencyCode     = "KWD"
	currencySymbolAr = "د.ك."
	// Kuwaiti dinar has three minor digits (fils).
	currencyScale = 3

	arabicDecimalSep  = '٫'
	arabicThousandSep = '٬'
)

var supportedLocales = []language.Tag{language.English, language.Arabic}

var localeMatcher = language.NewMatcher(supportedLocales)

var arabicMonths = [...]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// NormalizeLocale folds anything that is not Arabic onto English.
func NormalizeLocale(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return LocaleEnglish
	}
	if base, _ := tag.Base(); base.String() == LocaleArabic {
		return LocaleArabic
	}
	return LocaleEnglish
}

// NegotiateLocale prefers an explicit ?locale= value and falls back to the Accept-Language header.
func NegotiateLocale(explicit, acceptLanguage string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return NormalizeLocale(explicit)
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LocaleEnglish
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No || idx != 1 {
		return LocaleEnglish
	}
	return LocaleArabic
}

// FormatCurrency renders a KWD amount with three decimals.
// English: "KWD 1,234.500". Arabic: "١٬٢٣٤٫٥٠٠ د.ك.".
func FormatCurrency(amount decimal.Decimal, locale string) string {
	fixed := amount.StringFixed(currencyScale)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	if NormalizeLocale(locale) == LocaleArabic {
		s := toArabicDigits(groupThousands(intPart, arabicThousandSep)) + string(arabicDecimalSep) + toArabicDigits(fracPart)
		if negative {
			s = "-" + s
		}
		return s + " " + currencySymbolAr
	}

	s := groupThousands(intPart, ',') + "." + fracPart
	if negative {
		return "-" + CurrencyCode + " " + s
	}
	return CurrencyCode + " " + s
}

// ParseCurrency reads back anything FormatCurrency produces in either locale.
func ParseCurrency(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(CurrencyCode, "", currencySymbolAr, "", "\u200f", "", "\u00a0", "").Replace(s)

	var b strings.Builder
	for _, r := range cleaned {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r >= '٠' && r <= '٩':
			b.WriteRune('0' + (r - '٠'))
		case r == arabicDecimalSep:
			b.WriteRune('.')
		case r == ',', r == arabicThousandSep, r == ' ':
		default:
			return decimal.Zero, fmt.Errorf("unexpected character %q in amount %q", r, s)
		}
	}
	if b.Len() == 0 {
		return decimal.Zero, fmt.Errorf("no amount in %q", s)
	}
	return decimal.NewFromString(b.String())
}

// FormatDate renders a calendar date with the month spelled out.
// English: "October 15, 2026". Arabic: "١٥ أكتوبر ٢٠٢٦".
func FormatDate(t time.Time, locale string) string {
	if NormalizeLocale(locale) == LocaleArabic {
		return toArabicDigits(fmt.Sprintf("%d %s %d", t.Day(), arabicMonths[t.Month()-1], t.Year()))
	}
	return t.Format("January 2, 2006")
}

// FormatTimeLabel localizes a slot label such as "03:00 PM".
func FormatTimeLabel(label, locale string) string {
	if NormalizeLocale(locale) != LocaleArabic {
		return label
	}
	r := strings.NewReplacer(" AM", " ص", " PM", " م")
	return toArabicDigits(r.Replace(label))
}

// LocalizeDigits swaps ASCII digits for Arabic-Indic ones when locale is Arabic.
func LocalizeDigits(s, locale string) string {
	if NormalizeLocale(locale) != LocaleArabic {
		return s
	}
	return toArabicDigits(s)
}

func toArabicDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune('٠' + (r - '0'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func groupThousands(digits string, sep rune) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteRune(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
