package greenapi

import "strings"

// DigitsOnly strips every non-digit character from a phone number.
func DigitsOnly(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

// FormatChatID normalizes a phone number into the gateway chat ID format
// (e.g. "919876543210@c.us"). Bare 10-digit numbers are assumed to be
// Indian and get the 91 country code. Returns "" for numbers too short
// to be dialable.
func FormatChatID(phone string) string {
	digits := DigitsOnly(phone)

	switch {
	case len(digits) == 0:
		return ""
	case len(digits) < 8:
		return ""
	case len(digits) < 10:
		// Missing country code, assume India
		digits = "91" + digits
	case len(digits) == 10:
		digits = "91" + digits
	case len(digits) > 15:
		// Malformed paste, keep the leading country code + subscriber part
		if strings.HasPrefix(digits, "91") {
			digits = digits[:12]
		} else {
			digits = digits[:15]
		}
	}

	return digits + "@c.us"
}

// ChatIDToMobile extracts the bare digit string from a chat ID.
func ChatIDToMobile(chatID string) string {
	return DigitsOnly(strings.TrimSuffix(chatID, "@c.us"))
}
