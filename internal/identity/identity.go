// Package identity provides sender-identity parsing primitives: cédula
// and employee-code extraction from free text, and phone formatting for
// messaging-platform sender IDs.
package identity

import (
	"regexp"
	"strings"
)

// A cédula holds exactly 11 digits, rendered 3-7-1.
const cedulaDigits = 11

var (
	digitPattern = regexp.MustCompile(`\d`)
	codePattern  = regexp.MustCompile(`\b(\d{3,})\b`)
)

// ExtractCedula scans text for at least 11 digits and returns the first
// 11 formatted as a cédula (XXX-XXXXXXX-X). Returns false when the text
// does not contain enough digits.
func ExtractCedula(text string) (string, bool) {
	digits := digitPattern.FindAllString(text, -1)
	if len(digits) < cedulaDigits {
		return "", false
	}
	raw := strings.Join(digits[:cedulaDigits], "")
	return raw[:3] + "-" + raw[3:10] + "-" + raw[10:], true
}

// ExtractEmployeeCode returns the first token of three or more
// consecutive digits in text.
func ExtractEmployeeCode(text string) (string, bool) {
	match := codePattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// DisplayPhone derives a human-readable phone number from a
// messaging-platform sender ID. The platform suffix is stripped, a
// leading country-code 1 is removed when it leaves 10 digits, and the
// result is grouped 3-3-4. Anything that doesn't end up as 10 digits is
// returned as-is.
func DisplayPhone(senderID string) string {
	raw := senderID
	if at := strings.Index(raw, "@"); at >= 0 {
		raw = raw[:at]
	}
	if strings.HasPrefix(raw, "1") && len(raw) == 11 {
		raw = raw[1:]
	}
	if len(raw) != 10 {
		return raw
	}
	return raw[:3] + "-" + raw[3:6] + "-" + raw[6:]
}
