package logger

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// phoneRegex matches the phone shapes CRM exports carry: 8+ digits with
// optional separators and country prefix.
var phoneRegex = regexp.MustCompile(`\+?\d[\d ()./-]{7,}\d`)

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" -> "jo***@example.com"; local parts of two or
// fewer characters are fully masked.
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// RedactPhone keeps only the last two digits of a phone number.
func RedactPhone(phone string) string {
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits <= 2 {
		return "***"
	}
	trimmed := strings.TrimLeft(phone, "+")
	return "***" + trimmed[len(trimmed)-2:]
}

func redactPIIValue(key, val string) string {
	key = strings.ToLower(key)
	if strings.Contains(key, "email") || strings.Contains(key, "correo") {
		return RedactEmail(val)
	}
	if strings.Contains(key, "phone") || strings.Contains(key, "telefono") || strings.Contains(key, "mobile") {
		return RedactPhone(val)
	}
	val = emailRegex.ReplaceAllStringFunc(val, RedactEmail)
	return phoneRegex.ReplaceAllStringFunc(val, RedactPhone)
}
