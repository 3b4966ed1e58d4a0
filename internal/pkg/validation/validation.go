package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Names: letters, spaces, dots, hyphens, apostrophes.
var fullnameRe = regexp.MustCompile(`^[A-Za-z\s.\-']+$`)

// Indian mobile: optional +91/0 prefix, 10 digits starting 6-9.
var mobileRe = regexp.MustCompile(`^(?:\+91|0)?[6-9][0-9]{9}$`)

// PAN: five letters, four digits, one letter.
var panRe = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

var aadhaarRe = regexp.MustCompile(`^[0-9]{12}$`)

var pincodeRe = regexp.MustCompile(`^[1-9][0-9]{5}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword requires at least 8 characters with a letter, a digit and a special character.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

func IsValidFullname(fullname string) bool {
	return fullname != "" && fullnameRe.MatchString(fullname)
}

func IsValidMobile(mobile string) bool {
	return mobileRe.MatchString(NormalizeMobile(mobile))
}

// NormalizeMobile strips spaces and dashes.
func NormalizeMobile(mobile string) string {
	r := strings.NewReplacer(" ", "", "-", "")
	return r.Replace(strings.TrimSpace(mobile))
}

// NormalizePAN upper-cases and trims a PAN.
func NormalizePAN(pan string) string {
	return strings.ToUpper(strings.TrimSpace(pan))
}

func IsValidPAN(pan string) bool {
	return panRe.MatchString(NormalizePAN(pan))
}

// NormalizeAadhaar strips the spaces Aadhaar numbers are usually printed with.
func NormalizeAadhaar(aadhaar string) string {
	return strings.ReplaceAll(strings.TrimSpace(aadhaar), " ", "")
}

func IsValidAadhaar(aadhaar string) bool {
	return aadhaarRe.MatchString(NormalizeAadhaar(aadhaar))
}

func IsValidPincode(pin string) bool {
	return pincodeRe.MatchString(strings.TrimSpace(pin))
}
