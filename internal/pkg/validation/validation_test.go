package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.com"))
	assert.False(t, IsValidEmail("a@b"))
	assert.False(t, IsValidEmail("a b@c.com"))
}

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("Secret#123"))
	assert.False(t, IsValidPassword("short1!"))
	assert.False(t, IsValidPassword("NoDigits!!"))
	assert.False(t, IsValidPassword("NoSpecial123"))
}

func TestIsValidMobile(t *testing.T) {
	assert.True(t, IsValidMobile("9876543210"))
	assert.True(t, IsValidMobile("+91 98765-43210"))
	assert.False(t, IsValidMobile("1234567890"))
	assert.False(t, IsValidMobile("98765"))
}

func TestIsValidPAN(t *testing.T) {
	assert.True(t, IsValidPAN("abcde1234f"))
	assert.Equal(t, "ABCDE1234F", NormalizePAN(" abcde1234f "))
	assert.False(t, IsValidPAN("ABCD1234F"))
}

func TestIsValidAadhaar(t *testing.T) {
	assert.True(t, IsValidAadhaar("1234 5678 9012"))
	assert.False(t, IsValidAadhaar("12345678901"))
}

func TestIsValidPincode(t *testing.T) {
	assert.True(t, IsValidPincode("400001"))
	assert.False(t, IsValidPincode("040001"))
}

func TestIsValidFullname(t *testing.T) {
	assert.True(t, IsValidFullname("R. K. O'Neil-Shah"))
	assert.False(t, IsValidFullname(""))
	assert.False(t, IsValidFullname("Robert'); DROP"))
}
