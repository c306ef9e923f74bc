package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ujang@warga.com"))
	assert.NoError(t, ValidateEmail("  Admin@Desu.com "))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("ujang"))
	assert.Error(t, ValidateEmail("ujang@warga"))
	assert.Error(t, ValidateEmail("uj ang@warga.com"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("password123"))
	assert.Error(t, ValidatePassword("pass1"))
	// состав символов не проверяется
	assert.NoError(t, ValidatePassword("passwordonly"))
	assert.NoError(t, ValidatePassword("1234567890"))
	// длина считается в символах, а не в байтах
	assert.Error(t, ValidatePassword("пароль1"))
	assert.NoError(t, ValidatePassword("пароль12"))
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone(""))
	assert.NoError(t, ValidatePhone("+62 812-3456-7890"))
	assert.Error(t, ValidatePhone("12345"))
	assert.Error(t, ValidatePhone("call me"))
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, ValidateCoordinates(-6.2088, 106.8456))
	assert.Error(t, ValidateCoordinates(91, 0))
	assert.Error(t, ValidateCoordinates(0, -181))
	assert.Error(t, ValidateCoordinates(math.NaN(), 0))
	assert.Error(t, ValidateCoordinates(0, math.Inf(1)))
}

func TestValidateReportTitle(t *testing.T) {
	assert.NoError(t, ValidateReportTitle("Lampu Jalan Mati"))
	assert.Error(t, ValidateReportTitle("   "))
	assert.Error(t, ValidateReportTitle("ab"))
}

func TestValidateBaseURL(t *testing.T) {
	assert.NoError(t, ValidateBaseURL("https://lapor.example.com/api"))
	assert.NoError(t, ValidateBaseURL("http://localhost:5000/api"))
	assert.Error(t, ValidateBaseURL(""))
	assert.Error(t, ValidateBaseURL("ftp://example.com"))
	assert.Error(t, ValidateBaseURL("/api/v1"))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Siti Netizen"))
	assert.Error(t, ValidateName("S"))
	assert.Error(t, ValidateName(""))
}
