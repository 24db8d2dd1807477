package auth

import (
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "HealthAI Diagnostics"

// GenerateTOTPSecret creates a new shared secret for the given account and
// returns the base32 secret plus the otpauth:// provisioning URI used to
// render an enrollment QR code client-side.
func GenerateTOTPSecret(username string) (secret, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: username,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// VerifyTOTPCode checks a 6-digit code against the shared secret for the
// current time window.
func VerifyTOTPCode(code, secret string) bool {
	return totp.Validate(code, secret)
}
