package security

import (
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "DShop"

// GenerateTOTPSecret enrolls a user into TOTP 2FA and returns the shared
// secret plus the otpauth:// provisioning URI for authenticator apps.
func GenerateTOTPSecret(email string) (secret, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: email,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

func VerifyTOTP(secret, code string) bool {
	return totp.Validate(code, secret)
}
