package crypto

import "golang.org/x/crypto/bcrypt"

// HashOTP returns a bcrypt hash of the supplied one-time passcode. Codes are
// short-lived, so the default cost keeps verification fast without storing
// plaintext codes at rest.
func HashOTP(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyOTP compares a stored OTP hash with the candidate code.
func VerifyOTP(hashedCode, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(code)) == nil
}
