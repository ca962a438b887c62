package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// DefaultOTPWindow is the validity window for a freshly issued passcode.
const DefaultOTPWindow = 10 * time.Minute

const otpSpace = 1000000 // 6 decimal digits, leading zeros allowed

// OTPIssuer generates time-stamped one-time passcodes for email verification.
type OTPIssuer struct {
	window time.Duration
	now    func() time.Time
	random func() (string, error)
}

// OTPOption customises the issuer, primarily for tests.
type OTPOption func(*OTPIssuer)

// WithOTPWindow overrides the validity window.
func WithOTPWindow(d time.Duration) OTPOption {
	return func(i *OTPIssuer) {
		if d > 0 {
			i.window = d
		}
	}
}

// WithOTPClock injects a custom time source.
func WithOTPClock(clock func() time.Time) OTPOption {
	return func(i *OTPIssuer) {
		if clock != nil {
			i.now = clock
		}
	}
}

// WithOTPCodeSource replaces the random code generator.
func WithOTPCodeSource(fn func() (string, error)) OTPOption {
	return func(i *OTPIssuer) {
		if fn != nil {
			i.random = fn
		}
	}
}

// NewOTPIssuer constructs an issuer with the default 10-minute window.
func NewOTPIssuer(opts ...OTPOption) *OTPIssuer {
	issuer := &OTPIssuer{
		window: DefaultOTPWindow,
		now:    time.Now,
		random: randomCode,
	}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer
}

// Generate returns a fresh 6-digit code together with its absolute expiry.
func (i *OTPIssuer) Generate() (code string, expiresAt time.Time, err error) {
	code, err = i.random()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("otp: generate code: %w", err)
	}
	return code, i.now().Add(i.window), nil
}

// randomCode draws a uniformly distributed 6-digit decimal string from
// crypto/rand so codes cannot be predicted from issue timing.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpace))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
