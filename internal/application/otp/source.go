package otp

import (
	"crypto/rand"
	"math/big"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// RandomSource draws integers uniformly from [0, n).
type RandomSource interface {
	Int63n(n int64) (int64, error)
}

type cryptoSource struct{}

func (cryptoSource) Int63n(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

// CryptoRandom draws from crypto/rand.
var CryptoRandom RandomSource = cryptoSource{}
