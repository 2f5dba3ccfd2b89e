package normalize

import "time"

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o normalizefakes/fake_clock.go . Clock

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (rc RealClock) Now() time.Time {
	return time.Now()
}
