package cmee

import (
	"errors"
	"fmt"
	"net/url"
)

// Step names one call of the login, alarm, device, logout sequence.
type Step string

const (
	StepLogin      Step = "login"
	StepAlarmData  Step = "alarm_data"
	StepDeviceData Step = "device_data"
	StepLogout     Step = "logout"
)

var (
	// ErrNoToken means the login response carried no usable usermd5.
	// It is not fatal: the cycle continues with an empty token.
	ErrNoToken = errors.New("no usermd5 session token in login response")

	// ErrNoRows means the device data body has no rows collection.
	ErrNoRows = errors.New("device data has no rows collection")
)

// StepError ties a failure to the step of the cycle that produced it.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepErr(step Step, err error) error {
	return &StepError{Step: step, Err: err}
}

// redact drops the request URL from transport errors.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
