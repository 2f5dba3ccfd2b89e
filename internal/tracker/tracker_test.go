package tracker_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"cmee-tracker/internal/cmee"
	"cmee-tracker/internal/cmee/cmeefakes"
	"cmee-tracker/internal/config"
	"cmee-tracker/internal/normalize/normalizefakes"
	"cmee-tracker/internal/tracker"
)

const deviceBody = `{"rows":[
	{"mid":"W1","sid":"s1","obn":"Anna","hn":"x5","tt":1,"lt":52.1,"lo":4.3,
	 "gt":"2024-01-02 20:00:00","rt":"2024-01-02 16:00:00","ov":"\"gps\":5,\"batt\":80"},
	{"mid":"W2","obn":"Ben","hn":"x6","tt":0,"lt":51.9,"lo":4.5,"ov":"gps:12,batt:34"}
]}`

var _ = Describe("Run", func() {
	var (
		fakeClient *cmeefakes.FakeClient
		fakeClock  *normalizefakes.FakeClock
		opts       tracker.Options
		ctx        context.Context
	)

	BeforeEach(func() {
		fakeClient = &cmeefakes.FakeClient{}
		fakeClient.LoginReturns("tok-42", nil)
		fakeClient.FetchAlarmDataReturns([]byte(`{"rows":[]}`), nil)
		fakeClient.FetchDeviceDataReturns([]byte(deviceBody), nil)

		fakeClock = &normalizefakes.FakeClock{}
		fakeClock.NowReturns(time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC))

		cfg := config.Defaults()
		cfg.Username = "anna"
		cfg.Password = "secret"
		cfg.TimeZone = "UTC"

		opts = tracker.Options{
			Config:     cfg,
			Logger:     slog.New(slog.NewTextHandler(GinkgoWriter, nil)),
			Clock:      fakeClock,
			TestClient: fakeClient,
		}
		ctx = context.Background()
	})

	It("runs the sequence and returns devices", func() {
		summary, err := tracker.Run(ctx, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.OK()).To(BeTrue())
		Expect(summary.CycleID).NotTo(BeEmpty())
		Expect(summary.TokenAcquired).To(BeTrue())
		Expect(summary.Devices).To(HaveLen(2))
		Expect(summary.Devices[0].DevID).To(Equal("cmee_w1"))
		Expect(summary.Devices[1].DevID).To(Equal("cmee_w2"))
		Expect(summary.Devices[1].HostName).To(Equal("Ben X6 Watch"))

		Expect(fakeClient.LoginCallCount()).To(Equal(1))
		Expect(fakeClient.FetchAlarmDataCallCount()).To(Equal(1))
		_, token, startTime := fakeClient.FetchAlarmDataArgsForCall(0)
		Expect(token).To(Equal("tok-42"))
		Expect(startTime).To(Equal("2024-01-03 14:00:00"))

		Expect(fakeClient.FetchDeviceDataCallCount()).To(Equal(1))
		_, token = fakeClient.FetchDeviceDataArgsForCall(0)
		Expect(token).To(Equal("tok-42"))
		Expect(fakeClient.LogoutCallCount()).To(Equal(1))
	})

	It("calls the service in order", func() {
		var calls []string
		fakeClient.LoginCalls(func(context.Context) (string, error) {
			calls = append(calls, "login")
			return "tok", nil
		})
		fakeClient.FetchAlarmDataCalls(func(context.Context, string, string) ([]byte, error) {
			calls = append(calls, "alarm")
			return nil, nil
		})
		fakeClient.FetchDeviceDataCalls(func(context.Context, string) ([]byte, error) {
			calls = append(calls, "device")
			return []byte(`{"rows":[]}`), nil
		})
		fakeClient.LogoutCalls(func(context.Context) error {
			calls = append(calls, "logout")
			return nil
		})

		_, err := tracker.Run(ctx, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal([]string{"login", "alarm", "device", "logout"}))
	})

	It("continues with an empty token when login has none", func() {
		fakeClient.LoginReturns("", fmt.Errorf("%w: HTTP 401", cmee.ErrNoToken))

		summary, err := tracker.Run(ctx, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.TokenAcquired).To(BeFalse())
		Expect(summary.Warnings).NotTo(BeEmpty())
		Expect(summary.Devices).To(HaveLen(2))

		_, token, _ := fakeClient.FetchAlarmDataArgsForCall(0)
		Expect(token).To(BeEmpty())
		_, token = fakeClient.FetchDeviceDataArgsForCall(0)
		Expect(token).To(BeEmpty())
	})

	It("returns an empty list without error for empty rows", func() {
		fakeClient.FetchDeviceDataReturns([]byte(`{"rows":[]}`), nil)

		summary, err := tracker.Run(ctx, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.OK()).To(BeTrue())
		Expect(summary.Devices).NotTo(BeNil())
		Expect(summary.Devices).To(BeEmpty())
	})

	Context("when a step fails", func() {
		It("aborts on a login transport failure", func() {
			fakeClient.LoginReturns("", &cmee.StepError{Step: cmee.StepLogin, Err: errors.New("connection refused")})

			summary, err := tracker.Run(ctx, opts)
			Expect(err).To(HaveOccurred())
			Expect(summary.Devices).To(BeNil())
			Expect(summary.Errors).To(HaveLen(1))
			Expect(fakeClient.FetchAlarmDataCallCount()).To(Equal(0))
		})

		It("aborts on an alarm data failure", func() {
			fakeClient.FetchAlarmDataReturns(nil, &cmee.StepError{Step: cmee.StepAlarmData, Err: errors.New("timeout")})

			summary, err := tracker.Run(ctx, opts)
			Expect(err).To(HaveOccurred())
			Expect(summary.Devices).To(BeNil())
			Expect(fakeClient.FetchDeviceDataCallCount()).To(Equal(0))
		})

		It("aborts on a device data failure", func() {
			fakeClient.FetchDeviceDataReturns(nil, &cmee.StepError{Step: cmee.StepDeviceData, Err: errors.New("HTTP 502")})

			summary, err := tracker.Run(ctx, opts)
			Expect(err).To(HaveOccurred())
			Expect(summary.Devices).To(BeNil())
			Expect(fakeClient.LogoutCallCount()).To(Equal(0))
		})

		It("aborts when the device data has no rows", func() {
			fakeClient.FetchDeviceDataReturns([]byte(`{"total":0}`), nil)

			summary, err := tracker.Run(ctx, opts)
			Expect(errors.Is(err, cmee.ErrNoRows)).To(BeTrue())
			var stepErr *cmee.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(cmee.StepDeviceData))
			Expect(summary.Devices).To(BeNil())
		})

		It("aborts on a logout failure", func() {
			fakeClient.LogoutReturns(&cmee.StepError{Step: cmee.StepLogout, Err: errors.New("reset by peer")})

			summary, err := tracker.Run(ctx, opts)
			Expect(err).To(HaveOccurred())
			Expect(summary.OK()).To(BeFalse())
			Expect(summary.Devices).To(BeNil())
		})

		It("recovers from a panic", func() {
			fakeClient.FetchDeviceDataCalls(func(context.Context, string) ([]byte, error) {
				panic("boom")
			})

			summary, err := tracker.Run(ctx, opts)
			Expect(err).To(MatchError(ContainSubstring("boom")))
			Expect(summary.Devices).To(BeNil())
		})

		It("rejects an invalid config before calling the service", func() {
			opts.Config.Password = ""

			summary, err := tracker.Run(ctx, opts)
			Expect(err).To(MatchError(ContainSubstring("username and password are required")))
			Expect(summary.OK()).To(BeFalse())
			Expect(fakeClient.LoginCallCount()).To(Equal(0))
		})
	})

	It("assigns a new cycle id per run", func() {
		first, err := tracker.Run(ctx, opts)
		Expect(err).NotTo(HaveOccurred())
		second, err := tracker.Run(ctx, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.CycleID).NotTo(Equal(second.CycleID))
	})
})
