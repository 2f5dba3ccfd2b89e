package state_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"cmee-tracker/internal/device"
	"cmee-tracker/internal/state"
	"cmee-tracker/internal/tracker"
)

var _ = Describe("State", func() {
	var ok tracker.Summary

	BeforeEach(func() {
		state.Reset()
		ok = tracker.Summary{
			CycleID:   "c1",
			StartTime: time.Unix(1000, 0),
			Devices:   []device.Record{{DevID: "cmee_a"}},
		}
	})

	It("stores a successful cycle", func() {
		state.Update(ok)
		s := state.Get()
		Expect(s.Latest.CycleID).To(Equal("c1"))
		Expect(s.Devices).To(HaveLen(1))
		Expect(s.LastSuccess).To(Equal(time.Unix(1000, 0)))
		Expect(s.Cycles).To(Equal(1))
		Expect(s.Failures).To(BeZero())
	})

	It("keeps the previous devices after a failure", func() {
		state.Update(ok)
		state.Update(tracker.Summary{CycleID: "c2", Errors: []string{"logout: reset by peer"}})

		s := state.Get()
		Expect(s.Latest.CycleID).To(Equal("c2"))
		Expect(s.Devices).To(HaveLen(1))
		Expect(s.Devices[0].DevID).To(Equal("cmee_a"))
		Expect(s.LastSuccess).To(Equal(time.Unix(1000, 0)))
		Expect(s.Cycles).To(Equal(2))
		Expect(s.Failures).To(Equal(1))
	})

	It("replaces devices with an empty successful list", func() {
		state.Update(ok)
		state.Update(tracker.Summary{CycleID: "c3", Devices: []device.Record{}})
		Expect(state.Get().Devices).To(BeEmpty())
	})

	It("returns a copy", func() {
		state.Update(ok)
		s := state.Get()
		s.Devices[0].DevID = "changed"
		Expect(state.Get().Devices[0].DevID).To(Equal("cmee_a"))
	})
})
