package natspub_test

import (
	"context"
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"cmee-tracker/internal/config"
	"cmee-tracker/internal/device"
	"cmee-tracker/internal/natspub"
)

var _ = Describe("Publisher", func() {
	var rec device.Record

	BeforeEach(func() {
		batt := 64
		rec = device.Record{
			HostName: "Ben X6 Watch",
			DevID:    "cmee_w2",
			GPS:      [2]float64{51.9, 4.5},
			Battery:  &batt,
			Attributes: device.Attributes{
				Status:          device.StatusOnline,
				Location:        "Park | North",
				PositioningTime: "2024-01-02T04:00:00Z",
			},
		}
	})

	It("builds one subject per watch", func() {
		p := natspub.New(config.NATSConfig{Subject: "cmee.position"}, "cmee_tracker", nil)
		Expect(p.Subject("cmee_w2")).To(Equal("cmee.position.cmee_w2"))
	})

	It("names the connection after the tracker instance", func() {
		Expect(natspub.New(config.NATSConfig{}, "family_watches", nil).ConnectionName()).To(Equal("family_watches"))
		Expect(natspub.New(config.NATSConfig{}, "", nil).ConnectionName()).To(Equal("cmee-tracker"))
	})

	It("converts a record into a position message", func() {
		serverTime := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)
		pos := natspub.NewPosition(rec, serverTime)
		Expect(pos.DeviceID).To(Equal("cmee_w2"))
		Expect(pos.Latitude).To(Equal(51.9))
		Expect(pos.Longitude).To(Equal(4.5))
		Expect(pos.Accuracy).To(BeNil())
		Expect(pos.Battery).To(HaveValue(Equal(64)))

		raw, err := json.Marshal(pos)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"accuracy":null`))
		Expect(string(raw)).To(ContainSubstring(`"location":"Park | North"`))
		Expect(string(raw)).To(ContainSubstring(`"serverTime":"2024-01-03T09:00:00Z"`))
	})

	It("refuses to publish before Connect", func() {
		p := natspub.New(config.NATSConfig{Subject: "cmee.position"}, "cmee_tracker", nil)
		Expect(p.Publish(context.Background(), []device.Record{rec})).To(MatchError(ContainSubstring("not connected")))
	})
})
