package normalize_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"cmee-tracker/internal/cmee"
	"cmee-tracker/internal/device"
	"cmee-tracker/internal/normalize"
	"cmee-tracker/internal/normalize/normalizefakes"
)

const fullRow = `{
	"mid": "AB 12#",
	"sid": "S-1",
	"obn": "Anna",
	"hn": "x5",
	"tt": 1,
	"lt": "52.3702",
	"lo": 4.8952,
	"gt": "2024-01-02 20:00:00",
	"rt": "2024-01-02 16:00:00",
	"ov": "\"gps\":5,\"batt\":80,\"inrn\":\"Home\",\"inrn1\":\"Kitchen\""
}`

var _ = Describe("Normalizer", func() {
	var (
		fakeClock *normalizefakes.FakeClock
		n         *normalize.Normalizer
		now       time.Time
	)

	BeforeEach(func() {
		now = time.Date(2024, 1, 3, 9, 15, 0, 0, time.UTC)
		fakeClock = &normalizefakes.FakeClock{}
		fakeClock.NowReturns(now)
		n = normalize.NewWithClock(time.UTC, fakeClock, nil)
	})

	It("maps a complete row", func() {
		records, warnings, err := n.Normalize([]byte(`{"rows":[` + fullRow + `]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(warnings).To(BeEmpty())
		Expect(records).To(HaveLen(1))

		rec := records[0]
		Expect(rec.DevID).To(Equal("cmee_ab-12"))
		Expect(rec.HostName).To(Equal("Anna X5 Watch"))
		Expect(rec.GPS).To(Equal([2]float64{52.3702, 4.8952}))
		Expect(rec.GPSAccuracy).To(HaveValue(Equal(5)))
		Expect(rec.Battery).To(HaveValue(Equal(80)))
		Expect(rec.SourceType).To(Equal(device.SourceTypeGPS))
		Expect(rec.Icon).To(Equal(device.Icon))
		Expect(rec.Attributes).To(Equal(device.Attributes{
			LastUpdated:     "2024-01-03T09:15:00Z",
			WatchID:         "AB 12#",
			WatchSID:        "S-1",
			Status:          device.StatusOnline,
			Location:        "Home | Kitchen",
			PositioningTime: "2024-01-02T04:00:00Z",
			ReceptionTime:   "2024-01-02T08:00:00Z",
		}))
		Expect(fakeClock.NowCallCount()).To(Equal(1))
	})

	It("returns an empty list for empty rows", func() {
		records, warnings, err := n.Normalize([]byte(`{"rows":[]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(warnings).To(BeEmpty())
		Expect(records).NotTo(BeNil())
		Expect(records).To(BeEmpty())
	})

	It("fails without a rows collection", func() {
		_, _, err := n.Normalize([]byte(`{"total":0}`))
		Expect(errors.Is(err, cmee.ErrNoRows)).To(BeTrue())
	})

	It("fails on a body that is not JSON", func() {
		_, _, err := n.Normalize([]byte(`<html>`))
		Expect(err).To(HaveOccurred())
	})

	It("keeps row order", func() {
		body := `{"rows":[
			{"mid":"b","lt":1,"lo":2,"ov":"gps:1,batt:2"},
			{"mid":"a","lt":3,"lo":4,"ov":"gps:1,batt:2"}
		]}`
		records, _, err := n.Normalize([]byte(body))
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].DevID).To(Equal("cmee_b"))
		Expect(records[1].DevID).To(Equal("cmee_a"))
	})

	It("skips rows without a watch id", func() {
		body := `{"rows":[{"lt":1,"lo":2},` + fullRow + `]}`
		records, warnings, err := n.Normalize([]byte(body))
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(warnings).To(ContainElement(SatisfyAll(
			HaveField("Row", 0),
			HaveField("Field", "mid"),
			HaveField("Skipped", true),
		)))
	})

	It("skips rows whose watch id has no usable characters", func() {
		body := `{"rows":[{"mid":"###","lt":1,"lo":2},{"mid":"#!?","lt":3,"lo":4},` + fullRow + `]}`
		records, warnings, err := n.Normalize([]byte(body))
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].DevID).To(Equal("cmee_ab-12"))
		Expect(warnings).To(HaveLen(2))
		for _, w := range warnings {
			Expect(w.Field).To(Equal("mid"))
			Expect(w.Skipped).To(BeTrue())
			Expect(errors.Is(w, normalize.ErrInvalid)).To(BeTrue())
		}
	})

	It("skips rows with unusable coordinates", func() {
		records, warnings, err := n.Normalize([]byte(`{"rows":[{"mid":"x","lt":"north","lo":2}]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
		Expect(warnings).To(HaveLen(1))
		Expect(warnings[0].DeviceID).To(Equal("cmee_x"))
		Expect(errors.Is(warnings[0], normalize.ErrInvalid)).To(BeTrue())
	})

	It("defaults missing optional fields", func() {
		records, warnings, err := n.Normalize([]byte(`{"rows":[{"mid":"x","lt":1,"lo":2}]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))

		rec := records[0]
		Expect(rec.GPSAccuracy).To(BeNil())
		Expect(rec.Battery).To(BeNil())
		Expect(rec.Attributes.Status).To(Equal(device.Unknown))
		Expect(rec.Attributes.Location).To(Equal(device.Unknown))

		fields := make([]string, 0, len(warnings))
		for _, w := range warnings {
			Expect(w.Skipped).To(BeFalse())
			Expect(w.DeviceID).To(Equal("cmee_x"))
			fields = append(fields, w.Field)
		}
		Expect(fields).To(ContainElements("obn", "hn", "ov", "gt", "rt"))
	})

	It("keeps an unparseable timestamp", func() {
		body := `{"rows":[{"mid":"x","lt":1,"lo":2,"gt":"not-a-date","rt":"2024-01-02 16:00:00","ov":"gps:1,batt:2"}]}`
		records, warnings, err := n.Normalize([]byte(body))
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].Attributes.PositioningTime).To(Equal("not-a-date"))
		Expect(records[0].Attributes.ReceptionTime).To(Equal("2024-01-02T08:00:00Z"))
		Expect(warnings).To(ContainElement(HaveField("Field", "gt")))
	})

	It("reads bare-key metadata", func() {
		body := `{"rows":[{"mid":"x","lt":1,"lo":2,"tt":0,"ov":"gps:5,batt:80"}]}`
		records, _, err := n.Normalize([]byte(body))
		Expect(err).NotTo(HaveOccurred())
		Expect(records[0].GPSAccuracy).To(HaveValue(Equal(5)))
		Expect(records[0].Battery).To(HaveValue(Equal(80)))
		Expect(records[0].Attributes.Status).To(Equal(device.StatusOffline))
	})

	It("renders last_updated in the configured zone", func() {
		loc := time.FixedZone("UTC+1", 60*60)
		n = normalize.NewWithClock(loc, fakeClock, nil)
		records, _ := n.NormalizeRows([]cmee.RawRow{{
			MID: []byte(`"x"`),
			LT:  []byte(`1`),
			LO:  []byte(`2`),
		}})
		Expect(records).To(HaveLen(1))
		Expect(records[0].Attributes.LastUpdated).To(Equal("2024-01-03T10:15:00+01:00"))
	})
})
