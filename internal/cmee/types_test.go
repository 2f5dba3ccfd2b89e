package cmee_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"cmee-tracker/internal/cmee"
)

var _ = Describe("ParseToken", func() {
	DescribeTable("reads usermd5",
		func(body string, expected string) {
			token, err := cmee.ParseToken([]byte(body))
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal(expected))
		},
		Entry("string", `{"usermd5":"abc123","result":true}`, "abc123"),
		Entry("number", `{"usermd5":12345}`, "12345"),
		Entry("empty string", `{"usermd5":""}`, ""),
	)

	DescribeTable("reports a missing token",
		func(body string) {
			token, err := cmee.ParseToken([]byte(body))
			Expect(errors.Is(err, cmee.ErrNoToken)).To(BeTrue())
			Expect(token).To(BeEmpty())
		},
		Entry("absent key", `{"result":false}`),
		Entry("null", `{"usermd5":null}`),
		Entry("object", `{"usermd5":{"v":1}}`),
		Entry("not JSON", `<html>login failed</html>`),
		Entry("empty body", ``),
	)
})

var _ = Describe("DecodeDeviceData", func() {
	It("decodes rows", func() {
		data, err := cmee.DecodeDeviceData([]byte(`{"rows":[{"mid":"1","lt":1.5}]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(*data.Rows).To(HaveLen(1))
		Expect(string((*data.Rows)[0].MID)).To(Equal(`"1"`))
		Expect(string((*data.Rows)[0].LT)).To(Equal(`1.5`))
		Expect((*data.Rows)[0].OV).To(BeEmpty())
	})

	It("accepts an empty rows collection", func() {
		data, err := cmee.DecodeDeviceData([]byte(`{"rows":[]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(*data.Rows).To(BeEmpty())
	})

	It("fails without rows", func() {
		_, err := cmee.DecodeDeviceData([]byte(`{}`))
		Expect(err).To(MatchError(cmee.ErrNoRows))
	})

	It("fails on a null rows value", func() {
		_, err := cmee.DecodeDeviceData([]byte(`{"rows":null}`))
		Expect(err).To(MatchError(cmee.ErrNoRows))
	})

	It("fails on invalid JSON", func() {
		_, err := cmee.DecodeDeviceData([]byte(`{"rows":`))
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, cmee.ErrNoRows)).To(BeFalse())
	})
})
