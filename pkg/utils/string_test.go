package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		Expect(Truncate("this is a long string", 10)).To(Equal("this is a ..."))
	})

	It("counts runes, not bytes", func() {
		Expect(Truncate("다음 주 화요일에 부산에 가요", 4)).To(Equal("다음 주..."))
	})
})

var _ = Describe("Prefix", func() {
	It("keeps short strings intact", func() {
		Expect(Prefix("Did the user?", 40)).To(Equal("Did the user?"))
	})

	It("cuts at a rune boundary without an ellipsis", func() {
		Expect(Prefix("사용자가 언제 출발하나요?", 3)).To(Equal("사용자"))
	})
})
