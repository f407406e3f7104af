package rsumcmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	rsumcmder "github.com/papercomputeco/rsum/cmd/rsum"
)

var _ = Describe("NewRsumCmd", func() {
	It("registers every subcommand", func() {
		cmd := rsumcmder.NewRsumCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("run", "serve", "config", "init", "version"))
	})

	It("defines the global flags", func() {
		cmd := rsumcmder.NewRsumCmd()
		Expect(cmd.PersistentFlags().Lookup("debug").Shorthand).To(Equal("d"))
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	It("rejects an unknown subcommand", func() {
		cmd := rsumcmder.NewRsumCmd()
		cmd.SetArgs([]string{"rewind"})
		Expect(cmd.Execute()).To(HaveOccurred())
	})
})
