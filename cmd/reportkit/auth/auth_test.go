package authcmder_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/reportkit/cmd/reportkit/auth"
	"github.com/papercomputeco/reportkit/pkg/credentials"
)

var _ = Describe("auth", func() {
	var (
		dir string
		out *bytes.Buffer
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		out = &bytes.Buffer{}
	})

	newCmd := func(stdin string, args ...string) *cobra.Command {
		cmd := authcmder.NewAuthCmd()
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(append(args, "--config-dir", dir))
		return cmd
	}

	stored := func() string {
		mgr, err := credentials.NewManager(dir)
		Expect(err).NotTo(HaveOccurred())
		key, err := mgr.GetKey(credentials.Resend)
		Expect(err).NotTo(HaveOccurred())
		return key
	}

	It("stores a piped key", func() {
		Expect(newCmd("  re_piped  \n", "resend").Execute()).To(Succeed())
		Expect(stored()).To(Equal("re_piped"))
		Expect(out.String()).To(ContainSubstring("RESEND_API_KEY"))
	})

	It("rejects an unsupported service", func() {
		err := newCmd("x\n", "openai").Execute()
		Expect(err).To(MatchError(ContainSubstring("unsupported service")))
	})

	It("requires a service", func() {
		err := newCmd("").Execute()
		Expect(err).To(MatchError(ContainSubstring("service argument required")))
	})

	It("rejects an empty key", func() {
		err := newCmd("   \n", "resend").Execute()
		Expect(err).To(MatchError("API key cannot be empty"))
	})

	It("lists and removes stored keys", func() {
		Expect(newCmd("re_1\n", "resend").Execute()).To(Succeed())

		out.Reset()
		Expect(newCmd("", "--list").Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("resend"))

		Expect(newCmd("", "--remove", "resend").Execute()).To(Succeed())
		Expect(stored()).To(BeEmpty())

		out.Reset()
		Expect(newCmd("", "--list").Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("No stored keys."))
	})
})
