package sqlitepath_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/reportkit/cmd/reportkit/sqlitepath"
)

var _ = Describe("ResolveSQLitePath", func() {
	var origHome, origCwd string

	BeforeEach(func() {
		origHome = os.Getenv("HOME")
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.Setenv("HOME", origHome)).To(Succeed())
		Expect(os.Chdir(origCwd)).To(Succeed())
	})

	It("prefers an explicit path", func() {
		path, err := sqlitepath.ResolveSQLitePath("/tmp/custom.sqlite", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.sqlite"))
	})

	It("places the database in the config dir override", func() {
		dir := GinkgoT().TempDir()

		path, err := sqlitepath.ResolveSQLitePath("", dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(dir, sqlitepath.FileName)))
	})

	It("uses ~/.reportkit when no local directory exists", func() {
		home := GinkgoT().TempDir()
		cwd := GinkgoT().TempDir()
		Expect(os.MkdirAll(filepath.Join(home, ".reportkit"), 0o755)).To(Succeed())
		Expect(os.Setenv("HOME", home)).To(Succeed())
		Expect(os.Chdir(cwd)).To(Succeed())

		path, err := sqlitepath.ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(home, ".reportkit", sqlitepath.FileName)))
	})

	It("fails without any .reportkit directory", func() {
		Expect(os.Setenv("HOME", GinkgoT().TempDir())).To(Succeed())
		Expect(os.Chdir(GinkgoT().TempDir())).To(Succeed())

		_, err := sqlitepath.ResolveSQLitePath("", "")
		Expect(err).To(MatchError(sqlitepath.ErrNoDotdir))
	})
})
