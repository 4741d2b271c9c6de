package logger_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/reportkit/pkg/catalog"
	"github.com/papercomputeco/reportkit/pkg/email"
	"github.com/papercomputeco/reportkit/pkg/logger"
	"github.com/papercomputeco/reportkit/pkg/session"
	"github.com/papercomputeco/reportkit/pkg/storage/inmemory"
	"github.com/papercomputeco/reportkit/pkg/synth"
)

// jsonLines decodes one JSON object per non-empty line.
func jsonLines(data []byte) []map[string]any {
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var m map[string]any
		Expect(json.Unmarshal([]byte(line), &m)).To(Succeed(), line)
		out = append(out, m)
	}
	return out
}

func messages(entries []map[string]any) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i], _ = e["msg"].(string)
	}
	return out
}

func newSession(l *slog.Logger) *session.Session {
	s := session.New(
		session.WithLogger(l),
		session.WithSynthesizer(synth.New(synth.WithRand(rand.New(rand.NewPCG(1, 2))))),
	)
	Expect(s.SelectMetric(catalog.Score)).To(Succeed())
	return s
}

var _ = Describe("New", func() {
	It("hides session debug output at the default level", func() {
		var buf bytes.Buffer
		s := newSession(logger.New(logger.WithWriter(&buf)))
		Expect(s.Generate()).To(Succeed())

		Expect(buf.String()).NotTo(ContainSubstring("generated report data"))
	})

	It("shows session debug output with WithDebug", func() {
		var buf bytes.Buffer
		s := newSession(logger.New(logger.WithWriter(&buf), logger.WithDebug(true)))
		Expect(s.Generate()).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("generated report data"))
		Expect(buf.String()).To(ContainSubstring("records=100"))
	})

	It("writes saved-report events as JSON with WithJSON", func() {
		var buf bytes.Buffer
		s := newSession(logger.New(logger.WithWriter(&buf), logger.WithJSON(true)))
		s.SetName("Weekly scores")

		report, err := s.Save(context.Background(), inmemory.NewDriver())
		Expect(err).NotTo(HaveOccurred())

		entries := jsonLines(buf.Bytes())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0]).To(HaveKeyWithValue("msg", "saved report"))
		Expect(entries[0]).To(HaveKeyWithValue("id", report.ID))
		Expect(entries[0]).To(HaveKeyWithValue("name", "Weekly scores"))
		Expect(entries[0]).To(HaveKeyWithValue("level", "INFO"))
	})

	It("renders the pretty handler for terminals", func() {
		var buf bytes.Buffer
		s := newSession(logger.New(logger.WithWriter(&buf), logger.WithPretty(true)))
		_, err := s.Save(context.Background(), inmemory.NewDriver())
		Expect(err).NotTo(HaveOccurred())

		Expect(buf.String()).To(ContainSubstring("saved report"))
		Expect(strings.HasPrefix(strings.TrimSpace(buf.String()), "{")).To(BeFalse())
	})

	It("tees output across WithWriters", func() {
		var a, b bytes.Buffer
		l := logger.New(logger.WithWriters(&a, &b), logger.WithJSON(true))
		l.Info("starting relay server", "listen", ":3001")

		Expect(messages(jsonLines(a.Bytes()))).To(Equal([]string{"starting relay server"}))
		Expect(a.String()).To(Equal(b.String()))
	})

	It("adds the caller with WithSource", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithSource(true))
		l.Info("starting relay server")

		entries := jsonLines(buf.Bytes())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0]).To(HaveKey(slog.SourceKey))
	})
})

var _ = Describe("Multi", func() {
	It("pairs terminal output with a JSON log file", func() {
		var terminal bytes.Buffer
		path := filepath.Join(GinkgoT().TempDir(), "relay.log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		Expect(err).NotTo(HaveOccurred())

		l := logger.Multi(
			logger.New(logger.WithWriter(&terminal), logger.WithPretty(true)),
			logger.New(logger.WithWriter(f), logger.WithJSON(true), logger.WithDebug(true)),
		)

		l.Debug("sending report email", "report", "Weekly")
		l.With("component", "relay").Info("report email sent", "message_id", "msg_1")
		Expect(f.Close()).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		entries := jsonLines(data)
		Expect(messages(entries)).To(Equal([]string{"sending report email", "report email sent"}))
		Expect(entries[1]).To(HaveKeyWithValue("component", "relay"))

		Expect(terminal.String()).To(ContainSubstring("report email sent"))
		Expect(terminal.String()).NotTo(ContainSubstring("sending report email"))
	})

	It("keeps groups for every handler", func() {
		var a, b bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(&a), logger.WithJSON(true)),
			logger.New(logger.WithWriter(&b), logger.WithJSON(true)),
		).WithGroup("request")
		l.Info("handled", "path", "/api/send-report")

		for _, buf := range []*bytes.Buffer{&a, &b} {
			entries := jsonLines(buf.Bytes())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0]).To(HaveKeyWithValue("request", HaveKeyWithValue("path", "/api/send-report")))
		}
	})
})

var _ = Describe("Nop", func() {
	It("is the quiet default for components", func() {
		l := logger.Nop()
		Expect(l.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())

		client := email.NewClient("http://127.0.0.1:1", email.WithLogger(l), email.WithSimulateOnFailure(true))
		resp, err := client.Send(context.Background(), email.Request{Email: "a@example.com", ReportName: "R", CSVContent: "id"})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Simulated).To(BeTrue())
	})
})

var _ = Describe("IsTerminal", func() {
	It("reports false for a regular file", func() {
		f, err := os.CreateTemp(GinkgoT().TempDir(), "logger-tty-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(f.Close)

		Expect(logger.IsTerminal(f)).To(BeFalse())
	})
})
