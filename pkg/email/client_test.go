package email_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/reportkit/pkg/email"
)

func sampleRequest() email.Request {
	return email.Request{
		Email:      "someone@example.com",
		ReportName: "Weekly Scores",
		CSVContent: "id,score\n\"user-1\",\"42\"",
		Summary: email.Summary{
			ReportName:  "Weekly Scores",
			RecordCount: 1,
			MetricCount: 1,
			Metrics:     []string{"Score"},
			GeneratedAt: time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
		},
	}
}

var _ = Describe("Client", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("posts the request as JSON and returns the relay response", func() {
		var got email.Request
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/api/send-report"))
			Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))
			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(body, &got)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"message":"Report sent successfully","messageId":"msg-1"}`))
		}))
		DeferCleanup(server.Close)

		resp, err := email.NewClient(server.URL + "/").Send(ctx, sampleRequest())
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Success).To(BeTrue())
		Expect(resp.MessageID).To(Equal("msg-1"))
		Expect(resp.Simulated).To(BeFalse())
		Expect(got.ReportName).To(Equal("Weekly Scores"))
		Expect(got.Summary.Metrics).To(Equal([]string{"Score"}))
	})

	It("turns success=false into an ExternalServiceError", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"success":false,"message":"Failed to send email","error":"smtp down"}`))
		}))
		DeferCleanup(server.Close)

		client := email.NewClient(server.URL, email.WithSimulateOnFailure(true))
		resp, err := client.Send(ctx, sampleRequest())

		var serviceErr *email.ExternalServiceError
		Expect(errors.As(err, &serviceErr)).To(BeTrue())
		Expect(serviceErr.Message).To(Equal("Failed to send email"))
		Expect(serviceErr.StatusCode).To(Equal(http.StatusInternalServerError))
		Expect(err.Error()).To(ContainSubstring("smtp down"))
		Expect(resp.Success).To(BeFalse())
	})

	Context("when the relay is unreachable", func() {
		var deadURL string

		BeforeEach(func() {
			server := httptest.NewServer(http.NotFoundHandler())
			deadURL = server.URL
			server.Close()
		})

		It("returns an ExternalServiceError by default", func() {
			resp, err := email.NewClient(deadURL).Send(ctx, sampleRequest())
			Expect(resp).To(BeNil())

			var serviceErr *email.ExternalServiceError
			Expect(errors.As(err, &serviceErr)).To(BeTrue())
			Expect(serviceErr.Err).To(HaveOccurred())
		})

		It("simulates success when asked to", func() {
			client := email.NewClient(deadURL, email.WithSimulateOnFailure(true))
			resp, err := client.Send(ctx, sampleRequest())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Success).To(BeTrue())
			Expect(resp.Simulated).To(BeTrue())
			Expect(resp.Message).To(Equal("Email sent successfully (simulated)"))
		})
	})

	It("treats a non-JSON body as a transport failure", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		}))
		DeferCleanup(server.Close)

		_, err := email.NewClient(server.URL).Send(ctx, sampleRequest())
		var serviceErr *email.ExternalServiceError
		Expect(errors.As(err, &serviceErr)).To(BeTrue())

		resp, err := email.NewClient(server.URL, email.WithSimulateOnFailure(true)).Send(ctx, sampleRequest())
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Simulated).To(BeTrue())
	})
})
