package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"basegraph.app/lastseen/internal/model"
	"basegraph.app/lastseen/internal/report"
	"basegraph.app/lastseen/internal/service"
	"basegraph.app/lastseen/internal/slack"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/time/rate"
)

var _ = Describe("ReportService", func() {
	var (
		ctx     context.Context
		dir     string
		client  *mockSlackClient
		svc     service.ReportService
		opts    service.ReportOptions
		horizon time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		client = &mockSlackClient{}
		horizon = time.Unix(1_000, 0)

		services := service.NewServices(client,
			service.WithLimiter(rate.NewLimiter(rate.Inf, 1)),
			service.WithClock(func() time.Time { return time.Unix(1_700_000_000, 0) }),
		)
		svc = services.Reports()
		opts = service.ReportOptions{
			Horizon:    horizon,
			OutputPath: filepath.Join(dir, "last_logins.csv"),
		}

		client.listMembersFn = staticMembers(
			model.Member{ID: "U1", Name: "alice", Profile: model.Profile{Email: "alice@example.com"}},
			model.Member{ID: "U2", Name: "bob"},
			model.Member{ID: "B1", Name: "bot", IsBot: true},
		)
		client.accessLogsFn = servePages([]model.AccessLog{
			{UserID: "U1", Username: "alice", DateFirst: 1_699_999_000, DateLast: 1_700_000_000, Count: 2},
			{UserID: "B1", Username: "bot", DateFirst: 1_699_998_000, DateLast: 1_699_998_500, Count: 1},
		})
	})

	Describe("Run", func() {
		It("writes the last login report", func() {
			result, err := svc.Run(ctx, opts)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.RunID).NotTo(BeZero())
			Expect(result.RowsWritten).To(Equal(2))
			Expect(result.RawOutputPath).To(BeEmpty())
			Expect(result.Members.WithLogins()).To(Equal(1))

			rows, err := report.ReadCSV(opts.OutputPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))

			lastLogin, _ := rows[0].Get("last_login")
			Expect(lastLogin).To(Equal("2023-11-14T22:13:20Z"))
			email, _ := rows[0].Get("email")
			Expect(email).To(Equal("alice@example.com"))
			lastLogin, _ = rows[1].Get("last_login")
			Expect(lastLogin).To(Equal(report.NoLoginsPlaceholder))
		})

		It("dumps raw access log entries when asked", func() {
			opts.RawOutputPath = filepath.Join(dir, "raw_data.csv")

			result, err := svc.Run(ctx, opts)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.RawRowsWritten).To(Equal(2))

			rows, err := report.ReadCSV(opts.RawOutputPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			username, _ := rows[1].Get("username")
			Expect(username).To(Equal("bot"))
			dateLast, _ := rows[1].Get("date_last")
			Expect(dateLast).To(Equal(int64(1_699_998_500)))
		})

		It("skips the raw dump when no entries fall inside the horizon", func() {
			client.accessLogsFn = servePages()
			opts.RawOutputPath = filepath.Join(dir, "raw_data.csv")

			result, err := svc.Run(ctx, opts)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.RawOutputPath).To(BeEmpty())
			_, statErr := os.Stat(opts.RawOutputPath)
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})

		It("writes nothing when the access log walk fails", func() {
			client.accessLogsFn = func(context.Context, slack.AccessLogQuery) (*slack.AccessLogPage, error) {
				return nil, &slack.APIError{Method: slack.MethodAccessLogs, Code: "not_allowed_token_type"}
			}

			result, err := svc.Run(ctx, opts)

			Expect(result).To(BeNil())
			Expect(slack.IsAPIError(err, "not_allowed_token_type")).To(BeTrue())
			_, statErr := os.Stat(opts.OutputPath)
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})

		It("writes neither file when the raw dump cannot be written", func() {
			opts.RawOutputPath = filepath.Join(dir, "missing", "raw_data.csv")

			result, err := svc.Run(ctx, opts)

			Expect(result).To(BeNil())
			Expect(err).To(MatchError(ContainSubstring("writing raw access log dump")))
			_, statErr := os.Stat(opts.OutputPath)
			Expect(os.IsNotExist(statErr)).To(BeTrue())
			entries, _ := os.ReadDir(dir)
			Expect(entries).To(BeEmpty())
		})

		It("writes neither file when the report cannot be written", func() {
			opts.OutputPath = filepath.Join(dir, "missing", "last_logins.csv")
			opts.RawOutputPath = filepath.Join(dir, "raw_data.csv")

			_, err := svc.Run(ctx, opts)

			Expect(err).To(MatchError(ContainSubstring("writing last login report")))
			entries, _ := os.ReadDir(dir)
			Expect(entries).To(BeEmpty())
		})

		It("fails without a report when no member is active", func() {
			client.listMembersFn = staticMembers(model.Member{ID: "B1", IsBot: true})

			_, err := svc.Run(ctx, opts)

			Expect(errors.Is(err, report.ErrEmptyInput)).To(BeTrue())
			_, statErr := os.Stat(opts.OutputPath)
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})
	})

	Describe("ExportMembers", func() {
		It("writes the directory without touching the access log", func() {
			path := filepath.Join(dir, "members.csv")

			result, err := svc.ExportMembers(ctx, path)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.RowsWritten).To(Equal(2))
			Expect(client.accessLogQueries()).To(BeEmpty())

			rows, err := report.ReadCSV(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows[0].Names()).To(Equal([]string{"id", "name", "display_name", "real_name", "title", "email"}))
		})
	})
})
