package audit_test

import (
	"errors"
	"log/slog"
	"os"

	"github.com/radityasurya/pharmacy-network/internal/audit"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Security Escalator", func() {
	var (
		mockRepo  *MockRepository
		escalator *audit.SecurityEscalator
	)

	BeforeEach(func() {
		mockRepo = &MockRepository{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		// A refill rate this low never tops the budget back up within a
		// test run, so behavior is deterministic.
		escalator = audit.NewSecurityEscalator(mockRepo, logger, 0.000001, 2)
	})

	It("should stay silent while the tenant is within its rejection budget", func() {
		escalator.RecordRejection("tenant-b", "ch-1")
		escalator.RecordRejection("tenant-b", "ch-1")
		Expect(mockRepo.entries).To(BeEmpty())
	})

	It("should append a warning security_alert when the budget is exhausted", func() {
		for i := 0; i < 3; i++ {
			escalator.RecordRejection("tenant-b", "ch-1")
		}

		Expect(mockRepo.entries).To(HaveLen(1))
		entry := mockRepo.entries[0]
		Expect(entry.Action).To(Equal(string(audit.ActionSecurityAlert)))
		Expect(entry.Severity).To(Equal(string(audit.SeverityWarning)))
		Expect(entry.TenantID).To(BeNil())
		Expect(entry.TargetID).To(Equal("ch-1"))
		Expect(entry.DetailsJSON).To(ContainSubstring("tenant-b"))
	})

	It("should escalate to critical while an alert is already outstanding", func() {
		for i := 0; i < 4; i++ {
			escalator.RecordRejection("tenant-b", "ch-1")
		}

		Expect(mockRepo.entries).To(HaveLen(2))
		// entries are kept newest-first
		Expect(mockRepo.entries[0].Severity).To(Equal(string(audit.SeverityCritical)))
		Expect(mockRepo.entries[1].Severity).To(Equal(string(audit.SeverityWarning)))
	})

	It("should track budgets per tenant independently", func() {
		for i := 0; i < 3; i++ {
			escalator.RecordRejection("tenant-b", "ch-1")
		}
		escalator.RecordRejection("tenant-d", "ch-1")

		Expect(mockRepo.entries).To(HaveLen(1))
		Expect(mockRepo.entries[0].DetailsJSON).To(ContainSubstring("tenant-b"))
	})

	It("should swallow append failures, a lost alert must not break the request path", func() {
		mockRepo.shouldFail = true
		mockRepo.failError = errors.New("store down")

		Expect(func() {
			for i := 0; i < 3; i++ {
				escalator.RecordRejection("tenant-b", "ch-1")
			}
		}).NotTo(Panic())
		Expect(mockRepo.entries).To(BeEmpty())
	})
})
