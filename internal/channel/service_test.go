package channel_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/internal/audit"
	"github.com/radityasurya/pharmacy-network/internal/channel"
	auditDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/audit"
	channelDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/channel"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestChannelService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Channel Service Suite")
}

// MockRepository implements channel.RepositoryAPI and records every audit
// entry handed to a mutating method.
type MockRepository struct {
	channels   map[string]*channelDatamodel.Channel
	entries    []*auditDatamodel.AuditEntry
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		channels: make(map[string]*channelDatamodel.Channel),
	}
}

func (m *MockRepository) Create(ch *channelDatamodel.Channel, entry *auditDatamodel.AuditEntry) error {
	if m.shouldFail {
		return m.failError
	}
	m.channels[ch.ID] = ch
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockRepository) Update(ch *channelDatamodel.Channel, entry *auditDatamodel.AuditEntry) error {
	if m.shouldFail {
		return m.failError
	}
	m.channels[ch.ID] = ch
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockRepository) Delete(channelID string, entry *auditDatamodel.AuditEntry) error {
	if m.shouldFail {
		return m.failError
	}
	delete(m.channels, channelID)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockRepository) GetByID(id string) (*channelDatamodel.Channel, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.channels[id], nil
}

func (m *MockRepository) List(f channel.ListFilter) ([]*channelDatamodel.Channel, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*channelDatamodel.Channel
	for _, ch := range m.channels {
		result = append(result, ch)
	}
	return result, nil
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func (m *MockRepository) AddChannel(ch *channel.Channel) {
	m.channels[ch.ID] = channel.ToDataModel(ch)
}

type stubDefaults struct {
	visibility string
}

func (s stubDefaults) DefaultVisibility() string { return s.visibility }

// spySecurityLog captures refusal entries recorded outside the mutation
// transaction.
type spySecurityLog struct {
	entries []*audit.Entry
}

func (s *spySecurityLog) Record(entry *audit.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

var _ = Describe("Channel Service", func() {
	var (
		mockRepo *MockRepository
		security *spySecurityLog
		service  *channel.Service
		owner    internal.Actor
		outsider internal.Actor
		admin    internal.Actor
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		security = &spySecurityLog{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = channel.NewService(mockRepo, stubDefaults{visibility: "private"}, security, logger)

		owner = internal.Actor{TenantID: "tenant-a", UserID: "user-1", DisplayName: "Apotheek A"}
		outsider = internal.Actor{TenantID: "tenant-b", UserID: "user-2", DisplayName: "Apotheek B"}
		admin = internal.Actor{TenantID: "tenant-hq", UserID: "admin-1", NetworkAdmin: true}
	})

	Describe("Create", func() {
		Context("with a valid request", func() {
			It("should create an active channel owned by the actor's tenant", func() {
				ch, err := service.Create(owner, channel.CreateChannelDTO{
					Name:        "inkoop-overleg",
					ChannelType: "team",
					Visibility:  "public",
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(ch.OwnerTenantID).To(Equal("tenant-a"))
				Expect(ch.Status).To(Equal(channel.StatusActive))
				Expect(ch.Visibility).To(Equal(channel.VisibilityPublic))
				Expect(ch.IsSystem).To(BeFalse())
			})

			It("should record a channel_create audit entry", func() {
				ch, err := service.Create(owner, channel.CreateChannelDTO{
					Name:        "inkoop-overleg",
					ChannelType: "team",
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(mockRepo.entries).To(HaveLen(1))
				Expect(mockRepo.entries[0].Action).To(Equal(string(audit.ActionChannelCreate)))
				Expect(mockRepo.entries[0].Severity).To(Equal(string(audit.SeverityInfo)))
				Expect(mockRepo.entries[0].TargetID).To(Equal(ch.ID))
			})

			It("should fall back to the network default when visibility is unset", func() {
				ch, err := service.Create(owner, channel.CreateChannelDTO{
					Name:        "inkoop-overleg",
					ChannelType: "team",
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(ch.Visibility).To(Equal(channel.VisibilityPrivate))
			})
		})

		Context("with an invalid request", func() {
			It("should reject an unknown channel type without touching the store", func() {
				_, err := service.Create(owner, channel.CreateChannelDTO{
					Name:        "inkoop-overleg",
					ChannelType: "broadcast",
				})
				Expect(err).To(HaveOccurred())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
				Expect(mockRepo.channels).To(BeEmpty())
				Expect(mockRepo.entries).To(BeEmpty())
			})

			It("should reject a missing name", func() {
				_, err := service.Create(owner, channel.CreateChannelDTO{ChannelType: "team"})
				Expect(err).To(HaveOccurred())
			})
		})

		Context("when the store fails", func() {
			BeforeEach(func() {
				mockRepo.SetShouldFail(true, errors.New("connection refused"))
			})

			It("should surface a retryable store error", func() {
				_, err := service.Create(owner, channel.CreateChannelDTO{
					Name:        "inkoop-overleg",
					ChannelType: "team",
				})
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeStoreUnavailable))
			})
		})
	})

	Describe("Update", func() {
		BeforeEach(func() {
			mockRepo.AddChannel(&channel.Channel{
				ID:            "ch-1",
				OwnerTenantID: "tenant-a",
				Name:          "inkoop-overleg",
				Type:          channel.TypeTeam,
				Visibility:    channel.VisibilityPrivate,
				Status:        channel.StatusActive,
			})
		})

		It("should let the owner rename the channel and audit the change", func() {
			name := "inkoop-2026"
			ch, err := service.Update(owner, "ch-1", channel.UpdateChannelDTO{Name: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.Name).To(Equal("inkoop-2026"))
			Expect(mockRepo.entries).To(HaveLen(1))
			Expect(mockRepo.entries[0].Action).To(Equal(string(audit.ActionChannelUpdate)))
		})

		It("should refuse a non-owner and leave the row unchanged", func() {
			name := "hijacked"
			_, err := service.Update(outsider, "ch-1", channel.UpdateChannelDTO{Name: &name})
			Expect(err).To(Equal(internal.ErrNotChannelOwner))
			Expect(mockRepo.channels["ch-1"].Name).To(Equal("inkoop-overleg"))
			Expect(mockRepo.entries).To(BeEmpty())
		})

		It("should land a warning audit entry for the non-owner refusal", func() {
			name := "hijacked"
			_, err := service.Update(outsider, "ch-1", channel.UpdateChannelDTO{Name: &name})
			Expect(err).To(Equal(internal.ErrNotChannelOwner))

			Expect(security.entries).To(HaveLen(1))
			Expect(security.entries[0].Action).To(Equal(audit.ActionPermissionDenied))
			Expect(security.entries[0].Severity).To(Equal(audit.SeverityWarning))
			Expect(security.entries[0].TargetID).To(Equal("ch-1"))
			Expect(security.entries[0].Details).To(HaveKeyWithValue("reason", "not_owner"))
		})

		It("should not audit a no-op patch", func() {
			name := "inkoop-overleg"
			_, err := service.Update(owner, "ch-1", channel.UpdateChannelDTO{Name: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.entries).To(BeEmpty())
		})

		It("should return not found for an unknown channel", func() {
			name := "whatever"
			_, err := service.Update(owner, "missing", channel.UpdateChannelDTO{Name: &name})
			Expect(err).To(Equal(internal.ErrChannelNotFound))
		})
	})

	Describe("system channels", func() {
		BeforeEach(func() {
			mockRepo.AddChannel(&channel.Channel{
				ID:            "sys-1",
				OwnerTenantID: "tenant-hq",
				Name:          "network-announcements",
				Type:          channel.TypeSystem,
				Visibility:    channel.VisibilityPublic,
				IsSystem:      true,
				Status:        channel.StatusActive,
			})
		})

		It("should refuse modification by a regular tenant, even the owner", func() {
			name := "renamed"
			_, err := service.Update(internal.Actor{TenantID: "tenant-hq", UserID: "user-3"}, "sys-1",
				channel.UpdateChannelDTO{Name: &name})
			Expect(err).To(Equal(internal.ErrProtectedChannel))
			Expect(mockRepo.channels["sys-1"].Name).To(Equal("network-announcements"))
		})

		It("should refuse deletion by a regular tenant", func() {
			err := service.Delete(owner, "sys-1")
			Expect(err).To(Equal(internal.ErrProtectedChannel))
			Expect(mockRepo.channels).To(HaveKey("sys-1"))
			Expect(mockRepo.entries).To(BeEmpty())
		})

		It("should land a warning audit entry for the protected-channel refusal", func() {
			Expect(service.Delete(owner, "sys-1")).To(Equal(internal.ErrProtectedChannel))

			Expect(security.entries).To(HaveLen(1))
			Expect(security.entries[0].Action).To(Equal(audit.ActionPermissionDenied))
			Expect(security.entries[0].Severity).To(Equal(audit.SeverityWarning))
			Expect(security.entries[0].Details).To(HaveKeyWithValue("reason", "protected_channel"))
		})

		It("should not record a refusal when the network administrator acts", func() {
			name := "network-bulletin"
			_, err := service.Update(admin, "sys-1", channel.UpdateChannelDTO{Name: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(security.entries).To(BeEmpty())
		})

		It("should allow a network administrator to modify it", func() {
			name := "network-bulletin"
			ch, err := service.Update(admin, "sys-1", channel.UpdateChannelDTO{Name: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.Name).To(Equal("network-bulletin"))
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			mockRepo.AddChannel(&channel.Channel{
				ID:            "ch-1",
				OwnerTenantID: "tenant-a",
				Name:          "inkoop-overleg",
				Type:          channel.TypeTeam,
				Status:        channel.StatusActive,
			})
		})

		It("should delete and record a warning-level audit entry", func() {
			err := service.Delete(owner, "ch-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.channels).NotTo(HaveKey("ch-1"))
			Expect(mockRepo.entries).To(HaveLen(1))
			Expect(mockRepo.entries[0].Action).To(Equal(string(audit.ActionChannelDelete)))
			Expect(mockRepo.entries[0].Severity).To(Equal(string(audit.SeverityWarning)))
		})

		It("should return not found for an unknown channel", func() {
			err := service.Delete(owner, "missing")
			Expect(err).To(Equal(internal.ErrChannelNotFound))
		})
	})

	Describe("status transitions", func() {
		BeforeEach(func() {
			mockRepo.AddChannel(&channel.Channel{
				ID:            "ch-1",
				OwnerTenantID: "tenant-a",
				Name:          "inkoop-overleg",
				Type:          channel.TypeTeam,
				Status:        channel.StatusActive,
			})
		})

		It("should archive, pause and reactivate", func() {
			ch, err := service.Archive(owner, "ch-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.Status).To(Equal(channel.StatusArchived))

			ch, err = service.Pause(owner, "ch-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.Status).To(Equal(channel.StatusPaused))
			Expect(ch.AcceptsMessages()).To(BeFalse())

			ch, err = service.Activate(owner, "ch-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.AcceptsMessages()).To(BeTrue())
		})
	})
})
