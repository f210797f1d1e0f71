package message_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/internal/channel"
	auditDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/audit"
	grantDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/grant"
	messageDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/message"
	"github.com/radityasurya/pharmacy-network/internal/message"
	"github.com/radityasurya/pharmacy-network/internal/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMessageService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Message Service Suite")
}

// MockMessageRepository stores messages in insert order; ULID ids make that
// chronological order too.
type MockMessageRepository struct {
	messages     []*messageDatamodel.Message
	participants map[string]*messageDatamodel.ChannelParticipant
	shouldFail   bool
	failError    error
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		participants: make(map[string]*messageDatamodel.ChannelParticipant),
	}
}

func (m *MockMessageRepository) Create(msg *messageDatamodel.Message, p *messageDatamodel.ChannelParticipant) error {
	if m.shouldFail {
		return m.failError
	}
	m.messages = append(m.messages, msg)
	m.participants[p.ChannelID+"/"+p.TenantID] = p
	return nil
}

func (m *MockMessageRepository) ListByChannel(channelID string, limit, offset int) ([]*messageDatamodel.Message, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var inChannel []*messageDatamodel.Message
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].ChannelID == channelID {
			inChannel = append(inChannel, m.messages[i])
		}
	}
	if offset >= len(inChannel) {
		return nil, nil
	}
	inChannel = inChannel[offset:]
	if limit < len(inChannel) {
		inChannel = inChannel[:limit]
	}
	return inChannel, nil
}

type grantKey struct {
	granter, grantee, permissionType string
}

// MockRepository implements permission.RepositoryAPI so the real permission
// engine can sit behind the gateway in these tests.
type MockRepository struct {
	grants map[grantKey]*grantDatamodel.PermissionGrant
}

func NewMockRepository() *MockRepository {
	return &MockRepository{grants: make(map[grantKey]*grantDatamodel.PermissionGrant)}
}

func (m *MockRepository) Upsert(g *grantDatamodel.PermissionGrant, entry *auditDatamodel.AuditEntry) error {
	m.grants[grantKey{g.GranterTenantID, g.GranteeTenantID, g.PermissionType}] = g
	return nil
}

func (m *MockRepository) Tombstone(granter, grantee, permissionType string, entry *auditDatamodel.AuditEntry) (bool, error) {
	g, ok := m.grants[grantKey{granter, grantee, permissionType}]
	if !ok {
		return false, nil
	}
	g.IsGranted = false
	return true, nil
}

func (m *MockRepository) Get(granter, grantee, permissionType string) (*grantDatamodel.PermissionGrant, error) {
	return m.grants[grantKey{granter, grantee, permissionType}], nil
}

func (m *MockRepository) AnyGranted(granter, grantee string, permissionTypes []string) (bool, error) {
	for _, pt := range permissionTypes {
		if g, ok := m.grants[grantKey{granter, grantee, pt}]; ok && g.IsGranted {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepository) ListByGranter(granter string) ([]*grantDatamodel.PermissionGrant, error) {
	var result []*grantDatamodel.PermissionGrant
	for key, g := range m.grants {
		if key.granter == granter {
			result = append(result, g)
		}
	}
	return result, nil
}

type stubChannels struct {
	channels map[string]*channel.Channel
}

func (s *stubChannels) GetByID(id string) (*channel.Channel, error) {
	ch, ok := s.channels[id]
	if !ok {
		return nil, internal.ErrChannelNotFound
	}
	return ch, nil
}

type stubTenants struct {
	active map[string]bool
}

func (s *stubTenants) IsActive(tenantID string) (bool, error) {
	active, ok := s.active[tenantID]
	if !ok {
		return false, internal.ErrTenantNotFound
	}
	return active, nil
}

type stubSettings struct {
	maxLength    int
	rateLimiting bool
}

func (s *stubSettings) MaxMessageLength() int     { return s.maxLength }
func (s *stubSettings) RateLimitingEnabled() bool { return s.rateLimiting }

type spyEscalator struct {
	rejections []string
}

func (s *spyEscalator) RecordRejection(tenantID, channelID string) {
	s.rejections = append(s.rejections, tenantID+"/"+channelID)
}

var _ = Describe("Message Service", func() {
	var (
		repo      *MockMessageRepository
		channels  *stubChannels
		grantRepo *MockRepository
		access    *permission.Service
		tenants   *stubTenants
		settings  *stubSettings
		escalator *spyEscalator
		service   *message.Service

		ownerActor internal.Actor
		guestActor internal.Actor
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		repo = NewMockMessageRepository()
		channels = &stubChannels{channels: map[string]*channel.Channel{
			"ch-1": {
				ID:            "ch-1",
				OwnerTenantID: "tenant-a",
				Name:          "inkoop-overleg",
				Visibility:    channel.VisibilityPrivate,
				Status:        channel.StatusActive,
			},
		}}
		grantRepo = NewMockRepository()
		tenants = &stubTenants{active: map[string]bool{
			"tenant-a": true,
			"tenant-b": true,
			"tenant-c": false,
		}}
		access = permission.NewService(grantRepo, tenants, logger)
		settings = &stubSettings{maxLength: 200, rateLimiting: true}
		escalator = &spyEscalator{}

		service = message.NewService(repo, channels, access, tenants, settings, escalator, logger)

		ownerActor = internal.Actor{TenantID: "tenant-a", UserID: "user-1", DisplayName: "Apotheek A"}
		guestActor = internal.Actor{TenantID: "tenant-b", UserID: "user-2", DisplayName: "Apotheek B"}
	})

	Describe("Post", func() {
		It("should store an owner's message with a ULID id and participant row", func() {
			m, err := service.Post(ownerActor, "ch-1", message.PostMessageDTO{Content: "voorraad update"})
			Expect(err).NotTo(HaveOccurred())
			Expect(m.ID).To(HaveLen(26))
			Expect(m.SenderTenantID).To(Equal("tenant-a"))
			Expect(m.Priority).To(Equal(message.PriorityNormal))
			Expect(repo.participants).To(HaveKey("ch-1/tenant-a"))
		})

		It("should reject empty content", func() {
			_, err := service.Post(ownerActor, "ch-1", message.PostMessageDTO{Content: "   "})
			Expect(err).To(HaveOccurred())
			Expect(repo.messages).To(BeEmpty())
		})

		It("should enforce the configured maximum length", func() {
			long := make([]byte, 201)
			for i := range long {
				long[i] = 'x'
			}
			_, err := service.Post(ownerActor, "ch-1", message.PostMessageDTO{Content: string(long)})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should reject an invalid priority", func() {
			_, err := service.Post(ownerActor, "ch-1", message.PostMessageDTO{Content: "spoed", Priority: "asap"})
			Expect(err).To(HaveOccurred())
		})

		It("should accept high and urgent priorities", func() {
			m, err := service.Post(ownerActor, "ch-1", message.PostMessageDTO{Content: "spoed", Priority: "urgent"})
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Priority).To(Equal(message.PriorityUrgent))
		})

		It("should refuse an inactive sending pharmacy before any access check", func() {
			_, err := service.Post(internal.Actor{TenantID: "tenant-c", UserID: "user-3"}, "ch-1",
				message.PostMessageDTO{Content: "hallo"})
			Expect(err).To(Equal(internal.ErrTenantInactive))
			Expect(escalator.rejections).To(BeEmpty())
		})

		It("should refuse a paused channel", func() {
			channels.channels["ch-1"].Status = channel.StatusPaused
			_, err := service.Post(ownerActor, "ch-1", message.PostMessageDTO{Content: "hallo"})
			Expect(err).To(Equal(internal.ErrChannelNotActive))
		})

		It("should return not found for an unknown channel", func() {
			_, err := service.Post(ownerActor, "missing", message.PostMessageDTO{Content: "hallo"})
			Expect(err).To(Equal(internal.ErrChannelNotFound))
		})

		Context("unauthorized attempts", func() {
			It("should deny, report to the escalator, and store nothing", func() {
				_, err := service.Post(guestActor, "ch-1", message.PostMessageDTO{Content: "mag ik meedoen"})
				Expect(err).To(Equal(internal.ErrNoChannelAccess))
				Expect(repo.messages).To(BeEmpty())
				Expect(escalator.rejections).To(ConsistOf("tenant-b/ch-1"))
			})

			It("should skip the escalator when rate limiting is disabled", func() {
				settings.rateLimiting = false
				_, err := service.Post(guestActor, "ch-1", message.PostMessageDTO{Content: "mag ik meedoen"})
				Expect(err).To(Equal(internal.ErrNoChannelAccess))
				Expect(escalator.rejections).To(BeEmpty())
			})
		})

		Context("when the store fails", func() {
			It("should surface a retryable store error", func() {
				repo.shouldFail = true
				repo.failError = errors.New("connection refused")
				_, err := service.Post(ownerActor, "ch-1", message.PostMessageDTO{Content: "hallo"})
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeStoreUnavailable))
			})
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for _, content := range []string{"eerste", "tweede", "derde"} {
				_, err := service.Post(ownerActor, "ch-1", message.PostMessageDTO{Content: content})
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("should return messages newest first", func() {
			messages, err := service.List(ownerActor, "ch-1", 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(HaveLen(3))
			Expect(messages[0].Content).To(Equal("derde"))
			Expect(messages[2].Content).To(Equal("eerste"))
		})

		It("should page with limit and offset", func() {
			messages, err := service.List(ownerActor, "ch-1", 1, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(HaveLen(1))
			Expect(messages[0].Content).To(Equal("tweede"))
		})

		It("should gate reads on channel access", func() {
			_, err := service.List(guestActor, "ch-1", 10, 0)
			Expect(err).To(Equal(internal.ErrNoChannelAccess))
		})
	})

	Describe("grant lifecycle end to end", func() {
		It("should deny, allow after a chat grant, and deny again after revoke without hiding stored messages", func() {
			granter := internal.Actor{TenantID: "tenant-a", UserID: "user-1"}

			// Denied before any grant exists.
			_, err := service.Post(guestActor, "ch-1", message.PostMessageDTO{Content: "poging een"})
			Expect(err).To(Equal(internal.ErrNoChannelAccess))

			// Owner grants blanket chat access.
			_, err = access.GrantAccess(granter, "tenant-b", permission.GrantTypeChat)
			Expect(err).NotTo(HaveOccurred())

			stored, err := service.Post(guestActor, "ch-1", message.PostMessageDTO{Content: "het is gelukt"})
			Expect(err).NotTo(HaveOccurred())

			// Revoked: new posts fail again.
			Expect(access.RevokeAccess(granter, "tenant-b", permission.GrantTypeChat)).To(Succeed())
			_, err = service.Post(guestActor, "ch-1", message.PostMessageDTO{Content: "poging drie"})
			Expect(err).To(Equal(internal.ErrNoChannelAccess))

			// The message written while the grant was active stays visible.
			messages, err := service.List(ownerActor, "ch-1", 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(HaveLen(1))
			Expect(messages[0].ID).To(Equal(stored.ID))
			Expect(messages[0].SenderTenantID).To(Equal("tenant-b"))
		})
	})
})
