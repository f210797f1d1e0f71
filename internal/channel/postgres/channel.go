package postgres

import (
	"github.com/radityasurya/pharmacy-network/internal/channel"
	auditDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/audit"
	channelDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/channel"
	messageDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/message"
	"gorm.io/gorm"
)

type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) channel.RepositoryAPI {
	return &ChannelRepository{db: db}
}

// Create inserts the channel and its audit entry atomically; if the audit
// append fails the channel insert is rolled back with it.
func (r *ChannelRepository) Create(ch *channelDatamodel.Channel, entry *auditDatamodel.AuditEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ch).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

func (r *ChannelRepository) Update(ch *channelDatamodel.Channel, entry *auditDatamodel.AuditEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(ch).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

// Delete cascades: participants and messages go before the channel row, and
// the audit entry commits with the deletion or not at all.
func (r *ChannelRepository) Delete(channelID string, entry *auditDatamodel.AuditEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", channelID).
			Delete(&messageDatamodel.ChannelParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("channel_id = ?", channelID).
			Delete(&messageDatamodel.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", channelID).
			Delete(&channelDatamodel.Channel{}).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

func (r *ChannelRepository) GetByID(id string) (*channelDatamodel.Channel, error) {
	var ch channelDatamodel.Channel
	err := r.db.Where("id = ?", id).First(&ch).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ch, nil
}

func (r *ChannelRepository) List(f channel.ListFilter) ([]*channelDatamodel.Channel, error) {
	var rows []*channelDatamodel.Channel

	q := r.db.Model(&channelDatamodel.Channel{})
	if f.TenantID != "" {
		q = q.Where("owner_tenant_id = ?", f.TenantID)
	}
	if f.Type != "" {
		q = q.Where("channel_type = ?", f.Type)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	err := q.Order("name ASC").Find(&rows).Error
	return rows, err
}
