package postgres

import (
	messageDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/message"
	"github.com/radityasurya/pharmacy-network/internal/message"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) message.RepositoryAPI {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(m *messageDatamodel.Message, p *messageDatamodel.ChannelParticipant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel_id"}, {Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "last_posted_at"}),
		}).Create(p).Error
	})
}

func (r *MessageRepository) ListByChannel(channelID string, limit, offset int) ([]*messageDatamodel.Message, error) {
	var rows []*messageDatamodel.Message

	// ULID ids sort by creation time; id DESC is newest-first.
	err := r.db.Where("channel_id = ?", channelID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}
