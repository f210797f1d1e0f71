package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample pharmacies, channels and grants for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"audit_log", "messages", "channel_participants", "permission_grants", "channels", "network_settings", "tenants"} {
				if err := gormDB.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		tenants := []struct {
			Name   string
			Status string
		}{
			{"Apotheek Centrum", "active"},
			{"Apotheek Noord", "active"},
			{"Apotheek West", "inactive"},
			{"Apotheek Zuid", "maintenance"},
		}

		tenantIDs := make(map[string]string, len(tenants))
		for _, t := range tenants {
			id := ensureTenant(gormDB, t.Name, t.Status)
			tenantIDs[t.Name] = id
		}

		// One network-wide system channel plus a regular team channel.
		systemID := ensureChannel(gormDB, channelSeed{
			Name:        "network-announcements",
			OwnerID:     tenantIDs["Apotheek Centrum"],
			ChannelType: "system",
			Visibility:  "public",
			IsSystem:    true,
		})
		teamID := ensureChannel(gormDB, channelSeed{
			Name:        "centrum-team",
			OwnerID:     tenantIDs["Apotheek Centrum"],
			ChannelType: "team",
			Visibility:  "private",
			IsSystem:    false,
		})
		fmt.Println("Seeded channels:", systemID, teamID)

		// Noord may chat in Centrum's team channel.
		if err := gormDB.Exec(`
			INSERT INTO permission_grants (id, granter_tenant_id, grantee_tenant_id, permission_type, is_granted, created_at, updated_at)
			VALUES (?, ?, ?, 'chat', true, now(), now())
			ON CONFLICT (granter_tenant_id, grantee_tenant_id, permission_type) DO NOTHING`,
			uuid.NewString(), tenantIDs["Apotheek Centrum"], tenantIDs["Apotheek Noord"]).Error; err != nil {
			log.Fatalf("failed to seed grant: %v", err)
		}

		defaultSettings := map[string]string{
			"require_2fa":                "true",
			"rate_limiting":              "true",
			"audit_retention_days":       "365",
			"max_message_length":         "4000",
			"default_channel_visibility": "private",
		}
		for key, value := range defaultSettings {
			if err := gormDB.Exec(`
				INSERT INTO network_settings (setting_key, setting_value, updated_at)
				VALUES (?, ?, now())
				ON CONFLICT (setting_key) DO NOTHING`, key, value).Error; err != nil {
				log.Fatalf("failed to seed setting %s: %v", key, err)
			}
		}

		fmt.Println("Seeding complete")
	},
}

type channelSeed struct {
	Name        string
	OwnerID     string
	ChannelType string
	Visibility  string
	IsSystem    bool
}

func ensureTenant(db *gorm.DB, name, status string) string {
	var id string
	row := db.Raw("SELECT id FROM tenants WHERE name = ?", name).Row()
	if err := row.Scan(&id); err == nil {
		return id
	}

	id = uuid.NewString()
	if err := db.Exec("INSERT INTO tenants (id, name, status, created_at, updated_at) VALUES (?, ?, ?, now(), now())", id, name, status).Error; err != nil {
		log.Fatalf("failed to insert tenant %s: %v", name, err)
	}
	fmt.Println("Seeded tenant:", name)
	return id
}

func ensureChannel(db *gorm.DB, seed channelSeed) string {
	var id string
	row := db.Raw("SELECT id FROM channels WHERE name = ?", seed.Name).Row()
	if err := row.Scan(&id); err == nil {
		return id
	}

	id = uuid.NewString()
	if err := db.Exec(`
		INSERT INTO channels (id, owner_tenant_id, name, channel_type, visibility, is_system, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 'active', now(), now())`,
		id, seed.OwnerID, seed.Name, seed.ChannelType, seed.Visibility, seed.IsSystem).Error; err != nil {
		log.Fatalf("failed to insert channel %s: %v", seed.Name, err)
	}
	return id
}
