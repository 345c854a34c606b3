package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/pkg/db"
	"github.com/thep200/github-ranking/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Profile lưu bản mới nhất của mỗi developer, do consumer ghi từ Kafka
type Profile struct {
	Model
	Login           string `json:"login" gorm:"column:login;type:varchar(255);uniqueIndex;not null"`
	Name            string `json:"name" gorm:"column:name;type:varchar(255)"`
	AvatarURL       string `json:"avatar_url" gorm:"column:avatar_url;type:varchar(512)"`
	HTMLURL         string `json:"html_url" gorm:"column:html_url;type:varchar(512)"`
	Followers       int    `json:"followers" gorm:"column:followers;default:0;index"`
	PublicRepos     int    `json:"public_repos" gorm:"column:public_repos;default:0"`
	Bio             string `json:"bio" gorm:"column:bio;type:text"`
	Location        string `json:"location" gorm:"column:location;type:varchar(255)"`
	Blog            string `json:"blog" gorm:"column:blog;type:varchar(512)"`
	Company         string `json:"company" gorm:"column:company;type:varchar(255)"`
	TwitterUsername string `json:"twitter_username" gorm:"column:twitter_username;type:varchar(255)"`
	Kind            string `json:"kind" gorm:"column:kind;type:varchar(16);not null"`
	LastRunID       string `json:"last_run_id" gorm:"column:last_run_id;type:varchar(32)"`
	SnapshotAt      string `json:"snapshot_at" gorm:"column:snapshot_at;type:varchar(32)"`
}

func NewProfile(config *cfg.Config, logger log.Logger, db *db.Mysql) (*Profile, error) {
	profile := &Profile{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return profile, nil
}

func (p *Profile) TableName() string {
	return "profiles"
}

// ProfilesFromMessages chuyển message sang bản ghi; trùng login thì giữ message sau cùng.
func ProfilesFromMessages(messages []DeveloperMessage, now time.Time) []Profile {
	index := make(map[string]int, len(messages))
	profiles := make([]Profile, 0, len(messages))

	for _, msg := range messages {
		dev := msg.Developer
		if dev.Login == "" {
			continue
		}
		profile := Profile{
			Login:           TruncateString(dev.Login, 250),
			Name:            TruncateString(dev.Name, 250),
			AvatarURL:       TruncateString(dev.AvatarURL, 500),
			HTMLURL:         TruncateString(dev.HTMLURL, 500),
			Followers:       dev.Followers,
			PublicRepos:     dev.PublicRepos,
			Bio:             TruncateString(Deref(dev.Bio), 65000),
			Location:        TruncateString(Deref(dev.Location), 250),
			Blog:            TruncateString(Deref(dev.Blog), 500),
			Company:         TruncateString(Deref(dev.Company), 250),
			TwitterUsername: TruncateString(Deref(dev.TwitterUsername), 250),
			Kind:            string(dev.Type),
			LastRunID:       msg.RunID,
			SnapshotAt:      msg.UpdateTime,
		}
		profile.CreatedAt = now
		profile.UpdatedAt = now

		if i, ok := index[profile.Login]; ok {
			profiles[i] = profile
			continue
		}
		index[profile.Login] = len(profiles)
		profiles = append(profiles, profile)
	}
	return profiles
}

func (p *Profile) CreateBatch(ctx context.Context, messages []DeveloperMessage) error {
	profiles := ProfilesFromMessages(messages, time.Now())
	if len(profiles) == 0 {
		return nil
	}

	db, err := p.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "login"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "avatar_url", "html_url", "followers", "public_repos", "bio", "location",
				"blog", "company", "twitter_username", "kind", "last_run_id", "snapshot_at", "updated_at",
			}),
		}).CreateInBatches(profiles, 100)

		if result.Error != nil {
			return fmt.Errorf("failed to batch upsert profiles: %w", result.Error)
		}

		p.Logger.Info(ctx, "Upserted %d profiles", len(profiles))
		return nil
	})
}

var ErrProfileNotFound = errors.New("profile not found")

// List trả về một trang profile theo followers giảm dần cùng tổng số bản ghi khớp search
func (p *Profile) List(ctx context.Context, search string, offset, limit int) ([]Profile, int64, error) {
	db, err := p.Mysql.Db()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get database connection: %w", err)
	}

	query := db.WithContext(ctx).Model(&Profile{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("login LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	var profiles []Profile
	if err := query.Order("followers DESC").Offset(offset).Limit(limit).Find(&profiles).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch profiles: %w", err)
	}
	return profiles, total, nil
}

func (p *Profile) FindByLogin(ctx context.Context, login string) (*Profile, error) {
	db, err := p.Mysql.Db()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	var profile Profile
	err = db.WithContext(ctx).Where("login = ?", login).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile %s: %w", login, err)
	}
	return &profile, nil
}
