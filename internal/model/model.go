package model

import (
	"time"

	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/pkg/db"
	"github.com/thep200/github-ranking/pkg/log"
)

// Model là phần chung của các bảng lưu trữ trong MySQL
type Model struct {
	Config    *cfg.Config `gorm:"-" json:"-"`
	Logger    log.Logger  `gorm:"-" json:"-"`
	Mysql     *db.Mysql   `gorm:"-" json:"-"`
	ID        uint        `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
