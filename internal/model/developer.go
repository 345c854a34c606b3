package model

import "time"

// Kind phân loại developer trên trang xếp hạng
type Kind string

const (
	KindCode     Kind = "code"
	KindMarkdown Kind = "markdown"
)

// ISOTime khớp định dạng toISOString: mili giây và hậu tố Z.
const ISOTime = "2006-01-02T15:04:05.000Z07:00"

func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOTime)
}

// SearchHit là một kết quả thô từ API tìm kiếm user
type SearchHit struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// Developer là bản ghi đã làm giàu, được lưu vào cache và artifact
type Developer struct {
	Login           string  `json:"login"`
	Name            string  `json:"name"`
	AvatarURL       string  `json:"avatar_url"`
	HTMLURL         string  `json:"html_url"`
	Followers       int     `json:"followers"`
	PublicRepos     int     `json:"public_repos"`
	Bio             *string `json:"bio"`
	Location        *string `json:"location"`
	TwitterUsername *string `json:"twitter_username"`
	Blog            *string `json:"blog"`
	Company         *string `json:"company"`
	Type            Kind    `json:"type"`
}

// CacheEntry được lưu theo login chính tắc; Login không ghi ra JSON.
type CacheEntry struct {
	Login    string    `json:"-"`
	CachedAt time.Time `json:"cachedAt"`
	Data     Developer `json:"data"`
}

// Fresh cho biết entry còn dùng được trong ttl; ttl <= 0 thì không bao giờ hết hạn.
func (e CacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return true
	}
	return now.Sub(e.CachedAt) < ttl
}

// Ranking là nội dung file artifact
type Ranking struct {
	UpdateTime string      `json:"updateTime"`
	Developers []Developer `json:"developers"`
}
