package cfg

import "time"

// MockLoader trả về cấu hình cố định, dùng cho test và chạy thử không cần file yaml.
type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (ml *MockLoader) Load() (*Config, error) {
	config := &Config{
		// App
		App: App{
			Name:    "github-ranking",
			Version: "0.0.1",
			Env:     "local",
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken:       "",
			BaseUrl:           "https://api.github.com",
			RequestsPerSecond: 5,
			Timeout:           30 * time.Second,
			MaxRetries:        3,
		},

		// Search
		Search: Search{
			Preset:         "followers",
			MaxPages:       15,
			PerPage:        100,
			PageDelay:      2 * time.Second,
			PartitionDelay: 5 * time.Second,
			MinRemaining:   10,
			WarnRemaining:  100,
		},

		// Enrich
		Enrich: Enrich{
			BatchSize:  5,
			BatchDelay: 3 * time.Second,
			FlushEvery: 5,
		},

		// Filter
		Filter: Filter{
			Organizations: []string{
				"alibaba", "tencent", "bytedance", "open-mmlab", "baidu",
				"ant-design", "apache", "microsoft", "oschina",
			},
			MarkdownAuthors: []string{"ruanyf", "jobbole", "justjavac", "kamranahmedse"},
		},

		// Cache
		Cache: Cache{
			Driver: "file",
			Path:   "cache/github-users.json",
			TTL:    168 * time.Hour,
		},

		// Artifact
		Artifact: Artifact{
			Path: "public/data/github-ranking.json",
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "github_ranking",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},
	}
	config.ApplyDefaults()
	return config, nil
}
