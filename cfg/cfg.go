package cfg

import (
	"fmt"
	"time"
)

type (
	App struct {
		Name     string `mapstructure:"name"`
		Version  string `mapstructure:"version"`
		Env      string `mapstructure:"env"`
		LogLevel string `mapstructure:"log_level"`
		Schedule string `mapstructure:"schedule"`
	}

	GithubApi struct {
		AccessToken       string        `mapstructure:"access_token"`
		BaseUrl           string        `mapstructure:"base_url"`
		RequestsPerSecond int           `mapstructure:"requests_per_second"`
		Timeout           time.Duration `mapstructure:"timeout"`
		MaxRetries        int           `mapstructure:"max_retries"`
	}

	// Partition là một truy vấn tìm kiếm độc lập
	Partition struct {
		Name      string `mapstructure:"name"`
		Location  string `mapstructure:"location"`
		Followers string `mapstructure:"followers"`
		Sort      string `mapstructure:"sort"`
	}

	Search struct {
		Preset         string        `mapstructure:"preset"`
		Partitions     []Partition   `mapstructure:"partitions"`
		MaxPages       int           `mapstructure:"max_pages"`
		PerPage        int           `mapstructure:"per_page"`
		PageDelay      time.Duration `mapstructure:"page_delay"`
		PartitionDelay time.Duration `mapstructure:"partition_delay"`
		MinRemaining   int           `mapstructure:"min_remaining"`
		WarnRemaining  int           `mapstructure:"warn_remaining"`
	}

	Enrich struct {
		BatchSize  int           `mapstructure:"batch_size"`
		BatchDelay time.Duration `mapstructure:"batch_delay"`
		FlushEvery int           `mapstructure:"flush_every"`
	}

	Filter struct {
		Organizations   []string `mapstructure:"organizations"`
		MarkdownAuthors []string `mapstructure:"markdown_authors"`
	}

	Cache struct {
		Driver    string        `mapstructure:"driver"`
		Path      string        `mapstructure:"path"`
		TTL       time.Duration `mapstructure:"ttl"`
		RedisUrl  string        `mapstructure:"redis_url"`
		KeyPrefix string        `mapstructure:"key_prefix"`
	}

	Artifact struct {
		Path string `mapstructure:"path"`
	}

	Mysql struct {
		Enabled               bool   `mapstructure:"enabled"`
		Host                  string `mapstructure:"host"`
		Port                  string `mapstructure:"port"`
		Username              string `mapstructure:"username"`
		Password              string `mapstructure:"password"`
		Database              string `mapstructure:"database"`
		MaxIdleConnection     int    `mapstructure:"max_idle_connection"`
		MaxOpenConnection     int    `mapstructure:"max_open_connection"`
		MaxLifeTimeConnection int    `mapstructure:"max_life_time_connection"`
	}

	Kafka struct {
		Enabled bool     `mapstructure:"enabled"`
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
		GroupID string   `mapstructure:"group_id"`
	}

	Metrics struct {
		PushgatewayUrl string `mapstructure:"pushgateway_url"`
		Job            string `mapstructure:"job"`
	}

	Server struct {
		Port    int    `mapstructure:"port"`
		SiteUrl string `mapstructure:"site_url"`
	}
)

type Config struct {
	App       App       `mapstructure:"app"`
	GithubApi GithubApi `mapstructure:"github_api"`
	Search    Search    `mapstructure:"search"`
	Enrich    Enrich    `mapstructure:"enrich"`
	Filter    Filter    `mapstructure:"filter"`
	Cache     Cache     `mapstructure:"cache"`
	Artifact  Artifact  `mapstructure:"artifact"`
	Mysql     Mysql     `mapstructure:"mysql"`
	Kafka     Kafka     `mapstructure:"kafka"`
	Metrics   Metrics   `mapstructure:"metrics"`
	Server    Server    `mapstructure:"server"`
}

// ApplyDefaults điền giá trị mặc định cho các trường còn trống.
// Zero delays are kept as-is so tests and dry runs can disable pacing.
func (c *Config) ApplyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "github-ranking"
	}
	if c.App.Env == "" {
		c.App.Env = "local"
	}
	if c.GithubApi.BaseUrl == "" {
		c.GithubApi.BaseUrl = "https://api.github.com"
	}
	if c.GithubApi.RequestsPerSecond <= 0 {
		c.GithubApi.RequestsPerSecond = 5
	}
	if c.GithubApi.Timeout <= 0 {
		c.GithubApi.Timeout = 30 * time.Second
	}
	if c.GithubApi.MaxRetries <= 0 {
		c.GithubApi.MaxRetries = 3
	}
	if c.Search.MaxPages <= 0 {
		c.Search.MaxPages = 15
	}
	if c.Search.PerPage <= 0 || c.Search.PerPage > 100 {
		c.Search.PerPage = 100
	}
	if c.Search.MinRemaining <= 0 {
		c.Search.MinRemaining = 10
	}
	if c.Search.WarnRemaining <= 0 {
		c.Search.WarnRemaining = 100
	}
	if c.Enrich.BatchSize <= 0 {
		c.Enrich.BatchSize = 5
	}
	if c.Enrich.FlushEvery <= 0 {
		c.Enrich.FlushEvery = 5
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "file"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "cache/github-users.json"
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "github-ranking:"
	}
	if c.Artifact.Path == "" {
		c.Artifact.Path = "public/data/github-ranking.json"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "github-ranking.developers"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "github-ranking-archiver"
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "github_ranking_fetch"
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
}

func (c *Config) Validate() error {
	switch c.Cache.Driver {
	case "file", "redis":
	default:
		return fmt.Errorf("cache.driver must be \"file\" or \"redis\", got %q", c.Cache.Driver)
	}
	if c.Cache.Driver == "redis" && c.Cache.RedisUrl == "" {
		return fmt.Errorf("cache.redis_url is required for the redis driver")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %v", c.Cache.TTL)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	for i, p := range c.Search.Partitions {
		if p.Location == "" && p.Followers == "" {
			return fmt.Errorf("search.partitions[%d] needs a location or a followers range", i)
		}
	}
	return nil
}
