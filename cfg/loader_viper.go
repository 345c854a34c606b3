package cfg

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type ViperLoader struct {
	ConfigPath string
	ConfigName string
	Watch      bool

	v                     *viper.Viper
	once                  sync.Once
	mu                    sync.RWMutex
	cfg                   *Config
	configChangeCallbacks []func(*Config)
}

func NewViperLoader() (*ViperLoader, error) {
	return &ViperLoader{
		ConfigPath:            "cfg/yaml",
		ConfigName:            "mode",
		v:                     viper.New(),
		configChangeCallbacks: make([]func(*Config), 0),
	}, nil
}

func (vl *ViperLoader) Load() (*Config, error) {
	var err error
	vl.once.Do(func() {
		err = vl.loadConfig()
		if err == nil && vl.IsWatchChange() {
			vl.v.OnConfigChange(func(e fsnotify.Event) {
				fmt.Printf("[INFO][CONFIG] Config file changed: %s\n", e.Name)
				if errReload := vl.reloadConfig(); errReload != nil {
					fmt.Printf("[ERROR][CONFIG] Failed to reload config: %v\n", errReload)
				}
			})
			vl.v.WatchConfig()
		}
	})

	if err != nil {
		return nil, err
	}

	vl.mu.RLock()
	defer vl.mu.RUnlock()
	return vl.cfg, nil
}

// IsWatchChange chỉ bật cho tiến trình chạy lâu (server), lần chạy crawl thì không cần.
func (vl *ViperLoader) IsWatchChange() bool {
	return vl.Watch
}

func (vl *ViperLoader) RegisterConfigChangeCallback(callback func(*Config)) {
	vl.mu.Lock()
	vl.configChangeCallbacks = append(vl.configChangeCallbacks, callback)
	vl.mu.Unlock()
}

func (vl *ViperLoader) loadConfig() error {
	vl.v.AddConfigPath(vl.ConfigPath)
	vl.v.SetConfigName(vl.ConfigName)
	vl.v.SetConfigType("yaml")

	// GITHUB_RANKING_CACHE_PATH -> cache.path
	vl.v.SetEnvPrefix("GITHUB_RANKING")
	vl.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vl.v.AutomaticEnv()
	if err := vl.v.BindEnv("github_api.access_token", "GITHUB_TOKEN"); err != nil {
		return fmt.Errorf("[ERROR][CONFIG] failed to bind GITHUB_TOKEN: %w", err)
	}

	if err := vl.v.ReadInConfig(); err != nil {
		return fmt.Errorf("[ERROR][CONFIG] failed to read config file: %w", err)
	}

	cfg, err := vl.unmarshal()
	if err != nil {
		return err
	}

	vl.mu.Lock()
	vl.cfg = cfg
	vl.mu.Unlock()

	return nil
}

func (vl *ViperLoader) unmarshal() (*Config, error) {
	cfg := &Config{}
	if err := vl.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("[ERROR][CONFIG] failed to unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("[ERROR][CONFIG] invalid config: %w", err)
	}
	return cfg, nil
}

func (vl *ViperLoader) reloadConfig() error {
	cfg, err := vl.unmarshal()
	if err != nil {
		return err
	}

	vl.mu.Lock()
	vl.cfg = cfg

	// Notify all registered callbacks
	callbacks := make([]func(*Config), len(vl.configChangeCallbacks))
	copy(callbacks, vl.configChangeCallbacks)
	vl.mu.Unlock()
	for _, callback := range callbacks {
		go callback(cfg)
	}

	fmt.Println("[INFO][CONFIG] Configuration reloaded successfully")
	return nil
}
