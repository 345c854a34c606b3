package cfg

import "fmt"

type Loader interface {
	Load() (*Config, error)
}

// NewLoader chọn loader theo tên: "viper" đọc file yaml, "mock" dùng cấu hình mặc định.
func NewLoader(kind string) (Loader, error) {
	switch kind {
	case "", "viper":
		return NewViperLoader()
	case "mock":
		return NewMockLoader()
	default:
		return nil, fmt.Errorf("[ERROR][CONFIG] unsupported loader: %s", kind)
	}
}
