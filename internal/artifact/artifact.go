// Package artifact ghi và đọc file JSON xếp hạng mà trang tĩnh sử dụng.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thep200/github-ranking/internal/model"
)

// Write thay toàn bộ file: ghi ra file tạm cùng thư mục rồi rename đè lên path.
func Write(path string, updateTime time.Time, developers []model.Developer) error {
	if developers == nil {
		developers = []model.Developer{}
	}
	ranking := model.Ranking{
		UpdateTime: model.FormatISO(updateTime),
		Developers: developers,
	}

	raw, err := json.MarshalIndent(ranking, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace artifact %s: %w", path, err)
	}
	return nil
}

func Read(path string) (*model.Ranking, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	return Decode(raw)
}

func Decode(raw []byte) (*model.Ranking, error) {
	ranking := &model.Ranking{}
	if err := json.Unmarshal(raw, ranking); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if ranking.Developers == nil {
		ranking.Developers = []model.Developer{}
	}
	return ranking, nil
}
