package crawler

import (
	"strings"

	"github.com/thep200/github-ranking/internal/model"
)

type DedupeStats struct {
	Total         int
	Duplicates    int
	Organizations int
	Unique        int
}

// Dedupe giữ lần xuất hiện đầu tiên của mỗi id theo thứ tự gốc.
// Tài khoản trong denylist (không phân biệt hoa thường) bị loại trước khi ghi nhận id,
// nên mỗi lần xuất hiện lại của nó đều được đếm vào Organizations.
func Dedupe(hits []model.SearchHit, denylist []string) ([]model.SearchHit, DedupeStats) {
	deny := make(map[string]struct{}, len(denylist))
	for _, org := range denylist {
		deny[strings.ToLower(org)] = struct{}{}
	}

	stats := DedupeStats{Total: len(hits)}
	seen := make(map[int64]struct{}, len(hits))
	unique := make([]model.SearchHit, 0, len(hits))

	for _, hit := range hits {
		if _, ok := seen[hit.ID]; ok {
			stats.Duplicates++
			continue
		}
		if _, ok := deny[strings.ToLower(hit.Login)]; ok {
			stats.Organizations++
			continue
		}
		seen[hit.ID] = struct{}{}
		unique = append(unique, hit)
	}

	stats.Unique = len(unique)
	return unique, stats
}

// Classifier xếp developer vào nhóm markdown nếu login nằm đúng trong danh sách tác giả markdown
type Classifier struct {
	markdown map[string]struct{}
}

func NewClassifier(markdownAuthors []string) *Classifier {
	markdown := make(map[string]struct{}, len(markdownAuthors))
	for _, login := range markdownAuthors {
		markdown[login] = struct{}{}
	}
	return &Classifier{markdown: markdown}
}

func (c *Classifier) Classify(login string) model.Kind {
	if _, ok := c.markdown[login]; ok {
		return model.KindMarkdown
	}
	return model.KindCode
}
