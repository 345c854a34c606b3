package crawler

import (
	"fmt"
	"strings"

	"github.com/thep200/github-ranking/cfg"
	githubapi "github.com/thep200/github-ranking/internal/github_api"
	"github.com/thep200/github-ranking/internal/model"
)

// partitionQuery dựng chuỗi q cho /search/users, chưa gồm type:user
func partitionQuery(p cfg.Partition) string {
	parts := make([]string, 0, 2)
	if p.Location != "" {
		parts = append(parts, "location:"+p.Location)
	}
	if p.Followers != "" {
		parts = append(parts, "followers:"+p.Followers)
	}
	return strings.Join(parts, " ")
}

func pageCacheKey(query, sort string, page int) string {
	return fmt.Sprintf("query:%s:sort:%s:page:%d", query, sort, page)
}

// toDeveloper: name rỗng thì dùng login
func toDeveloper(user *githubapi.UserResponse, kind model.Kind) model.Developer {
	name := user.Login
	if user.Name != nil && *user.Name != "" {
		name = *user.Name
	}
	return model.Developer{
		Login:           user.Login,
		Name:            name,
		AvatarURL:       user.AvatarURL,
		HTMLURL:         user.HTMLURL,
		Followers:       user.Followers,
		PublicRepos:     user.PublicRepos,
		Bio:             user.Bio,
		Location:        user.Location,
		TwitterUsername: user.TwitterUsername,
		Blog:            user.Blog,
		Company:         user.Company,
		Type:            kind,
	}
}

func countByKind(devs []model.Developer) map[string]int {
	counts := map[string]int{
		string(model.KindCode):     0,
		string(model.KindMarkdown): 0,
	}
	for _, d := range devs {
		counts[string(d.Type)]++
	}
	return counts
}
