// Chuyển đổi phản hồi của GitHub REST API thành các cấu trúc Go

package githubapi

// SearchUserItem là một phần tử trong kết quả /search/users
type SearchUserItem struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Type  string `json:"type"`
}

type SearchUsersResponse struct {
	TotalCount        int              `json:"total_count"`
	IncompleteResults bool             `json:"incomplete_results"`
	Items             []SearchUserItem `json:"items"`
}

// UserResponse là chi tiết của /users/{login}; các trường có thể null là con trỏ
type UserResponse struct {
	ID              int64   `json:"id"`
	Login           string  `json:"login"`
	Name            *string `json:"name"`
	AvatarURL       string  `json:"avatar_url"`
	HTMLURL         string  `json:"html_url"`
	Followers       int     `json:"followers"`
	PublicRepos     int     `json:"public_repos"`
	Bio             *string `json:"bio"`
	Location        *string `json:"location"`
	TwitterUsername *string `json:"twitter_username"`
	Blog            *string `json:"blog"`
	Company         *string `json:"company"`
	Type            string  `json:"type"`
}

type RateLimitResource struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
	Used      int   `json:"used"`
}

type RateLimitResponse struct {
	Resources struct {
		Core   RateLimitResource `json:"core"`
		Search RateLimitResource `json:"search"`
	} `json:"resources"`
	Rate RateLimitResource `json:"rate"`
}

type errorBody struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}
