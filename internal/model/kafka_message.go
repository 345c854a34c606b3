package model

// DeveloperMessage là bản ghi developer gửi tới Kafka sau mỗi lần chạy
type DeveloperMessage struct {
	RunID      string    `json:"run_id"`
	UpdateTime string    `json:"update_time"`
	Developer  Developer `json:"developer"`
}
