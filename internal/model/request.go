package model

// ChatRequest 对话请求
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// CVERequest CVE 解读请求
type CVERequest struct {
	CVEID          string `json:"cve_id" binding:"required"`
	CVEDescription string `json:"cve_description" binding:"required"`
}
