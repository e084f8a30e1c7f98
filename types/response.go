package types

type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
}

type SignupResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ProcessResponse struct {
	Documents    int        `json:"documents"`
	Pages        int        `json:"pages"`
	SkippedPages int        `json:"skipped_pages"`
	Chunks       int        `json:"chunks"`
	Index        *IndexInfo `json:"index"`
}
