package web

type SaveVideoResponse struct {
	Path string `json:"path"`
}
