package dto

// MediaUploadDTO 上传结果
type MediaUploadDTO struct {
	URL      string `json:"url"`
	ThumbURL string `json:"thumb_url,omitempty"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}
