package handler

import (
	"UniMarket/internal/api/dto"
	"UniMarket/internal/pkg/consts"
	"UniMarket/internal/pkg/minio"
	"UniMarket/internal/pkg/response"
	"UniMarket/internal/pkg/util"
	"UniMarket/internal/service"
	"bytes"
	"image/jpeg"
	log "log/slog"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 列表页缩略图宽度
const thumbWidth = 400

type MediaHandler struct{}

func NewMediaHandler() *MediaHandler {
	return &MediaHandler{}
}

// Upload 上传商品/聊天图片，同步生成缩略图
func (s *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer func() { _ = reader.Close() }()

	contentType, err := util.GetSafeContentType(reader)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if !strings.HasPrefix(contentType, consts.MimePrefixImage) {
		response.Error(c, service.ErrFileNotSupported)
		return
	}

	ext := path.Ext(file.Filename)
	objectName := time.Now().Format("2006/01/02/") + uuid.NewString() + ext

	fileKey, err := minio.UploadFile(c.Request.Context(), objectName, reader, file.Size, contentType)
	if err != nil {
		log.ErrorContext(c, "MinIO upload failed", "err", err)
		response.Error(c, service.UnExpectedError)
		return
	}

	result := &dto.MediaUploadDTO{
		URL:      minio.GetPublicURL(fileKey),
		MimeType: contentType,
		Size:     file.Size,
	}

	// 缩略图失败不阻塞上传，列表页回退到原图
	if thumbKey, err := s.uploadThumbnail(c, objectName); err == nil {
		result.ThumbURL = minio.GetPublicURL(thumbKey)
	} else {
		log.WarnContext(c, "generate thumbnail failed", "fileKey", fileKey, "err", err)
	}

	log.InfoContext(c, "media upload success", "fileKey", fileKey, "type", contentType)
	response.Success(c, result)
}

func (s *MediaHandler) uploadThumbnail(c *gin.Context, objectName string) (string, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", err
	}
	reader, err := file.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = reader.Close() }()

	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		return "", err
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err = jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return "", err
	}

	thumbName := strings.TrimSuffix(objectName, path.Ext(objectName)) + "_thumb.jpg"
	return minio.UploadFile(c.Request.Context(), thumbName, &buf, int64(buf.Len()), "image/jpeg")
}
