package api

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxPhotoBytes 头像上传大小上限。
const maxPhotoBytes = 4 << 20

var allowedPhotoExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// UpdateProfilePhoto 接收 multipart 字段 photo，替换当前用户的头像。
// 路径 id 必须是当前用户自己。
func (h *HTTPHandler) UpdateProfilePhoto(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	requestUser := CurrentUser(c)
	if requestUser == nil || requestUser.ID != id {
		Forbidden(c, "cannot update another user's photo")
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "photo file is required")
		return
	}
	if fileHeader.Size > maxPhotoBytes {
		ErrorResponse(c, http.StatusUnprocessableEntity, "photo exceeds the 4MB size limit")
		return
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileHeader.Filename), "."))
	if !allowedPhotoExtensions[ext] {
		ErrorResponse(c, http.StatusUnprocessableEntity, "unsupported image format")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logrus.WithError(err).Error("failed to open uploaded photo")
		InternalError(c, "failed to read uploaded photo")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		logrus.WithError(err).Error("failed to read uploaded photo")
		InternalError(c, "failed to read uploaded photo")
		return
	}
	if len(data) > maxPhotoBytes {
		ErrorResponse(c, http.StatusUnprocessableEntity, "photo exceeds the 4MB size limit")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	media, err := h.accountService.UpdateProfilePhoto(ctx, id, data, ext)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "profile photo updated", gin.H{
		"photo_url": h.publicURL(media.File),
	})
}
