package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/titanmarket/titanmarket-backend/internal/common"
	"github.com/titanmarket/titanmarket-backend/internal/service"
	"github.com/titanmarket/titanmarket-backend/pkg/ginutil"
)

// formImage opens the multipart "file" field. The caller must close the returned closer.
func formImage(c *gin.Context) (*service.UploadFile, io.Closer, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "file field is required", err)
		return nil, nil, false
	}
	f, err := header.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "could not read upload", err)
		return nil, nil, false
	}
	return &service.UploadFile{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  f,
	}, f, true
}

// paramID parses a positive numeric path parameter, writing a 400 on failure
func paramID(c *gin.Context, key string) (uint64, bool) {
	id, err := ginutil.ParamUint64(c, key)
	if err != nil || id == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid "+key, err)
		return 0, false
	}
	return id, true
}
