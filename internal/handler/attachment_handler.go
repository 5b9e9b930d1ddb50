package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/bitfantasy/nimo-mfg/internal/service"
	"github.com/gin-gonic/gin"
)

// AttachmentHandler 单据附件处理器
type AttachmentHandler struct {
	svc *service.AttachmentService
}

func NewAttachmentHandler(svc *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

// Upload 上传附件，multipart/form-data，字段 file
func (h *AttachmentHandler) Upload(c *gin.Context) {
	docType := c.Param("docType")
	docID := c.Param("docId")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attachment, err := h.svc.Upload(c.Request.Context(), docType, docID, GetUserID(c), file, fileHeader.Filename, fileHeader.Size, contentType)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, attachment)
}

func (h *AttachmentHandler) List(c *gin.Context) {
	attachments, err := h.svc.ListByDoc(c.Param("docType"), c.Param("docId"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, attachments)
}

func (h *AttachmentHandler) Download(c *gin.Context) {
	object, attachment, err := h.svc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	defer object.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, attachment.FileName))
	c.Header("Content-Type", attachment.ContentType)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, object)
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}
