package public

import (
	"strconv"
	"strings"

	"github.com/vanmart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListMessages 站内消息列表
func (h *Handler) ListMessages(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, pageSize := parsePageQuery(c)
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	result, err := h.MessageService.ListMessages(c.Request.Context(), uid, strings.TrimSpace(c.Query("type")), unreadOnly, page, pageSize)
	if err != nil {
		respondMessageError(c, err)
		return
	}

	response.SuccessWithPage(c, gin.H{
		"items":        result.Items,
		"unread_count": result.UnreadCount,
	}, response.BuildPagination(page, pageSize, result.Total))
}

// MarkMessageRead 标记单条消息已读
func (h *Handler) MarkMessageRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathID(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "消息ID无效", nil)
		return
	}

	if err := h.MessageService.MarkRead(c.Request.Context(), uid, messageID); err != nil {
		respondMessageError(c, err)
		return
	}

	response.Success(c, nil)
}

// MarkAllMessagesRead 全部标记已读
func (h *Handler) MarkAllMessagesRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	updated, err := h.MessageService.MarkAllRead(c.Request.Context(), uid)
	if err != nil {
		respondMessageError(c, err)
		return
	}

	response.Success(c, gin.H{"updated": updated})
}
