package public

import (
	"strconv"
	"strings"

	handlershared "github.com/vanmart/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (string, bool) {
	return handlershared.GetUserID(c)
}

func optionalUserID(c *gin.Context) string {
	return handlershared.OptionalUserID(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondErrorWithMsg(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

// parsePageQuery 读取 page / page_size 查询参数
func parsePageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return normalizePagination(page, pageSize)
}

// pathID 读取路径参数，空值时返回 false
func pathID(c *gin.Context, name string) (string, bool) {
	id := strings.TrimSpace(c.Param(name))
	return id, id != ""
}
