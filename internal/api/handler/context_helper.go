package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "ums-obe/backend/pkg/errors"
	"ums-obe/backend/pkg/response"
)

// MustParam 读取路径参数，为空时写入 400 响应；调用方应在 ok=false 时直接 return
func MustParam(c *gin.Context, name string) (string, bool) {
	v := c.Param(name)
	if v == "" {
		response.BadRequest(c, 10001, name+" 不能为空")
		return "", false
	}
	return v, true
}

// BindJSON 解析请求体；binding 校验失败时返回字段明细
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Validation(c, 10001, apperrors.FromValidator(err))
		return false
	}
	return true
}
