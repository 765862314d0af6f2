package response

import "github.com/gin-gonic/gin"

// 4xxxx 请求问题, 5xxxx 服务端问题
var (
	ParamError            = gin.H{"code": 40001, "message": "invalid request parameters"}
	ParamErrorWithMessage = func(message string) gin.H {
		return gin.H{"code": 40001, "message": message}
	}

	InternalError = gin.H{"code": 50001, "message": "internal error"}

	SuccessWithData = func(data interface{}) gin.H {
		return gin.H{"code": 0, "data": data}
	}
)
