package http

import (
	"github.com/gin-gonic/gin"

	"github.com/reusedev/comfy-hub/internal/service/http/handler"
	"github.com/reusedev/comfy-hub/internal/service/http/middleware"
)

func Serve(port string) {
	e := gin.New()
	initRouter(e)
	if err := e.Run(port); err != nil {
		panic(err)
	}
}

func initRouter(e *gin.Engine) {
	e.Use(gin.Recovery())
	e.Use(middleware.RequestLogger())
	v1 := e.Group("/v1")
	task := v1.Group("/task")
	{
		task.POST("/generate", handler.Generate)
		task.GET("", handler.TaskQuery)
	}

	file := v1.Group("/images")
	{
		file.POST("", handler.UploadImage)
		file.GET("", handler.GetImage)
	}

	v1.GET("/models", handler.Models)
	v1.GET("/servers", handler.Servers)
}
