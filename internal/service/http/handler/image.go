package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"github.com/reusedev/comfy-hub/config"
	"github.com/reusedev/comfy-hub/internal/components/mysql"
	"github.com/reusedev/comfy-hub/internal/consts"
	"github.com/reusedev/comfy-hub/internal/modules/cache"
	"github.com/reusedev/comfy-hub/internal/modules/dao"
	"github.com/reusedev/comfy-hub/internal/modules/logs"
	"github.com/reusedev/comfy-hub/internal/modules/model"
	"github.com/reusedev/comfy-hub/internal/modules/storage/ali"
	"github.com/reusedev/comfy-hub/internal/modules/storage/local"
	"github.com/reusedev/comfy-hub/internal/service/http/handler/request"
	"github.com/reusedev/comfy-hub/internal/service/http/handler/response"
	"github.com/reusedev/comfy-hub/tools"
)

const thumbnailRatio = 0.25

func UploadImage(c *gin.Context) {
	form := request.UploadImage{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if err := form.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamErrorWithMessage(err.Error()))
		return
	}
	file, err := form.File.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	defer file.Close()

	record := model.InputImage{
		StorageSupplierName: config.GConfig.StorageSupplier,
	}
	switch consts.StorageSupplier(config.GConfig.StorageSupplier) {
	case consts.StorageLocal:
		path := filepath.Join(config.GConfig.StorageDir, form.File.Filename)
		if err := local.SaveFile(file, path); err != nil {
			logs.Logger.Err(err).Msg("save input image")
			c.JSON(http.StatusInternalServerError, response.InternalError)
			return
		}
		record.Path = form.File.Filename
	case consts.StorageAliOSS:
		key, err := ali.OssClient.UploadFileWithName(form.File.Filename, file)
		if err != nil {
			logs.Logger.Err(err).Msg("upload input image")
			c.JSON(http.StatusInternalServerError, response.InternalError)
			return
		}
		record.Key = key
	default:
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	if err := mysql.DB.Model(&model.InputImage{}).Create(&record).Error; err != nil {
		logs.Logger.Err(err).Msg("create input image record")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(record))
}

func GetImage(c *gin.Context) {
	form := request.GetImage{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if err := form.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamErrorWithMessage(err.Error()))
		return
	}
	form.FullWithDefault()

	if cached, err := cache.ImageCacheManager().GetValue(form.CacheKey()); err == nil && cached != "" {
		ret, err := response.DecodeGetImage(cached)
		if err == nil {
			c.JSON(http.StatusOK, response.SuccessWithData(ret))
			return
		}
	}

	var path, key string
	if form.Type == "input" {
		record, err := dao.InputImageById(form.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ParamError)
			return
		}
		path, key = record.Path, record.Key
	} else {
		record, err := dao.OutputImageById(form.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ParamError)
			return
		}
		path, key = record.Path, record.Key
	}

	if form.ThumbNail {
		serveThumbnail(c, path, key)
		return
	}

	ret := &response.GetImage{}
	switch {
	case key != "":
		expire, _ := time.ParseDuration(form.Expire)
		url, err := ali.OssClient.URL(key, expire)
		if err != nil {
			logs.Logger.Err(err).Msg("presign image url")
			c.JSON(http.StatusInternalServerError, response.InternalError)
			return
		}
		ret.URL = url
	default:
		ret.Path = filepath.Join(config.GConfig.StorageDir, path)
		ret.URL = ret.Path
	}
	if marshalled, err := ret.Encode(); err == nil {
		expire, _ := time.ParseDuration(form.Expire)
		if expire > 5*time.Minute {
			expire = 5 * time.Minute
		}
		_ = cache.ImageCacheManager().SetWithExpiration(form.CacheKey(), marshalled, expire)
	}
	c.JSON(http.StatusOK, response.SuccessWithData(ret))
}

// serveThumbnail streams a scaled-down jpeg of the stored image.
func serveThumbnail(c *gin.Context, path, key string) {
	var data []byte
	var err error
	if key != "" {
		url, presignErr := ali.OssClient.URL(key, time.Hour)
		if presignErr != nil {
			logs.Logger.Err(presignErr).Msg("presign for thumbnail")
			c.JSON(http.StatusInternalServerError, response.InternalError)
			return
		}
		data, _, err = tools.GetOnlineImage(url)
	} else {
		data, err = os.ReadFile(filepath.Join(config.GConfig.StorageDir, path))
	}
	if err != nil {
		logs.Logger.Err(err).Msg("read image for thumbnail")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	thumb, err := tools.ThumbnailBytes(data, thumbnailRatio, imaging.JPEG)
	if err != nil {
		logs.Logger.Err(err).Msg("build thumbnail")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", thumb)
}
