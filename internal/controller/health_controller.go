package controller

import (
	"courseware_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
	// Mode reports the active evaluation backend.
	Mode func() string
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, mode func() string) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Mode: mode}
}

// HealthCheck 健康检查
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.PingContext(ctx.Request.Context()); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	components := gin.H{"database": "up"}

	// 缓存不可用时仍可服务, 只降级
	switch {
	case c.Redis == nil:
		components["redis"] = "disabled"
	case c.Redis.Ping(ctx.Request.Context()).Err() != nil:
		components["redis"] = "down"
	default:
		components["redis"] = "up"
	}

	data := gin.H{
		"status":     "ok",
		"components": components,
	}
	if c.Mode != nil {
		data["evaluationMode"] = c.Mode()
	}
	util.Success(ctx, data)
}
