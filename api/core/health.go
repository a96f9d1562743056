package core

import (
	"net/http"
	"time"

	"github.com/aivory/fitstudio/config"
	"github.com/gin-gonic/gin"
)

// healthHandler 汇总数据库和缓存的健康状态
func healthHandler(deps *ServerDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{
			"database": checkDatabaseHealth(deps),
			"cache":    checkCacheHealth(deps),
		}

		httpStatus := http.StatusOK
		for _, checkResult := range checks {
			if result, ok := checkResult.(string); ok && result != "ok" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(httpStatus, gin.H{
			"status":  statusWord(httpStatus),
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks":  checks,
		})
	}
}

func statusWord(httpStatus int) string {
	if httpStatus == http.StatusOK {
		return "ok"
	}
	return "degraded"
}

func checkDatabaseHealth(deps *ServerDependencies) string {
	if deps.DBProvider == nil {
		return "not initialized"
	}
	if err := deps.DBProvider.Ping(); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkCacheHealth(deps *ServerDependencies) string {
	if deps.CacheProvider == nil {
		return "not initialized"
	}
	return "ok"
}
