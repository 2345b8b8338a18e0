package api

import (
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter 注册全部路由
func NewRouter(mode string, features *FeatureHandler, runs *RunHandler) *gin.Engine {
	gin.SetMode(mode)
	r := gin.New()
	r.Use(gin.Recovery())
	if mode != gin.TestMode {
		r.Use(gin.Logger())
	}

	// 注册ppof 方便调试和监测性能问题
	pprof.Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	r.POST("/features/build/:season", features.BuildFeatures)
	r.POST("/features/split/:season", features.SplitFeatures)
	r.POST("/team-stats/build/:season", features.BuildTeamStats)
	r.GET("/api/features/:season", features.ListFeatures)

	r.GET("/api/runs", runs.ListRuns)
	r.GET("/api/runs/:run_uuid", runs.GetRun)
	return r
}
