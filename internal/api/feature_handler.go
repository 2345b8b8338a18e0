package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"RoundFeatures/internal/feature"
	"RoundFeatures/internal/interfaces"
	"RoundFeatures/internal/repository"
	"RoundFeatures/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FeatureHandler 特征表构建与查询接口
type FeatureHandler struct {
	buildService     *service.FeatureBuildService
	splitService     *service.PositionSplitService
	teamStatsService *service.TeamStatsService
	queryService     *service.QueryService
	logger           *logrus.Logger
}

// NewFeatureHandler 创建 FeatureHandler
func NewFeatureHandler(build *service.FeatureBuildService, split *service.PositionSplitService, teamStats *service.TeamStatsService, query *service.QueryService, logger *logrus.Logger) *FeatureHandler {
	return &FeatureHandler{
		buildService:     build,
		splitService:     split,
		teamStatsService: teamStats,
		queryService:     query,
		logger:           logger,
	}
}

// buildStatus 构建失败的 HTTP 状态：输入数据或配置问题返回 422，其他 500
func buildStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrSeasonRequired):
		return http.StatusBadRequest
	case errors.Is(err, feature.ErrStructural), errors.Is(err, feature.ErrInvalidOptions):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// BuildFeatures 构建指定赛季的特征表
// @Router /features/build/{season} [post]
func (h *FeatureHandler) BuildFeatures(c *gin.Context) {
	season := c.Param("season")
	run, err := h.buildService.Run(c.Request.Context(), season)
	if err != nil {
		h.logger.WithError(err).WithField("season", season).Error("BuildFeatures failed")
		c.JSON(buildStatus(err), gin.H{"error": err.Error(), "run": run})
		return
	}
	c.JSON(http.StatusOK, run)
}

// SplitFeatures 从已有特征表重新生成位置子表
// @Router /features/split/{season} [post]
func (h *FeatureHandler) SplitFeatures(c *gin.Context) {
	season := c.Param("season")
	tables, err := h.splitService.SplitExisting(c.Request.Context(), season)
	if err != nil {
		h.logger.WithError(err).WithField("season", season).Error("SplitFeatures failed")
		status := buildStatus(err)
		if errors.Is(err, repository.ErrTableNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

// BuildTeamStats 由赛程生成 team_stats 表
// @Router /team-stats/build/{season} [post]
func (h *FeatureHandler) BuildTeamStats(c *gin.Context) {
	season := c.Param("season")
	n, err := h.teamStatsService.Run(c.Request.Context(), season)
	if err != nil {
		h.logger.Errorf("生成%s赛季球队数据失败: %v", season, err)
		c.JSON(buildStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%s赛季球队数据生成成功", season),
		"rows":    n,
	})
}

// ListFeatures 特征行分页查询
// GET /api/features/:season?view=GK&entity_id=10&round=3&page=1&page_size=20
func (h *FeatureHandler) ListFeatures(c *gin.Context) {
	var filter interfaces.FeatureFilter
	if v := c.Query("entity_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity_id"})
			return
		}
		filter.EntityID = id
	}
	if v := c.Query("round"); v != "" {
		round, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid round"})
			return
		}
		filter.Round = round
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.queryService.ListFeatures(c.Request.Context(), c.Param("season"), c.Query("view"), filter, page, pageSize)
	if err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("ListFeatures failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
