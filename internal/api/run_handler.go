package api

import (
	"errors"
	"net/http"
	"strconv"

	"RoundFeatures/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RunHandler 构建运行记录查询
type RunHandler struct {
	queryService *service.QueryService
	logger       *logrus.Logger
}

// NewRunHandler 创建 RunHandler
func NewRunHandler(query *service.QueryService, logger *logrus.Logger) *RunHandler {
	return &RunHandler{queryService: query, logger: logger}
}

// ListRuns 运行记录列表
// GET /api/runs?season=2025&page=1&page_size=20
func (h *RunHandler) ListRuns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.queryService.ListRuns(c.Request.Context(), c.Query("season"), page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListRuns failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetRun 运行记录详情
// GET /api/runs/:run_uuid
func (h *RunHandler) GetRun(c *gin.Context) {
	runUUID := c.Param("run_uuid")
	if runUUID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run_uuid is required"})
		return
	}

	run, err := h.queryService.GetRun(c.Request.Context(), runUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		h.logger.WithError(err).Error("GetRun failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}
