package controller

import (
	"exam_trainer_backend/internal/service"
	"exam_trainer_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type HistoryController struct {
	Service *service.HistoryService
}

func NewHistoryController(svc *service.HistoryService) *HistoryController {
	return &HistoryController{Service: svc}
}

// @Summary 获取历史成绩列表
// @Tags 历史模块
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /history [get]
func (c *HistoryController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	records, total, err := c.Service.List(user.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  records,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 获取历史成绩汇总
// @Description 考试场次、平均百分比（四舍五入）、最好成绩
// @Tags 历史模块
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /history/stats [get]
func (c *HistoryController) Stats(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.Service.Stats(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// @Summary 导出一条历史成绩报告
// @Tags 历史模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "记录ID"
// @Success 200 {object} util.Response
// @Router /history/{id}/export [post]
func (c *HistoryController) Export(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	url, err := c.Service.Export(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		if err == util.ErrRecordNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}
