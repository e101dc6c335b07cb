package controller

import (
	"errors"
	"exam_trainer_backend/internal/model"
	"exam_trainer_backend/internal/service"
	"exam_trainer_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	Sessions *service.SessionService
}

func NewExamController(sessions *service.SessionService) *ExamController {
	return &ExamController{Sessions: sessions}
}

// respondExamError 把会话层的哨兵错误映射为HTTP状态码
func respondExamError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNoActiveSession), errors.Is(err, util.ErrNoSnapshot), errors.Is(err, util.ErrQuestionNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrSessionInProgress), errors.Is(err, util.ErrSessionFinished):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrNotCodeQuestion):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, model.ErrCorruptSnapshot):
		util.Error(ctx, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, util.ErrGenerationFailed):
		util.Error(ctx, http.StatusBadGateway, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary 开始考试
// @Description 根据主题和难度生成题目并创建考试会话
// @Tags 考试模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.StartExamReq true "考试配置"
// @Success 201 {object} util.Response
// @Router /exam/start [post]
func (c *ExamController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.StartExamReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.Sessions.StartExam(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		respondExamError(ctx, err)
		return
	}

	util.Created(ctx, view)
}

// @Summary 获取当前考试会话
// @Tags 考试模块
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /exam/current [get]
func (c *ExamController) Current(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Sessions.Current(user.UserID)
	if err != nil {
		respondExamError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

type ChoiceAnswerReq struct {
	QuestionID string `json:"questionId" binding:"required"`
	OptionID   string `json:"optionId" binding:"required"`
}

// @Summary 提交选择题答案
// @Tags 考试模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body ChoiceAnswerReq true "答案"
// @Success 200 {object} util.Response
// @Router /exam/answer/choice [post]
func (c *ExamController) AnswerChoice(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ChoiceAnswerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Sessions.RecordChoice(user.UserID, req.QuestionID, req.OptionID); err != nil {
		respondExamError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"questionId": req.QuestionID})
}

type CodeAnswerReq struct {
	QuestionID string `json:"questionId" binding:"required"`
	Code       string `json:"code"`
}

// @Summary 保存编程题代码
// @Tags 考试模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CodeAnswerReq true "代码"
// @Success 200 {object} util.Response
// @Router /exam/answer/code [post]
func (c *ExamController) AnswerCode(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CodeAnswerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Sessions.RecordCode(user.UserID, req.QuestionID, req.Code); err != nil {
		respondExamError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"questionId": req.QuestionID})
}

// @Summary 提交代码判题
// @Description 调用外部AI判题，判题失败时返回固定的未通过结果
// @Tags 考试模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CodeAnswerReq true "代码"
// @Success 200 {object} util.Response
// @Router /exam/judge [post]
func (c *ExamController) Judge(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CodeAnswerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Sessions.JudgeQuestion(user.UserID, req.QuestionID, req.Code)
	if err != nil {
		respondExamError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 生成编程题测试用例
// @Tags 考试模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "题目ID"
// @Success 200 {object} util.Response
// @Router /exam/questions/{id}/testcases [get]
func (c *ExamController) TestCases(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	cases, err := c.Sessions.GenerateTestCases(user.UserID, ctx.Param("id"))
	if err != nil {
		respondExamError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"testCases": cases})
}

type GotoReq struct {
	Index int `json:"index"`
}

// @Summary 切换当前题目
// @Tags 考试模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body GotoReq true "题号"
// @Success 200 {object} util.Response
// @Router /exam/goto [post]
func (c *ExamController) Goto(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req GotoReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Sessions.GotoQuestion(user.UserID, req.Index); err != nil {
		respondExamError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"currentIndex": req.Index})
}

// @Summary 交卷
// @Description 评分并生成历史记录，清空已保存的快照
// @Tags 考试模块
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /exam/submit [post]
func (c *ExamController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Sessions.Submit(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondExamError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 保存并退出
// @Description 把进行中的考试保存为快照，丢弃内存会话
// @Tags 考试模块
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /exam/save [post]
func (c *ExamController) Save(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Sessions.SaveAndExit(ctx.Request.Context(), user.UserID); err != nil {
		respondExamError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"saved": true})
}

// @Summary 恢复已保存的考试
// @Tags 考试模块
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /exam/resume [post]
func (c *ExamController) Resume(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Sessions.Resume(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondExamError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary 是否存在可恢复的考试
// @Tags 考试模块
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /exam/resume/available [get]
func (c *ExamController) ResumeAvailable(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	available, err := c.Sessions.ResumeAvailable(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"available": available})
}

// @Summary 重新开始
// @Description 从成绩页回到配置页
// @Tags 考试模块
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /exam/restart [post]
func (c *ExamController) Restart(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Sessions.Restart(user.UserID); err != nil {
		respondExamError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"restarted": true})
}
