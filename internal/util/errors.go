package util

import "errors"

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNoActiveSession     = errors.New("no active exam session")
	ErrSessionInProgress   = errors.New("an exam session is already in progress")
	ErrSessionFinished     = errors.New("exam session already finished")
	ErrQuestionNotFound    = errors.New("question not found in current exam")
	ErrNotCodeQuestion     = errors.New("question is not a code question")
	ErrNoSnapshot          = errors.New("no saved exam to resume")
	ErrRecordNotFound      = errors.New("exam record not found")
	ErrGenerationFailed    = errors.New("题目生成失败，请稍后重试")
)
