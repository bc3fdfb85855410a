package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode 错误码类型
type ErrorCode int

// 错误码定义（按模块分组）
const (
	// 通用错误 (1000-1999)
	ErrUnknown          ErrorCode = 1000
	ErrInvalidParam     ErrorCode = 1001
	ErrNotFound         ErrorCode = 1002
	ErrPermissionDenied ErrorCode = 1004
	ErrTimeout          ErrorCode = 1005
	ErrNotImplemented   ErrorCode = 1007

	// 业务错误 (2000-2999)
	ErrInvalidCharacter   ErrorCode = 2000
	ErrInvalidSnapshot    ErrorCode = 2001
	ErrInvalidReason      ErrorCode = 2002
	ErrInvalidCombo       ErrorCode = 2003
	ErrMainCharacterUnset ErrorCode = 2004
	ErrInvalidPeriod      ErrorCode = 2005
	ErrBackupNotFound     ErrorCode = 2006

	// Discord错误 (3000-3999)
	ErrDiscordLogin       ErrorCode = 3000
	ErrDiscordRateLimited ErrorCode = 3001
	ErrDiscordRespond     ErrorCode = 3002
	ErrDiscordRegister    ErrorCode = 3003

	// 存储错误 (4000-4999)
	ErrObjectStoreConfig ErrorCode = 4000
	ErrObjectUpload      ErrorCode = 4001

	// 数据库错误 (5000-5999)
	ErrDatabaseConnect ErrorCode = 5000
	ErrDatabaseQuery   ErrorCode = 5001
	ErrDatabaseInsert  ErrorCode = 5002
	ErrDatabaseUpdate  ErrorCode = 5003
	ErrDatabaseDelete  ErrorCode = 5004
	ErrTransaction     ErrorCode = 5005
	ErrDataIntegrity   ErrorCode = 5006

	// 配置错误 (6000-6999)
	ErrConfigLoad     ErrorCode = 6000
	ErrConfigParse    ErrorCode = 6001
	ErrConfigValidate ErrorCode = 6002
	ErrConfigMissing  ErrorCode = 6003

	// 安全错误 (7000-7999)
	ErrAuthentication    ErrorCode = 7000
	ErrTokenExpired      ErrorCode = 7002
	ErrTokenInvalid      ErrorCode = 7003
	ErrRateLimitExceeded ErrorCode = 7004
)

// 错误码消息映射
var errorMessages = map[ErrorCode]string{
	// 通用错误
	ErrUnknown:          "未知错误",
	ErrInvalidParam:     "无效的参数",
	ErrNotFound:         "资源未找到",
	ErrPermissionDenied: "权限不足",
	ErrTimeout:          "操作超时",
	ErrNotImplemented:   "功能未实现",

	// 业务错误
	ErrInvalidCharacter:   "无效的角色名",
	ErrInvalidSnapshot:    "无效的备份数据",
	ErrInvalidReason:      "无效的败因",
	ErrInvalidCombo:       "无效的连段",
	ErrMainCharacterUnset: "未设置主用角色",
	ErrInvalidPeriod:      "无效的统计期间",
	ErrBackupNotFound:     "备份不存在",

	// Discord错误
	ErrDiscordLogin:       "Discord登录失败",
	ErrDiscordRateLimited: "Discord请求频率受限",
	ErrDiscordRespond:     "Discord响应失败",
	ErrDiscordRegister:    "Discord命令注册失败",

	// 存储错误
	ErrObjectStoreConfig: "对象存储配置错误",
	ErrObjectUpload:      "对象上传失败",

	// 数据库错误
	ErrDatabaseConnect: "数据库连接失败",
	ErrDatabaseQuery:   "数据库查询失败",
	ErrDatabaseInsert:  "数据库插入失败",
	ErrDatabaseUpdate:  "数据库更新失败",
	ErrDatabaseDelete:  "数据库删除失败",
	ErrTransaction:     "事务处理失败",
	ErrDataIntegrity:   "数据完整性错误",

	// 配置错误
	ErrConfigLoad:     "配置加载失败",
	ErrConfigParse:    "配置解析失败",
	ErrConfigValidate: "配置验证失败",
	ErrConfigMissing:  "配置项缺失",

	// 安全错误
	ErrAuthentication:    "认证失败",
	ErrTokenExpired:      "令牌已过期",
	ErrTokenInvalid:      "无效的令牌",
	ErrRateLimitExceeded: "请求频率超限",
}

// 面向Discord用户的提示（日语）
var userMessages = map[ErrorCode]string{
	ErrInvalidParam:       "入力内容が正しくありません。",
	ErrNotFound:           "指定されたデータが見つからないか、操作する権限がありません。",
	ErrPermissionDenied:   "このコマンドを実行する権限がありません。",
	ErrInvalidCharacter:   "無効なキャラクター名です。候補から選択してください。",
	ErrInvalidSnapshot:    "バックアップデータの形式が正しくありません。",
	ErrInvalidReason:      "敗因の指定が正しくありません。",
	ErrInvalidCombo:       "コンボの入力内容が正しくありません。",
	ErrMainCharacterUnset: "まず `/gs` コマンドでメインキャラクターを設定してください。",
	ErrInvalidPeriod:      "期間の指定が正しくありません。",
	ErrBackupNotFound:     "バックアップが見つかりません。",
}

// 默认的用户提示
const defaultUserMessage = "エラーが発生しました。しばらくしてから再度お試しください。"

// AppError 应用错误结构
type AppError struct {
	Code    ErrorCode    `json:"code"`            // 错误码
	Message string       `json:"message"`         // 错误消息
	Details string       `json:"details"`         // 详细信息
	Cause   error        `json:"-"`               // 原始错误
	Stack   []StackFrame `json:"-"`               // 调用栈，只写日志
}

// StackFrame 调用栈帧
type StackFrame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New 创建新的应用错误
func New(code ErrorCode, details ...string) *AppError {
	message, ok := errorMessages[code]
	if !ok {
		message = errorMessages[ErrUnknown]
	}

	err := &AppError{
		Code:    code,
		Message: message,
	}

	if len(details) > 0 {
		err.Details = strings.Join(details, "; ")
	}

	// 捕获调用栈
	err.captureStack(2)

	return err
}

// Newf 创建格式化的应用错误
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	details := fmt.Sprintf(format, args...)
	return New(code, details)
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, details ...string) *AppError {
	if err == nil {
		return nil
	}

	// 如果已经是AppError，保留原始错误码
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if len(details) > 0 {
			appErr.Details = strings.Join(details, "; ") + "; " + appErr.Details
		}
		return appErr
	}

	appErr = New(code, details...)
	appErr.Cause = err
	if appErr.Details == "" {
		appErr.Details = err.Error()
	}

	return appErr
}

// Is 判断错误是否为指定错误码
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// GetCode 获取错误码
func GetCode(err error) ErrorCode {
	if err == nil {
		return 0
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}

	return ErrUnknown
}

// UserMessage 返回可展示给Discord用户的提示，不包含内部细节
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg, ok := userMessages[GetCode(err)]; ok {
		return msg
	}
	return defaultUserMessage
}

// IsValidation 判断是否为用户输入导致的错误
func IsValidation(err error) bool {
	code := GetCode(err)
	return code == ErrInvalidParam || (code >= 2000 && code <= 2999)
}

// captureStack 捕获调用栈
func (e *AppError) captureStack(skip int) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)

	if n > 0 {
		frames := runtime.CallersFrames(pcs[:n])
		for {
			frame, more := frames.Next()

			// 跳过runtime和本包的调用
			if strings.Contains(frame.Function, "runtime.") ||
				strings.Contains(frame.Function, "github.com/wfunc/ggst-notebot/internal/errors.") {
				if !more {
					break
				}
				continue
			}

			e.Stack = append(e.Stack, StackFrame{
				Function: frame.Function,
				File:     frame.File,
				Line:     frame.Line,
			})

			if !more {
				break
			}

			// 只保留前10个栈帧
			if len(e.Stack) >= 10 {
				break
			}
		}
	}
}

// GetStack 获取格式化的调用栈
func (e *AppError) GetStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, frame := range e.Stack {
		builder.WriteString(fmt.Sprintf("%d. %s\n   %s:%d\n",
			i+1, frame.Function, frame.File, frame.Line))
	}

	return builder.String()
}

// HTTPStatus 返回对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	switch {
	case e.Code == ErrNotFound || e.Code == ErrBackupNotFound:
		return 404 // Not Found
	case e.Code == ErrInvalidParam:
		return 400 // Bad Request
	case e.Code >= 2000 && e.Code <= 2999:
		return 400
	case e.Code == ErrPermissionDenied:
		return 403 // Forbidden
	case e.Code == ErrTimeout:
		return 408 // Request Timeout
	case e.Code == ErrRateLimitExceeded:
		return 429 // Too Many Requests
	case e.Code >= 7000 && e.Code <= 7003:
		return 401 // Unauthorized
	case e.Code >= 5000 && e.Code <= 5999:
		return 503 // Service Unavailable
	default:
		return 500 // Internal Server Error
	}
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch GetCode(err) {
	case ErrTimeout,
		ErrDiscordRateLimited,
		ErrDatabaseConnect:
		return true
	default:
		return false
	}
}

// ErrorResponse API错误响应结构
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     *AppError `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(err *AppError, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     err,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}
