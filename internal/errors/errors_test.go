package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

func (suite *ErrorsTestSuite) TestNew() {
	err := New(ErrInvalidCharacter)
	suite.Equal(ErrInvalidCharacter, err.Code)
	suite.Equal("无效的角色名", err.Message)
	suite.Empty(err.Details)
	suite.Equal("[2000] 无效的角色名", err.Error())

	err = New(ErrInvalidCombo, "move1为空", "move2为空")
	suite.Equal("move1为空; move2为空", err.Details)
	suite.Equal("[2003] 无效的连段: move1为空; move2为空", err.Error())

	err = Newf(ErrInvalidParam, "tension=%d", 75)
	suite.Equal("tension=75", err.Details)

	unknown := New(ErrorCode(99999))
	suite.Equal(ErrorCode(99999), unknown.Code)
	suite.Equal("未知错误", unknown.Message)
}

func (suite *ErrorsTestSuite) TestWrap() {
	suite.Nil(Wrap(nil, ErrUnknown))

	cause := errors.New("database is locked")
	wrapped := Wrap(cause, ErrDatabaseInsert)
	suite.Equal(ErrDatabaseInsert, wrapped.Code)
	suite.Equal("database is locked", wrapped.Details)
	suite.Equal(cause, wrapped.Unwrap())
	suite.Nil(New(ErrUnknown).Unwrap())

	// 已经是AppError时保留原错误码
	inner := New(ErrBackupNotFound, "id=3")
	outer := Wrap(inner, ErrDatabaseQuery, "恢复")
	suite.Equal(ErrBackupNotFound, outer.Code)
	suite.Equal("恢复; id=3", outer.Details)
}

func (suite *ErrorsTestSuite) TestIsAndGetCode() {
	err := New(ErrPermissionDenied)
	suite.True(Is(err, ErrPermissionDenied))
	suite.False(Is(err, ErrNotFound))
	suite.False(Is(nil, ErrPermissionDenied))
	suite.False(Is(errors.New("plain"), ErrUnknown))

	wrapped := fmt.Errorf("记录对战: %w", New(ErrInvalidCharacter, "ソル"))
	suite.True(Is(wrapped, ErrInvalidCharacter))
	suite.Equal(ErrInvalidCharacter, GetCode(wrapped))

	suite.Equal(ErrUnknown, GetCode(errors.New("plain")))
	suite.Equal(ErrorCode(0), GetCode(nil))
}

func (suite *ErrorsTestSuite) TestHTTPStatus() {
	testCases := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrInvalidParam, 400},
		{ErrInvalidSnapshot, 400},
		{ErrNotFound, 404},
		{ErrBackupNotFound, 404},
		{ErrPermissionDenied, 403},
		{ErrTimeout, 408},
		{ErrAuthentication, 401},
		{ErrTokenInvalid, 401},
		{ErrRateLimitExceeded, 429},
		{ErrDatabaseConnect, 503},
		{ErrDiscordLogin, 500},
		{ErrUnknown, 500},
	}

	for _, tc := range testCases {
		suite.Equal(tc.expected, New(tc.code).HTTPStatus(), "错误码 %d", tc.code)
	}
}

func (suite *ErrorsTestSuite) TestIsRetryable() {
	for _, code := range []ErrorCode{ErrTimeout, ErrDiscordRateLimited, ErrDatabaseConnect} {
		suite.True(IsRetryable(New(code)), "错误码 %d", code)
	}
	for _, code := range []ErrorCode{ErrInvalidParam, ErrInvalidCharacter, ErrNotFound, ErrDiscordLogin} {
		suite.False(IsRetryable(New(code)), "错误码 %d", code)
	}
	suite.False(IsRetryable(nil))
}

func (suite *ErrorsTestSuite) TestStackStaysOutOfResponses() {
	err := New(ErrDatabaseQuery)
	suite.NotEmpty(err.Stack)
	suite.NotEmpty(err.GetStack())

	raw, jerr := json.Marshal(NewErrorResponse(err, "req-123"))
	suite.Require().NoError(jerr)
	suite.NotContains(string(raw), "stack")
	suite.Contains(string(raw), `"request_id":"req-123"`)
	suite.Contains(string(raw), `"success":false`)
}

func (suite *ErrorsTestSuite) TestMessages() {
	messages := map[ErrorCode]string{
		ErrInvalidCharacter:   "无效的角色名",
		ErrInvalidSnapshot:    "无效的备份数据",
		ErrInvalidReason:      "无效的败因",
		ErrInvalidCombo:       "无效的连段",
		ErrMainCharacterUnset: "未设置主用角色",
		ErrInvalidPeriod:      "无效的统计期间",
		ErrBackupNotFound:     "备份不存在",
		ErrDatabaseConnect:    "数据库连接失败",
		ErrDatabaseQuery:      "数据库查询失败",
		ErrTransaction:        "事务处理失败",
	}

	for code, expected := range messages {
		suite.Equal(expected, New(code).Message)
	}
}

func (suite *ErrorsTestSuite) TestUserMessage() {
	suite.Equal("", UserMessage(nil))
	suite.Contains(UserMessage(New(ErrInvalidCharacter)), "キャラクター名")
	suite.Contains(UserMessage(New(ErrMainCharacterUnset)), "/gs")

	// 内部错误不暴露细节
	dbErr := Wrap(errors.New("no such table: matches"), ErrDatabaseQuery)
	msg := UserMessage(dbErr)
	suite.Equal(defaultUserMessage, msg)
	suite.NotContains(msg, "matches")
	suite.Equal(defaultUserMessage, UserMessage(errors.New("boom")))
}

func (suite *ErrorsTestSuite) TestIsValidation() {
	suite.True(IsValidation(New(ErrInvalidParam)))
	suite.True(IsValidation(New(ErrInvalidSnapshot)))
	suite.True(IsValidation(fmt.Errorf("wrap: %w", New(ErrInvalidPeriod))))
	suite.False(IsValidation(New(ErrDatabaseQuery)))
	suite.False(IsValidation(nil))
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
