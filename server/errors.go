package server

import "errors"

// Error 是会以 error 事件下发给客户端的业务错误
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

// Is 按错误码比较，使带自定义消息的副本也能匹配哨兵错误
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// withMessage 复制错误码并替换消息
func (e *Error) withMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg}
}

// 错误码
const (
	CodeRoomNotFound    = "ROOM_NOT_FOUND"
	CodeRoomFull        = "ROOM_FULL"
	CodeInvalidSettings = "INVALID_SETTINGS"
	CodeNotInRoom       = "NOT_IN_ROOM"
	CodeConnectionLost  = "CONNECTION_LOST"
	CodeAlreadyInRoom   = "ALREADY_IN_ROOM"
	CodeAlreadyQueued   = "ALREADY_QUEUED"
	CodeInvalidNickname = "INVALID_NICKNAME"
	CodeBadMessage      = "BAD_MESSAGE"
	CodeInternal        = "INTERNAL"
)

var (
	ErrRoomNotFound    = &Error{Code: CodeRoomNotFound, Message: "room not found"}
	ErrRoomFull        = &Error{Code: CodeRoomFull, Message: "room is full"}
	ErrInvalidSettings = &Error{Code: CodeInvalidSettings, Message: "invalid game settings"}
	ErrNotInRoom       = &Error{Code: CodeNotInRoom, Message: "not in a room"}
	ErrConnectionLost  = &Error{Code: CodeConnectionLost, Message: "connection lost"}
	ErrAlreadyInRoom   = &Error{Code: CodeAlreadyInRoom, Message: "already in a room"}
	ErrAlreadyQueued   = &Error{Code: CodeAlreadyQueued, Message: "already in the queue"}
	ErrInvalidNickname = &Error{Code: CodeInvalidNickname, Message: "nickname must be 1-20 characters"}
	ErrBadMessage      = &Error{Code: CodeBadMessage, Message: "malformed message"}
	ErrInternal        = &Error{Code: CodeInternal, Message: "internal server error"}
)

// errorPayload 把任意 error 转为 error 事件载荷；非业务错误按 INTERNAL 处理
func errorPayload(err error) ErrorData {
	var e *Error
	if errors.As(err, &e) {
		return ErrorData{Code: e.Code, Message: e.Message}
	}
	return ErrorData{Code: CodeInternal, Message: ErrInternal.Message}
}
