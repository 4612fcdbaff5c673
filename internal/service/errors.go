package service

import "errors"

// 业务错误分类
// 所有服务操作以返回值传播错误,适配层负责翻译为用户可见消息
var (
	ErrNotAuthorized    = errors.New("actor is not authorized for this action")
	ErrNotFound         = errors.New("draft or payment not found")
	ErrAlreadyFinalized = errors.New("payment is already finalized")
	ErrInvalidAmount    = errors.New("amount must be a positive number")
	ErrUnknownMethod    = errors.New("payment method is not in the catalog")
	ErrProtectedMethod  = errors.New("cannot delete system method")
	ErrMethodInUse      = errors.New("method is referenced by existing payments")
	ErrAlreadyLinked    = errors.New("payment is already linked to a message")
)
