package errors

import "errors"

// ErrStorage 持久化层读写失败（底层错误通过 %w 保留）
var ErrStorage = errors.New("存储访问失败")

// ErrNotFound 请求的课程或用户记录不存在
var ErrNotFound = errors.New("记录不存在")
