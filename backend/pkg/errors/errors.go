package errors

import "errors"

// 跨层共享的业务错误。各 Service 自身的错误就近定义在对应包内，
// 这里只放多个层都需要判断的哨兵错误。

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("record modified by another operation, please retry")
