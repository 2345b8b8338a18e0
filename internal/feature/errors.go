package feature

import (
	"errors"
	"fmt"
)

// ErrStructural 输入违反结构性约束（重复键、轮次非递增），整次构建中止且不写输出
var ErrStructural = errors.New("输入结构不合法")

// ErrInvalidOptions 特征配置不合法
var ErrInvalidOptions = errors.New("特征配置不合法")

// DuplicateKeyError 同一球员同一轮出现多条记录
type DuplicateKeyError struct {
	EntityID int64
	Round    int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("重复记录: entity_id=%d round=%d", e.EntityID, e.Round)
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrStructural }

// OrderingError 排序后轮次仍非严格递增
type OrderingError struct {
	EntityID int64
	Prev     int
	Next     int
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("轮次非严格递增: entity_id=%d %d -> %d", e.EntityID, e.Prev, e.Next)
}

func (e *OrderingError) Is(target error) bool { return target == ErrStructural }

func invalidOptions(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
}
