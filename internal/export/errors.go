package export

import (
	"errors"
	"fmt"
)

// Stage 标识导出在哪一步失败。
type Stage string

const (
	StageRender    Stage = "render"
	StageSerialize Stage = "serialize"
	StageCapture   Stage = "capture"
	StageDeliver   Stage = "deliver"
)

var (
	ErrUnknownFormat  = errors.New("unknown export format")
	ErrMissingSurface = errors.New("visual export requires a materialized preview surface")
)

// PreconditionError 表示导出根本没有开始：没有渲染，也没有写出任何文件。
type PreconditionError struct {
	Format Format
	Err    error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("export %q precondition failed: %v", e.Format, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// Error 表示导出过程中的失败，整个导出被放弃，不会留下部分文件。
type Error struct {
	Stage  Stage
	Format Format
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export %q failed at %s: %v", e.Format, e.Stage, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// IsPrecondition 判断错误是否为前置条件失败。
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
