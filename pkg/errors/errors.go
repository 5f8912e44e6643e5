package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError 校验失败：在任何写入发生之前返回，调用方据此拒绝整次提交
type ValidationError struct {
	Err    error
	Fields []FieldError
}

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrValidation 所有校验错误的哨兵，便于 errors.Is 判断
var ErrValidation = errors.New("参数校验失败")

// NewValidationError 创建校验错误
func NewValidationError(err error, flds ...FieldError) error {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Err: err, Fields: flds}
}

// Invalid 单字段校验失败的快捷方式
func Invalid(field, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return &ValidationError{
		Err:    fmt.Errorf("%w: %s", ErrValidation, msg),
		Fields: []FieldError{{Field: field, Error: msg}},
	}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return ErrValidation.Error()
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is 使任意 ValidationError 都能匹配 ErrValidation
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Details 拼接字段错误，供响应 details 字段使用
func (e *ValidationError) Details() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Error)
	}
	return strings.Join(parts, "; ")
}

// FromValidator 将 validator.ValidationErrors 转为 ValidationError
func FromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	flds := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		flds = append(flds, FieldError{Field: fe.Field(), Error: fe.Tag() + " " + fe.Param()})
	}
	return &ValidationError{Err: ErrValidation, Fields: flds}
}
