// Package validation 基于 struct tag 的实体校验
package validation

import (
	stdErrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"goeasy/domain/entity"
	"goeasy/errors"
)

// IValidator 定义通用验证器接口
type IValidator interface {
	Validate(value any) error
}

// NoopValidator 空操作验证器
type NoopValidator struct{}

// Validate 实现 IValidator 接口
func (NoopValidator) Validate(value any) error {
	return nil
}

// StructValidator 基于 validator/v10 的验证器，字段名取 json tag
type StructValidator struct {
	validate *validator.Validate
}

// New 创建验证器
func New() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &StructValidator{validate: v}
}

// RegisterValidation 注册自定义规则
func (v *StructValidator) RegisterValidation(tag string, fn validator.Func) error {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		return errors.WrapError(err, errors.ErrCodeConfiguration, fmt.Sprintf("register validation %q", tag))
	}
	return nil
}

// Validate 先执行 struct tag 校验，再调用实体自身的 Validate
//
// 失败时返回 VALIDATION_ERROR，details 为 字段 -> 消息。
func (v *StructValidator) Validate(value any) error {
	if value == nil {
		return errors.NewError(errors.ErrCodeValidation, "数据不能为空")
	}

	if err := v.validate.Struct(value); err != nil {
		var invalid *validator.InvalidValidationError
		if stdErrors.As(err, &invalid) {
			return errors.WrapError(err, errors.ErrCodeUnsupportedType, "仅支持结构体校验")
		}
		var fieldErrs validator.ValidationErrors
		if stdErrors.As(err, &fieldErrs) {
			return format(fieldErrs)
		}
		return errors.WrapError(err, errors.ErrCodeValidation, "数据验证失败")
	}

	if self, ok := value.(entity.IValidatable); ok {
		if err := self.Validate(); err != nil {
			if errors.GetErrorCode(err) == errors.ErrCodeInternal {
				return errors.WrapError(err, errors.ErrCodeValidation, err.Error())
			}
			return err
		}
	}
	return nil
}

func format(fieldErrs validator.ValidationErrors) error {
	details := make(map[string]any, len(fieldErrs))
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fe.Field()
		if _, dup := details[name]; !dup {
			fields = append(fields, name)
		}
		details[name] = message(fe)
	}
	sort.Strings(fields)
	return errors.NewError(errors.ErrCodeValidation, "数据验证失败: "+strings.Join(fields, ", ")).WithDetails(details)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s不能为空", fe.Field())
	case "min":
		return fmt.Sprintf("%s不能小于%s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s不能大于%s", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s长度必须为%s", fe.Field(), fe.Param())
	case "email":
		return "邮箱格式不正确"
	case "oneof":
		return fmt.Sprintf("%s的值无效，必须是以下之一: %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s未通过%s校验", fe.Field(), fe.Tag())
}
