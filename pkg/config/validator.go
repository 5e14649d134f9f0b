package config

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Validator 配置校验器
type Validator struct {
	validate *validator.Validate
}

// NewValidator 创建校验器
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Register 注册自定义校验规则
func (v *Validator) Register(tag string, fn validator.Func) error {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		return errors.Wrapf(err, "config: register validation %s", tag)
	}
	return nil
}

// Validate 按 validate tag 校验结构体
func (v *Validator) Validate(cfg any) error {
	if cfg == nil {
		return ErrNilConfig
	}
	if err := v.validate.Struct(cfg); err != nil {
		return errors.Wrap(ErrValidationFailed, formatValidationErrors(err))
	}
	return nil
}

func formatValidationErrors(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		name, param := fe.Namespace(), fe.Param()
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", name))
		case "min", "gte":
			parts = append(parts, fmt.Sprintf("%s must be >= %s", name, param))
		case "max", "lte":
			parts = append(parts, fmt.Sprintf("%s must be <= %s", name, param))
		case "gt":
			parts = append(parts, fmt.Sprintf("%s must be > %s", name, param))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", name, param))
		default:
			parts = append(parts, fmt.Sprintf("%s failed '%s'", name, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
