package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/advisor/internal/registry"
	adviceerrors "github.com/alexisbeaulieu97/advisor/pkg/errors"
	"github.com/alexisbeaulieu97/advisor/pkg/weave"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern     = regexp.MustCompile(`^\d+\.\d+\.\d+(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	metricNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// validatorInstance returns the shared validator with the package's custom tags.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("plugin_name", func(fl validator.FieldLevel) bool {
			return registry.ValidPluginName(fl.Field().String())
		})

		_ = v.RegisterValidation("pointcut_kind", func(fl validator.FieldLevel) bool {
			_, err := weave.ParseKind(fl.Field().String())
			return err == nil
		})

		_ = v.RegisterValidation("glob", func(fl validator.FieldLevel) bool {
			return doublestar.ValidatePattern(fl.Field().String())
		})

		_ = v.RegisterValidation("metric_name", func(fl validator.FieldLevel) bool {
			return metricNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateConfig performs schema and cross-field validation.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return adviceerrors.NewValidationError("config", "configuration is nil", nil)
	}

	if err := validatorInstance().Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]int, len(cfg.Plugins))
	for i, p := range cfg.Plugins {
		if first, dup := seen[p.Name]; dup {
			return adviceerrors.NewValidationError(
				fmt.Sprintf("plugins[%d].name", i),
				fmt.Sprintf("plugin %q already configured at plugins[%d]", p.Name, first),
				nil,
			)
		}
		seen[p.Name] = i
	}
	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return adviceerrors.NewValidationError(field, msg, err)
	}

	return adviceerrors.NewValidationError("config", err.Error(), err)
}

// yamlishFieldName turns "Config.Plugins[0].Advisors[1].Class" into
// "plugins[0].advisors[1].class".
func yamlishFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}
	return strings.Join(parts, ".")
}
