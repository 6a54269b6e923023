package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/template-marketplace/internal/domain/entity"
)

var (
	initOnce    sync.Once
	providerKey = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for the account enums.
func Init() {
	initOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// bcrypt only reads the first 72 bytes
		v.RegisterAlias("pwd", "min=6,max=72")
		v.RegisterAlias("role", "oneof=user admin seller")
		v.RegisterAlias("usertype", "oneof="+strings.Join(entity.UserTypes, " "))
		v.RegisterAlias("primarygoal", "oneof="+strings.Join(entity.PrimaryGoals, " "))
		v.RegisterAlias("skilllevel", "oneof="+strings.Join(entity.SkillLevels, " "))
		v.RegisterAlias("theme", "oneof="+strings.Join(entity.PreferredThemes, " "))
		v.RegisterAlias("designstyle", "oneof="+strings.Join(entity.DesignStyles, " "))
		_ = v.RegisterValidation("provider", func(fl validator.FieldLevel) bool {
			return providerKey.MatchString(fl.Field().String())
		})
	})
}

// Struct validates s with the shared engine.
func Struct(s any) error {
	Init()
	return binding.Validator.ValidateStruct(s)
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fieldPath(fe)] = formatFieldError(fe)
		}
		return out
	}

	// json.Decoder with DisallowUnknownFields: `json: unknown field "foo"`
	if msg := err.Error(); strings.HasPrefix(msg, "json: unknown field ") {
		field := strings.Trim(strings.TrimPrefix(msg, "json: unknown field "), `"`)
		return map[string]string{field: "is not a recognised field"}
	}

	return map[string]string{"payload": "invalid payload"}
}

// fieldPath drops the struct name prefix: "req.socialLinks[github]" -> "socialLinks[github]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url", "http_url":
		return "must be a valid http(s) URL"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + param + " items"
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		if fe.Kind() == reflect.Slice {
			return "must contain at most " + param + " items"
		}
		return "must be at most " + param + " characters long"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "pwd":
		return "must be between 6 and 72 characters long"
	case "role":
		return "must be one of: user, admin, seller"
	case "usertype":
		return "must be one of: " + strings.Join(entity.UserTypes, ", ")
	case "primarygoal":
		return "must be one of: " + strings.Join(entity.PrimaryGoals, ", ")
	case "skilllevel":
		return "must be one of: " + strings.Join(entity.SkillLevels, ", ")
	case "theme":
		return "must be one of: " + strings.Join(entity.PreferredThemes, ", ")
	case "designstyle":
		return "must be one of: " + strings.Join(entity.DesignStyles, ", ")
	case "provider":
		return "must be 1-32 lowercase letters, digits, '-' or '_'"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
