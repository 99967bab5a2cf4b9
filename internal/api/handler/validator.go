package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v     *validator.Validate
	trans ut.Translator
}

// NewValidator returns a validator reporting English messages that name
// fields by their json tag.
func NewValidator() *echoValidator {
	v := validator.New()

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(v, trans)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	_ = v.RegisterTranslation("objectid", trans,
		func(t ut.Translator) error { return t.Add("objectid", "{0} must be a valid id", false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T("objectid", fe.Field())
			return s
		},
	)

	return &echoValidator{v: v, trans: trans}
}

// Validate satisfies the echo.Validator interface. Failures are bad requests.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fe.Translate(ev.trans))
	}
	return domain.BadRequest("%s", strings.Join(msgs, "; "))
}
