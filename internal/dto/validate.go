package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
)

// custom binding tags
const (
	clockTag       = "clock"
	stateTag       = "timetable_state"
	sessionTypeTag = "session_type"
)

var (
	registerOnce sync.Once
	registerErr  error
	translator   ut.Translator
)

// RegisterValidators installs the custom tags on gin's validator and makes
// error messages use JSON field names. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})

		_en := en.New()
		translator, _ = ut.New(_en, _en).GetTranslator("en")
		if err := entranslations.RegisterDefaultTranslations(v, translator); err != nil {
			registerErr = fmt.Errorf("register translations: %w", err)
			return
		}

		custom := map[string]validator.Func{
			clockTag:       validateClock,
			stateTag:       validateState,
			sessionTypeTag: validateSessionType,
		}
		for tag, fn := range custom {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = fmt.Errorf("register %s: %w", tag, err)
				return
			}
			if err := v.RegisterTranslation(tag, translator, noopRegister, translateCustom); err != nil {
				registerErr = fmt.Errorf("translate %s: %w", tag, err)
				return
			}
		}
	})
	return registerErr
}

// ── custom validators ──

func validateClock(fl validator.FieldLevel) bool {
	s, ok := stringValue(fl)
	return ok && timetable.IsClock(s)
}

func validateState(fl validator.FieldLevel) bool {
	s, ok := stringValue(fl)
	return ok && timetable.State(s).Valid()
}

func validateSessionType(fl validator.FieldLevel) bool {
	s, ok := stringValue(fl)
	return ok && timetable.SessionType(s).Valid()
}

func stringValue(fl validator.FieldLevel) (string, bool) {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return "", false
	}
	return f.String(), true
}

func noopRegister(ut.Translator) error { return nil }

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case clockTag:
		return fmt.Sprintf("%s must be a time of day as HH:MM", fe.Field())
	case stateTag:
		return fmt.Sprintf("%s must be one of draft, active, archived, cancelled", fe.Field())
	case sessionTypeTag:
		return fmt.Sprintf("%s must be one of lecture, practical, tutorial, exam, other", fe.Field())
	}
	return fe.Error()
}

// ── binding errors ──

// FieldError is one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BindingErrors turns a gin binding error into per-field messages. It
// returns nil when err is not a validation failure.
func BindingErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Error()
		if translator != nil {
			msg = fe.Translate(translator)
		}
		out = append(out, FieldError{Field: fieldPath(fe.Namespace()), Message: msg})
	}
	return out
}

// fieldPath drops the top-level struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
