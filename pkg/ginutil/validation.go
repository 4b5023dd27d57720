package ginutil

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Enum is implemented by string enums that know their allowed values
type Enum interface {
	IsValid() bool
}

var registerOnce sync.Once

// RegisterValidations installs the custom binding tags on gin's validator:
//
//	enum  the field implements Enum and IsValid reports true
//
// Safe to call more than once.
func RegisterValidations() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("gin binding engine is %T, not *validator.Validate", binding.Validator.Engine())
			return
		}
		err = v.RegisterValidation("enum", validateEnum)
	})
	return err
}

func validateEnum(fl validator.FieldLevel) bool {
	e, ok := fl.Field().Interface().(Enum)
	return ok && e.IsValid()
}
