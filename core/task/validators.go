package task

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/bigplans/backend/core"
)

var (
	progressTypeTag  = "progresstype"
	progressTypeText = "progressType must be one of: boolean, numeric, percentage"

	frequencyTag  = "frequency"
	frequencyText = "frequency must be daily, weekly or monthly"
)

// InitValidators registers the task validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(progressTypeTag, progressTypeValidation)
	core.RegisterCustomTranslation(validate, translator, progressTypeTag, progressTypeText)

	_ = validate.RegisterValidation(frequencyTag, frequencyValidation)
	core.RegisterCustomTranslation(validate, translator, frequencyTag, frequencyText)
}

func progressTypeValidation(fl validator.FieldLevel) bool {
	return ProgressType(fl.Field().String()).IsValid()
}

func frequencyValidation(fl validator.FieldLevel) bool {
	return Frequency(fl.Field().String()).IsValid()
}
