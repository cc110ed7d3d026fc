package utils

import (
	"errors"
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// StakeholderTypes are the accepted attitude labels.
var StakeholderTypes = []string{"champion", "early_adopter", "neutral", "skeptic", "resistant"}

// RegisterValidators adds the domain rules to v:
//
//	score            integer in [0,100]
//	stakeholder_type one of StakeholderTypes, or empty
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("score", validateScore); err != nil {
		return err
	}
	return v.RegisterValidation("stakeholder_type", validateStakeholderType)
}

// RegisterBindingValidators installs the domain rules on gin's binding engine.
func RegisterBindingValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return RegisterValidators(v)
}

func validateScore(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := fl.Field().Int()
		return n >= 0 && n <= 100
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fl.Field().Uint() <= 100
	}
	return false
}

func validateStakeholderType(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	for _, t := range StakeholderTypes {
		if s == t {
			return true
		}
	}
	return false
}
