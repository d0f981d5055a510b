package api

import (
	"errors"
	"io"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator(validate *validator.Validate) *Validator {
	if validate == nil {
		validate = validator.New()
	}
	return &Validator{validate: validate}
}

func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return constants.Validationf("parameter %s fails %s", fieldErrs[0].Field(), fieldErrs[0].Tag())
		}
		return constants.Validationf("%s", err.Error())
	}
	return nil
}

// Binder reports binding problems as validation errors.
type Binder struct {
	echo.DefaultBinder
}

func NewBinder() *Binder {
	return &Binder{}
}

func (b *Binder) Bind(i any, c echo.Context) error {
	if err := b.DefaultBinder.Bind(i, c); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return constants.Validationf("%v", he.Message)
		}
		return constants.Validationf("%s", err.Error())
	}
	return nil
}

// SonicSerializer encodes echo JSON responses with sonic.
type SonicSerializer struct{}

func (SonicSerializer) Serialize(c echo.Context, i any, indent string) error {
	var (
		data []byte
		err  error
	)
	if indent != "" {
		data, err = sonic.ConfigStd.MarshalIndent(i, "", indent)
	} else {
		data, err = sonic.Marshal(i)
	}
	if err != nil {
		return err
	}
	_, err = c.Response().Write(data)
	return err
}

func (SonicSerializer) Deserialize(c echo.Context, i any) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	if err = sonic.Unmarshal(data, i); err != nil {
		return constants.Validationf("invalid JSON body: %s", err.Error())
	}
	return nil
}
