package handlers

import (
	"log/slog"
	"sync"

	"github.com/SscSPs/fundraising_app/internal/utils"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the custom binding tags used by the DTOs.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			slog.Error("Gin validator engine is not go-playground/validator; custom tags unavailable")
			return
		}
		if err := v.RegisterValidation("ethaddr", validateAddress); err != nil {
			slog.Error("Failed to register ethaddr validator", slog.String("error", err.Error()))
		}
	})
}

func validateAddress(fl validator.FieldLevel) bool {
	return utils.IsValidAddress(fl.Field().String())
}
