package api

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	govalidator "github.com/go-playground/validator/v10"

	"github.com/Nixie-Tech-LLC/loopboard/internal/validator"
)

var bindingOnce sync.Once

// ConfigureBinding makes gin report json field names and know the custom
// rules (such as "password") used in packet binding tags.
func ConfigureBinding() {
	bindingOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
			validator.Configure(v)
		}
	})
}
