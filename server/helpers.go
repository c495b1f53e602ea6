package server

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/scamlux/smm-league/internal/common"
	"github.com/scamlux/smm-league/misc"
)

var validatorsOnce sync.Once

// registerValidators teaches gin's validator the domain enums so binding tags
// can use them directly.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
			return common.Platform(fl.Field().String()).Valid()
		})
		v.RegisterValidation("dealstatus", func(fl validator.FieldLevel) bool {
			return common.DealStatus(fl.Field().String()).Valid()
		})
	})
}

func abortWithErr(c *gin.Context, s *Server, err error) {
	misc.AbortWithErr(c, err, s.Cfg.Sandbox)
}

func abortBindErr(c *gin.Context, s *Server, err error) {
	abortWithErr(c, s, misc.InvalidInput(err.Error()))
}
