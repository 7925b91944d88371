package validator

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTrans "github.com/go-playground/validator/v10/translations/en"
	zhTrans "github.com/go-playground/validator/v10/translations/zh"
)

// 替换 gin 默认的 validator 翻译，使参数校验错误能返回本地化文案

var (
	once  sync.Once
	Trans ut.Translator
)

// LazyInitGinValidator 安装校验错误翻译器，language 形如 "zh" / "en"
func LazyInitGinValidator(language string) {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		zhLoc := zh.New()
		enLoc := en.New()
		uni := ut.New(enLoc, zhLoc, enLoc)

		var found bool
		Trans, found = uni.GetTranslator(language)
		if !found {
			Trans, _ = uni.GetTranslator("en")
		}

		switch language {
		case "zh":
			_ = zhTrans.RegisterDefaultTranslations(v, Trans)
		default:
			_ = enTrans.RegisterDefaultTranslations(v, Trans)
		}
	})
}

// TranslateErr 将校验错误翻译成可读文案
func TranslateErr(err error) string {
	if err == nil {
		return ""
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || Trans == nil {
		return err.Error()
	}
	for _, e := range errs {
		return e.Translate(Trans)
	}
	return err.Error()
}
