package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field widths follow the column sizes of the schema.

type loginForm struct {
	Email    string `form:"email" validate:"required,max=50"`
	Password string `form:"password" validate:"required"`
	Remember bool   `form:"remember_me"`
}

type registerForm struct {
	Name           string `form:"name" validate:"required,max=50"`
	Email          string `form:"email" validate:"required,max=50"`
	Password       string `form:"password" validate:"required"`
	RepeatPassword string `form:"repeat_password" validate:"required"`
}

type settingsForm struct {
	Name  string `form:"account_change" validate:"max=50"`
	About string `form:"about" validate:"max=300"`
}

type articleForm struct {
	Genre string `form:"add_genre" validate:"required"`
	Title string `form:"add_title" validate:"required,max=70"`
	Body  string `form:"add_text" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})
	return v
}

// decodeForm fills the string and bool fields of dst (a pointer to a
// struct) from the request form by their `form` tags and returns the raw
// values for re-rendering. Passwords are never echoed back.
func decodeForm(r *http.Request, dst any) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(dst).Elem()
	rt := rv.Type()
	echo := make(map[string]string, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		name := rt.Field(i).Tag.Get("form")
		if name == "" {
			continue
		}
		raw := r.PostForm.Get(name)
		f := rv.Field(i)
		switch f.Kind() {
		case reflect.String:
			if !strings.Contains(name, "password") {
				raw = strings.TrimSpace(raw)
				echo[name] = raw
			}
			f.SetString(raw)
		case reflect.Bool:
			f.SetBool(raw != "" && raw != "0" && raw != "off")
		}
	}
	return echo, nil
}

// validationMessages renders validator errors as user-facing sentences.
func (s *Server) validationMessages(form any) []string {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		label := fieldLabels[fe.Field()]
		if label == "" {
			label = fe.Field()
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", label))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", label, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", label))
		}
	}
	return msgs
}

var fieldLabels = map[string]string{
	"email":           "Email",
	"password":        "Password",
	"name":            "Name",
	"repeat_password": "Repeated password",
	"account_change":  "Name",
	"about":           "About me",
	"add_genre":       "Genre",
	"add_title":       "Title",
	"add_text":        "Text",
}
