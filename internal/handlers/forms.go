package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SignupForm is the POST /signup body.
type SignupForm struct {
	Name string `form:"name" validate:"required,max=64"`
	// bcrypt rejects passwords longer than 72 bytes.
	Password string `form:"password" validate:"required,maxbytes=72"`
}

// SigninForm is the POST /signin body.
type SigninForm struct {
	Name     string `form:"name" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// CreatePostForm is the POST /create-post body.
type CreatePostForm struct {
	CreatorName string `form:"creator_name" validate:"max=128"`
	Title       string `form:"title" validate:"required,max=200"`
	Body        string `form:"body" validate:"required"`
}

// EditPostForm is the POST /edit-post/{id} body.
type EditPostForm struct {
	Title string `form:"title" validate:"required,max=200"`
	Body  string `form:"body" validate:"required"`
}

// ValidationError lists the offending form fields and a message for each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "invalid form: " + strings.Join(parts, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return v
}

// maxBytes limits the byte length of a string field; max counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = formatFieldError(fe)
	}
	return &ValidationError{Fields: fields}
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes", fe.Param())
	default:
		return "is invalid"
	}
}

func decodeSignupForm(r *http.Request) (SignupForm, error) {
	if err := parseForm(r); err != nil {
		return SignupForm{}, err
	}
	form := SignupForm{
		Name:     strings.TrimSpace(r.PostForm.Get("name")),
		Password: r.PostForm.Get("password"),
	}
	return form, validateForm(form)
}

func decodeSigninForm(r *http.Request) (SigninForm, error) {
	if err := parseForm(r); err != nil {
		return SigninForm{}, err
	}
	form := SigninForm{
		Name:     strings.TrimSpace(r.PostForm.Get("name")),
		Password: r.PostForm.Get("password"),
	}
	return form, validateForm(form)
}

func decodeCreatePostForm(r *http.Request) (CreatePostForm, error) {
	if err := parseForm(r); err != nil {
		return CreatePostForm{}, err
	}
	form := CreatePostForm{
		CreatorName: strings.TrimSpace(r.PostForm.Get("creator_name")),
		Title:       strings.TrimSpace(r.PostForm.Get("title")),
		Body:        r.PostForm.Get("body"),
	}
	return form, validateForm(form)
}

func decodeEditPostForm(r *http.Request) (EditPostForm, error) {
	if err := parseForm(r); err != nil {
		return EditPostForm{}, err
	}
	form := EditPostForm{
		Title: strings.TrimSpace(r.PostForm.Get("title")),
		Body:  r.PostForm.Get("body"),
	}
	return form, validateForm(form)
}
