package handlers

import (
	"errors"
	"strconv"
	"strings"

	"blogroll/internal/services"
	"blogroll/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// PostForm 发帖/编辑表单
type PostForm struct {
	Text       string `form:"text" binding:"required"`
	Group      string `form:"group"`
	ImageClear string `form:"image-clear"`
}

// CommentForm 评论表单
type CommentForm struct {
	Text string `form:"text" binding:"required"`
}

type SignupForm struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Username  string `form:"username" binding:"required,max=150"`
	Email     string `form:"email" binding:"omitempty,email"`
	Password  string `form:"password1" binding:"required,min=8"`
	Password2 string `form:"password2" binding:"required,eqfield=Password"`
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

// formKeys maps struct fields to the names used in the HTML forms.
var formKeys = map[string]string{
	"Text":      "text",
	"FirstName": "first_name",
	"LastName":  "last_name",
	"Username":  "username",
	"Email":     "email",
	"Password":  "password1",
	"Password2": "password2",
}

// bindErrors converts a binding error into per-field messages.
func bindErrors(err error) FieldErrors {
	errs := FieldErrors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["__all__"] = "Invalid form submission."
		return errs
	}
	for _, fe := range verrs {
		key := formKeys[fe.Field()]
		if key == "" {
			key = strings.ToLower(fe.Field())
		}
		errs[key] = fieldMessage(fe)
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Ensure this value has at least " + fe.Param() + " characters."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "eqfield":
		return "The two password fields didn't match."
	}
	return "Enter a valid value."
}

// postInput validates the post form and collects the uploaded image.
func postInput(c *gin.Context) (PostForm, services.PostInput, FieldErrors) {
	var form PostForm
	errs := FieldErrors{}
	if err := c.ShouldBind(&form); err != nil {
		errs = bindErrors(err)
	}
	if strings.TrimSpace(form.Text) == "" {
		errs["text"] = "This field is required."
	}

	in := services.PostInput{Text: form.Text, ClearImage: form.ImageClear != ""}
	if form.Group != "" {
		id, ok := utils.ParseID(form.Group)
		if !ok {
			errs["group"] = "Select a valid choice."
		} else {
			in.GroupID = &id
		}
	}
	if fh, err := c.FormFile("image"); err == nil {
		in.Image = fh
	}
	return form, in, errs
}

// serviceFieldErrors places validation errors coming back from the post
// service on the field they belong to. ok is false for any other error.
func serviceFieldErrors(err error) (FieldErrors, bool) {
	switch {
	case errors.Is(err, services.ErrEmptyText):
		return FieldErrors{"text": "This field is required."}, true
	case errors.Is(err, services.ErrUnknownGroup):
		return FieldErrors{"group": "Select a valid choice. That choice is not one of the available choices."}, true
	case errors.Is(err, services.ErrInvalidImage):
		return FieldErrors{"image": "Upload a valid image. The file you uploaded was either not an image or a corrupted image."}, true
	}
	return nil, false
}

func groupValue(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}
