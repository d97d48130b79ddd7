package auth

import (
	"context"
	"errors"
	"regexp"
	"time"

	"mangrovewatch/backend/api"

	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
)

// PlaceholderPhone is assigned on login since no account record exists to
// provide a real one.
const PlaceholderPhone = "123-456-7890"

const (
	MsgFillAllFields    = "Please fill in all fields"
	MsgPasswordMismatch = "Passwords do not match"
	MsgPasswordTooShort = "Password must be at least 6 characters long"
	MsgInvalidPhone     = "Please enter a valid phone number"
)

var phonePattern = regexp.MustCompile(`^[+]?[1-9][0-9]{0,15}$`)

type LoginArgs struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type SignUpArgs struct {
	Username        string `validate:"required"`
	Phone           string `validate:"phone"`
	Password        string `validate:"min=6"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

// signUpChecks lists failing (field, tag) pairs in the order they are reported.
var signUpChecks = []struct {
	field, tag, msg string
}{
	{"ConfirmPassword", "eqfield", MsgPasswordMismatch},
	{"Password", "min", MsgPasswordTooShort},
	{"Phone", "phone", MsgInvalidPhone},
	{"Username", "required", MsgFillAllFields},
}

// Authenticator is the mocked credential front door. Any non-empty pair logs in.
type Authenticator struct {
	session  *Session
	validate *validator.Validate
	now      func() time.Time
}

func NewAuthenticator(s *Session) *Authenticator {
	v := validator.New()
	v.RegisterValidation("phone", validatePhone)
	return &Authenticator{session: s, validate: v, now: time.Now}
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

// ValidPhone reports whether phone is acceptable at sign up.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func (a *Authenticator) Login(ctx context.Context, args LoginArgs) (api.User, error) {
	if err := a.validate.Struct(args); err != nil {
		return api.User{}, &api.ValidationError{Field: "credentials", Message: MsgFillAllFields}
	}
	u := api.User{
		Username: args.Username,
		Phone:    PlaceholderPhone,
		ID:       api.ClientID(a.now()),
	}
	a.session.Login(ctx, u)
	log.WithField("username", u.Username).Info("User logged in")
	return u, nil
}

func (a *Authenticator) SignUp(ctx context.Context, args SignUpArgs) (api.User, error) {
	if err := a.checkSignUp(args); err != nil {
		return api.User{}, err
	}
	u := api.User{
		Username: args.Username,
		Phone:    args.Phone,
		ID:       api.ClientID(a.now()),
	}
	a.session.Login(ctx, u)
	log.WithField("username", u.Username).Info("User signed up")
	return u, nil
}

func (a *Authenticator) checkSignUp(args SignUpArgs) error {
	err := a.validate.Struct(args)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	failed := map[string]string{}
	for _, fe := range verrs {
		failed[fe.Field()] = fe.Tag()
	}
	for _, c := range signUpChecks {
		if failed[c.field] == c.tag {
			return &api.ValidationError{Field: c.field, Message: c.msg}
		}
	}
	return &api.ValidationError{Field: verrs[0].Field(), Message: MsgFillAllFields}
}
