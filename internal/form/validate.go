package form

import (
	"net/mail"
	"sort"
	"strconv"
	"strings"
)

// Field names a submission field.
type Field string

// Submission fields, in display order.
const (
	FieldName            Field = "name"
	FieldAge             Field = "age"
	FieldEmail           Field = "email"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
	FieldGender          Field = "gender"
	FieldAcceptTerms     Field = "acceptTerms"
	FieldPicture         Field = "picture"
	FieldCountry         Field = "country"
)

//nolint:gochecknoglobals // Fixed field order.
var fieldOrder = []Field{
	FieldName, FieldAge, FieldEmail, FieldPassword, FieldConfirmPassword,
	FieldGender, FieldAcceptTerms, FieldPicture, FieldCountry,
}

// MinAge is the youngest accepted age.
const MinAge = 13

// Validation messages.
const (
	MsgRequired          = "Required"
	MsgNameRequired      = "Name is required"
	MsgNameUppercase     = "Name must start with an uppercase letter"
	MsgNameLatin         = "Name must contain only Latin characters"
	MsgAgeRequired       = "Age is required"
	MsgAgeNumber         = "Age must be a number"
	MsgAgeMin            = "Age must be at least 13 years"
	MsgEmailRequired     = "Email is required"
	MsgEmailFormat       = "Invalid email format"
	MsgEmailLatin        = "Email must contain only Latin characters"
	MsgPasswordRequired  = "Password is required"
	MsgPasswordRules     = "Password must contain at least one number, one uppercase letter, one lowercase letter, and one special character"
	MsgPasswordLatin     = "Password must contain only Latin characters"
	MsgPasswordsMatch    = "Passwords must match"
	MsgConfirmLatin      = "Confirm password must contain only Latin characters"
	MsgAcceptTerms       = "You must accept the terms and conditions"
	passwordSpecialChars = "!@#$%^&*"
)

// Submission is a registration form as entered. Age is kept as text so a
// non-numeric entry can be reported rather than rejected by the decoder.
type Submission struct {
	Name            string `yaml:"name" json:"name"`
	Age             string `yaml:"age" json:"age"`
	Email           string `yaml:"email" json:"email"`
	Password        string `yaml:"password" json:"-"`
	ConfirmPassword string `yaml:"confirmPassword" json:"-"`
	Gender          string `yaml:"gender" json:"gender"`
	AcceptTerms     bool   `yaml:"acceptTerms" json:"acceptTerms"`
	Picture         string `yaml:"picture" json:"picture"`
	Country         string `yaml:"country" json:"country"`
}

// AgeValue returns the parsed age.
func (s Submission) AgeValue() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s.Age))
	return n, err == nil
}

// ValidationErrors maps each invalid field to its first failing message.
type ValidationErrors map[Field]string

// Error lists the failures in field order.
func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, string(f)+": "+e[f])
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

// Fields returns the invalid fields in display order. Unknown fields sort
// last by name.
func (e ValidationErrors) Fields() []Field {
	out := make([]Field, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	rank := func(f Field) int {
		for i, o := range fieldOrder {
			if o == f {
				return i
			}
		}
		return len(fieldOrder)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

// Validate checks every field and returns ValidationErrors, or nil when the
// submission is valid.
func (s Submission) Validate() error {
	errs := make(ValidationErrors)
	check := func(f Field, msg string) {
		if msg != "" {
			errs[f] = msg
		}
	}

	check(FieldName, validateName(s.Name))
	check(FieldAge, validateAge(s.Age))
	check(FieldEmail, validateEmail(s.Email))
	check(FieldPassword, validatePassword(s.Password))
	check(FieldConfirmPassword, validateConfirm(s.Password, s.ConfirmPassword))
	check(FieldGender, required(s.Gender))
	if !s.AcceptTerms {
		errs[FieldAcceptTerms] = MsgAcceptTerms
	}
	check(FieldPicture, required(s.Picture))
	check(FieldCountry, required(s.Country))

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func required(v string) string {
	if strings.TrimSpace(v) == "" {
		return MsgRequired
	}
	return ""
}

func validateName(v string) string {
	switch {
	case v == "":
		return MsgNameRequired
	case v[0] < 'A' || v[0] > 'Z':
		return MsgNameUppercase
	case !onlyChars(v, isAlnum):
		return MsgNameLatin
	}
	return ""
}

func validateAge(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return MsgAgeRequired
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return MsgAgeNumber
	}
	if n < MinAge {
		return MsgAgeMin
	}
	return ""
}

func validateEmail(v string) string {
	if v == "" {
		return MsgEmailRequired
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v || !strings.Contains(v[strings.LastIndexByte(v, '@'):], ".") {
		return MsgEmailFormat
	}
	if !onlyChars(v, func(r rune) bool { return isAlnum(r) || r == '@' || r == '.' }) {
		return MsgEmailLatin
	}
	return ""
}

func validatePassword(v string) string {
	switch {
	case v == "":
		return MsgPasswordRequired
	case PasswordStrength(v) != Strong:
		return MsgPasswordRules
	case !onlyChars(v, isPasswordChar):
		return MsgPasswordLatin
	}
	return ""
}

func validateConfirm(pw, confirm string) string {
	switch {
	case confirm == "":
		return MsgRequired
	case confirm != pw:
		return MsgPasswordsMatch
	case !onlyChars(confirm, isPasswordChar):
		return MsgConfirmLatin
	}
	return ""
}

func onlyChars(s string, ok func(rune) bool) bool {
	for _, r := range s {
		if !ok(r) {
			return false
		}
	}
	return true
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isPasswordChar(r rune) bool {
	return isAlnum(r) || strings.ContainsRune(passwordSpecialChars, r)
}
