package model

import "voyageiq/pkg/sanitizer"

const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

type User struct {
	Base   `bson:",inline"`
	Name   string `json:"name,omitempty" bson:"name" validate:"required,min=2,max=60"`
	Email  string `json:"email,omitempty" bson:"email" validate:"required,email"`
	Phone  string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,phone"`
	Photo  string `json:"photo,omitempty" bson:"photo,omitempty"`
	Role   string `json:"role,omitempty" bson:"role" validate:"omitempty,oneof=user guide lead-guide admin"`
	Active *bool  `json:"active,omitempty" bson:"active,omitempty"`
}

func (u *User) ApplyDefaults() {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Active == nil {
		active := true
		u.Active = &active
	}
}

type UserUpdate struct {
	Name   *string `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,min=2,max=60"`
	Email  *string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Phone  *string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,phone"`
	Photo  *string `json:"photo,omitempty" bson:"photo,omitempty"`
	Role   *string `json:"role,omitempty" bson:"role,omitempty" validate:"omitempty,oneof=user guide lead-guide admin"`
	Active *bool   `json:"active,omitempty" bson:"active,omitempty"`
}

var UserMessages = map[string]string{
	"name.required":  "Please tell us your name",
	"email.required": "Please provide your email",
	"email.email":    "Please provide a valid email",
	"phone.phone":    "Please provide a valid phone number",
	"role.oneof":     "Role is either: user, guide, lead-guide, admin",
}

func (u *User) Normalize() {
	u.Name = sanitizer.Text(u.Name)
	u.Email = sanitizer.Email(u.Email)
	u.Phone = sanitizer.Phone(u.Phone)
}

func (u *UserUpdate) Normalize() {
	sanitizer.TextPtr(u.Name)
	if u.Email != nil {
		*u.Email = sanitizer.Email(*u.Email)
	}
	if u.Phone != nil {
		*u.Phone = sanitizer.Phone(*u.Phone)
	}
}
