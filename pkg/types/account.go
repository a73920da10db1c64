package types

import "strings"

type UserType string

const (
	UserTypeResident UserType = "resident"
	UserTypeAdmin    UserType = "admin"
)

func (t UserType) Valid() bool {
	return t == UserTypeResident || t == UserTypeAdmin
}

type Account struct {
	Envelope
	ID       string   `json:"__user_id"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	FullName string   `json:"full_name"`
	UserType UserType `json:"user_type"`
	AdminID  string   `json:"admin_id"`
}

func (a *Account) Sheet() SheetType { return SheetAccounts }
func (a *Account) RecordID() string { return a.ID }
func (a *Account) SetRecordID(id string) { a.ID = id }

func (a *Account) IsAdmin() bool {
	return a.UserType == UserTypeAdmin
}

// DisplayName is the full name when one was given, else the username.
func (a *Account) DisplayName() string {
	if name := strings.TrimSpace(a.FullName); name != "" {
		return name
	}
	return a.Username
}

func (a *Account) Validate() error {
	if err := required("username", a.Username); err != nil {
		return err
	}
	if err := required("password", a.Password); err != nil {
		return err
	}
	if !a.UserType.Valid() {
		return NewValidationError("user_type", "must be resident or admin")
	}
	return nil
}
