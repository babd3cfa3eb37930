package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// PlanNone is the plan every user starts with until a subscription webhook
// assigns a paid tier.
const PlanNone = "none"

type User struct {
	ID                string     `gorm:"type:varchar(36);primaryKey" json:"id" validate:"required,uuid"`
	Name              string     `gorm:"type:varchar(150)" json:"name" validate:"required,max=150"`
	Email             string     `gorm:"uniqueIndex;not null;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,max=200"`
	BillingCustomerID string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"billing_customer_id" validate:"required,max=191"`
	Plan              string     `gorm:"type:varchar(100);not null;default:'none'" json:"plan" validate:"required,max=100"`
	PlanUpdatedAt     *time.Time `gorm:"type:timestamp;default:null" json:"plan_updated_at"`
	LastLoginAt       *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// ValidateProfile checks the identity-provided fields against the same rules
// as Validate, so a profile that can never be stored is rejected up front.
func ValidateProfile(name, email string) error {
	v := validator.New()

	if err := v.Var(email, "required,email,max=200"); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	if err := v.Var(name, "required,max=150"); err != nil {
		return fmt.Errorf("name: %w", err)
	}

	return nil
}

// NewUser builds a validated user on the "none" plan.
func NewUser(id, name, email, billingCustomerID string) (*User, error) {
	u := &User{
		ID:                id,
		Name:              name,
		Email:             email,
		BillingCustomerID: billingCustomerID,
		Plan:              PlanNone,
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

// HasPaidPlan reports whether a subscription assigned a tier other than "none".
func (u *User) HasPaidPlan() bool {
	return u.Plan != "" && u.Plan != PlanNone
}
