package models

// Contact represents a person the user tracks debts with.
// ID is server-assigned and empty until the contact is created upstream.
type Contact struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name" validate:"required,min=2,max=50"`
	PhoneNumber string `json:"phone_number" validate:"required,phone_digits"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
}

// ContactInput carries user-supplied contact fields for create/update.
type ContactInput struct {
	FullName    string `json:"full_name" validate:"required,min=2,max=50"`
	PhoneNumber string `json:"phone_number" validate:"required,phone_digits"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
}
