// Package models holds the server-side domain types persisted by the
// repositories and returned by the REST API.
package models

import "time"

// User is a directory entry. Password holds the stored hash and is never
// serialized or selected by read queries.
type User struct {
	ID          int64     `db:"id" json:"id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	Email       string    `db:"email" json:"email"`
	Password    string    `db:"password" json:"-"`
	Country     string    `db:"country" json:"country"`
	City        string    `db:"city" json:"city"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	Position    string    `db:"position" json:"position"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CreateUserParams lists the columns a signup may write.
type CreateUserParams struct {
	FirstName   string `db:"first_name" json:"first_name" binding:"required"`
	LastName    string `db:"last_name" json:"last_name" binding:"required"`
	Email       string `db:"email" json:"email" binding:"required,email"`
	Password    string `db:"password" json:"password" binding:"required,min=2"`
	Country     string `db:"country" json:"country" binding:"required"`
	City        string `db:"city" json:"city" binding:"required"`
	PhoneNumber string `db:"phone_number" json:"phone_number" binding:"required"`
	Position    string `db:"position" json:"position" binding:"required"`
}

// UpdateUserParams is a partial update. Nil fields are left unchanged.
// Password is accepted on the wire but never written.
type UpdateUserParams struct {
	FirstName   *string `db:"first_name" json:"first_name"`
	LastName    *string `db:"last_name" json:"last_name"`
	Email       *string `db:"email" json:"email" binding:"omitempty,email"`
	Password    *string `db:"password" json:"password"`
	Country     *string `db:"country" json:"country"`
	City        *string `db:"city" json:"city"`
	PhoneNumber *string `db:"phone_number" json:"phone_number"`
	Position    *string `db:"position" json:"position"`
}

// Empty reports whether no field is set.
func (p *UpdateUserParams) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Password == nil &&
		p.Country == nil && p.City == nil && p.PhoneNumber == nil && p.Position == nil
}

// LoginParams are the credentials posted to the login endpoint.
type LoginParams struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=2"`
}
