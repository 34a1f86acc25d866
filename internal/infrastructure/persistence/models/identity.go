package models

import (
	"time"

	"github.com/billing/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Email        string        `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string        `gorm:"type:varchar(255);not null"`
	FullName     string        `gorm:"type:varchar(255)"`
	PhoneNumber  string        `gorm:"type:varchar(15)"`
	Role         identity.Role `gorm:"type:varchar(10);not null;default:'user'"`
	IsActive     bool          `gorm:"not null;default:true"`
	DateJoined   time.Time     `gorm:"not null"`
	LastLogin    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		FullName:          m.FullName,
		PhoneNumber:       m.PhoneNumber,
		Role:              m.Role,
		IsActive:          m.IsActive,
		DateJoined:        m.DateJoined,
		LastLogin:         m.LastLogin,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.FullName = u.FullName
	m.PhoneNumber = u.PhoneNumber
	m.Role = u.Role
	m.IsActive = u.IsActive
	m.DateJoined = u.DateJoined
	m.LastLogin = u.LastLogin
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
