package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role определяет роль пользователя в системе.
type Role string

const (
	// RoleMCP — оператор микроточки сбора, выполняет и отслеживает заказы.
	RoleMCP Role = "MCP"
	// RolePickupPartner — партнёр по доставке, назначается на заказ оператором.
	RolePickupPartner Role = "PICKUP_PARTNER"
	// RoleCustomer — покупатель, размещает заказы и следит за доставкой.
	RoleCustomer Role = "CUSTOMER"
)

// ValidRole проверяет, что значение принадлежит множеству ролей.
func ValidRole(r Role) bool {
	switch r {
	case RoleMCP, RolePickupPartner, RoleCustomer:
		return true
	}
	return false
}

// User представляет пользователя системы.
type User struct {
	ID           uuid.UUID       `db:"id"`
	Login        string          `db:"login"`
	PasswordHash string          `db:"password_hash"`
	Role         Role            `db:"role"`
	Balance      decimal.Decimal `db:"balance"`
	Withdrawn    decimal.Decimal `db:"withdrawn"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// RegisterRequest - запрос на регистрацию пользователя.
type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest - запрос на аутентификацию пользователя.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// AuthResponse - ответ с токеном после регистрации или входа.
type AuthResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}
