// Package models holds the persisted entities. Every entity is stored as a JSON document under
// the string returned by Key.
package models

import "time"

type UserType string

const (
	UserCustomer  UserType = "customer"
	UserCompany   UserType = "company"
	UserDeveloper UserType = "developer"
)

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"passwordHash"`
	Address         string    `json:"address"`
	Document        string    `json:"document"`
	Phone           string    `json:"phone"`
	Type            UserType  `json:"type"`
	ReferralCode    string    `json:"referralCode"`
	RatingsReceived []float64 `json:"ratingsReceived"`
	RatingAverage   float64   `json:"ratingAverage"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (u User) Key() string { return u.ID }

// Company ID equals the user id of the company account that owns it.
type Company struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Image          string    `json:"image"`
	Rating         float64   `json:"rating"`
	DeliveryFee    float64   `json:"deliveryFee"`
	DeliveryTime   int       `json:"deliveryTime"`
	Categories     []string  `json:"categories"`
	Dishes         []string  `json:"dishes"`
	BlockedUsers   []string  `json:"blockedUsers"`
	BlockedRegions []string  `json:"blockedRegions"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (c Company) Key() string { return c.ID }

func (c Company) BlocksUser(userID string) bool { return contains(c.BlockedUsers, userID) }

func (c Company) BlocksRegion(postalCode string) bool {
	return postalCode != "" && contains(c.BlockedRegions, postalCode)
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (c Category) Key() string { return c.ID }

type AddOn struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}

type Product struct {
	ID              string    `json:"id"`
	CompanyID       string    `json:"companyId"`
	CategoryID      string    `json:"categoryId"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	Stock           int       `json:"stock"`
	ImageURL        string    `json:"imageUrl"`
	SuggestedAddOns []AddOn   `json:"suggestedAddOns"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (p Product) Key() string { return p.ID }

type Address struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Label      string    `json:"label"`
	Street     string    `json:"street"`
	Number     string    `json:"number"`
	District   string    `json:"district"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postalCode"`
	Complement string    `json:"complement"`
	IsDefault  bool      `json:"isDefault"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (a Address) Key() string { return a.ID }

type CardType string

const (
	CardCredit CardType = "credit"
	CardDebit  CardType = "debit"
)

// PaymentMethod only ever holds the masked card number.
type PaymentMethod struct {
	ID         string   `json:"id"`
	UserID     string   `json:"userId"`
	HolderName string   `json:"holderName"`
	CardNumber string   `json:"cardNumber"`
	Expiry     string   `json:"expiry"`
	Type       CardType `json:"type"`
}

func (p PaymentMethod) Key() string { return p.ID }

type StaffRole string

const (
	RoleCourier StaffRole = "courier"
	RoleCook    StaffRole = "cook"
	RoleServer  StaffRole = "server"
	RoleManager StaffRole = "manager"
)

type Staff struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"companyId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         StaffRole `json:"role"`
	VehiclePlate string    `json:"vehiclePlate"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s Staff) Key() string { return s.ID }

func (s Staff) AssignableCourier() bool { return s.Role == RoleCourier && s.Active }

type Favorite struct {
	UserID    string    `json:"userId"`
	CompanyID string    `json:"companyId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f Favorite) Key() string { return f.UserID + ":" + f.CompanyID }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
