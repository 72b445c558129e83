package models

import "time"

type CartItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Note      string  `json:"note"`
	AddOns    []AddOn `json:"addOns"`
}

// Clone copies the item by value, add-ons included.
func (i CartItem) Clone() CartItem {
	out := i
	out.AddOns = append([]AddOn(nil), i.AddOns...)
	return out
}

// Cart is keyed by its owner, so a user can hold at most one.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	CompanyID string     `json:"companyId"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (c Cart) Key() string { return c.UserID }

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusAccepted       OrderStatus = "accepted"
	StatusInPreparation  OrderStatus = "in-preparation"
	StatusOutForDelivery OrderStatus = "out-for-delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCanceled       OrderStatus = "canceled"
)

type StatusChange struct {
	From OrderStatus `json:"from"`
	To   OrderStatus `json:"to"`
	At   time.Time   `json:"at"`
}

type Order struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	CompanyID       string         `json:"companyId"`
	AddressID       string         `json:"addressId"`
	PaymentMethodID string         `json:"paymentMethodId"`
	Items           []CartItem     `json:"items"`
	Total           float64        `json:"total"`
	Status          OrderStatus    `json:"status"`
	CourierID       string         `json:"courierId,omitempty"`
	History         []StatusChange `json:"history"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func (o Order) Key() string { return o.ID }

type NotificationCategory string

const (
	CategoryOrder     NotificationCategory = "order"
	CategoryMarketing NotificationCategory = "marketing"
	CategorySystem    NotificationCategory = "system"
)

type Notification struct {
	ID        string               `json:"id"`
	UserID    string               `json:"userId"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Category  NotificationCategory `json:"category"`
	Read      bool                 `json:"read"`
	CreatedAt time.Time            `json:"createdAt"`
}

func (n Notification) Key() string { return n.ID }

type OrderPrefs struct {
	OrderUpdates   bool `json:"orderUpdates"`
	DeliveryStatus bool `json:"deliveryStatus"`
	DeliveryAlerts bool `json:"deliveryAlerts"`
}

type MarketingPrefs struct {
	Promotions    bool `json:"promotions"`
	SpecialOffers bool `json:"specialOffers"`
}

type SystemPrefs struct {
	AppUpdates bool `json:"appUpdates"`
}

type DevicePrefs struct {
	Sound     bool `json:"sound"`
	Vibration bool `json:"vibration"`
}

// NotificationSettings is keyed by user id.
type NotificationSettings struct {
	UserID      string         `json:"userId"`
	Orders      OrderPrefs     `json:"orders"`
	Marketing   MarketingPrefs `json:"marketing"`
	System      SystemPrefs    `json:"system"`
	Preferences DevicePrefs    `json:"preferences"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (s NotificationSettings) Key() string { return s.UserID }

// DefaultNotificationSettings opts the user into everything.
func DefaultNotificationSettings(userID string) NotificationSettings {
	return NotificationSettings{
		UserID:      userID,
		Orders:      OrderPrefs{OrderUpdates: true, DeliveryStatus: true, DeliveryAlerts: true},
		Marketing:   MarketingPrefs{Promotions: true, SpecialOffers: true},
		System:      SystemPrefs{AppUpdates: true},
		Preferences: DevicePrefs{Sound: true, Vibration: true},
	}
}

// Allows reports whether a notification of category c may reach the user.
func (s NotificationSettings) Allows(c NotificationCategory) bool {
	switch c {
	case CategoryOrder:
		return true
	case CategoryMarketing:
		return s.Marketing.Promotions
	case CategorySystem:
		return s.System.AppUpdates
	default:
		return false
	}
}

// Review is a customer rating of a company, one per order.
type Review struct {
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	CompanyID string    `json:"companyId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r Review) Key() string { return r.OrderID }

// UserRating is a company rating of a customer, one per order.
type UserRating struct {
	OrderID   string    `json:"orderId"`
	CompanyID string    `json:"companyId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r UserRating) Key() string { return r.OrderID }

type Coupon struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Discount    string  `json:"discount"`
	Description string  `json:"description"`
	MinValue    float64 `json:"minValue"`
	IsActive    bool    `json:"isActive"`
}

func (c Coupon) Key() string { return c.ID }

// UserCoupon is keyed by owner and code, so a code can be held once per user.
type UserCoupon struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Code        string    `json:"code"`
	Discount    string    `json:"discount"`
	Description string    `json:"description"`
	ValidUntil  time.Time `json:"validUntil"`
	MinValue    float64   `json:"minValue"`
	IsActive    bool      `json:"isActive"`
	UsesLeft    int       `json:"usesLeft"`
	MaxUses     int       `json:"maxUses"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (c UserCoupon) Key() string { return UserCouponKey(c.UserID, c.Code) }

func UserCouponKey(userID, code string) string { return userID + ":" + code }
