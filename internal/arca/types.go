package arca

import "time"

// The core API quotes money as meticais with decimal fractions. The
// storefront keeps amounts in centavos internally and converts at this
// boundary.

// Credentials is the login request payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Registration is the account-creation request payload.
type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password" validate:"required,min=6"`
	// ReferrerCode ties the new account into the referral tree.
	ReferrerCode string `json:"referrer_code,omitempty"`
}

// TokenResponse is returned by the auth endpoints.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the authenticated account profile.
type User struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone,omitempty"`
	Role          string  `json:"role"`
	ReferralCode  string  `json:"referral_code,omitempty"`
	PointsBalance float64 `json:"points_balance"`
}

// Product is one catalog entry. Price is in meticais; Raw keeps the
// untyped payload so stock hints can be probed out of whatever field the
// backend chose to carry them in.
type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Price       float64        `json:"price"`
	ImageURL    string         `json:"image_url,omitempty"`
	Raw         map[string]any `json:"-"`
}

// OrderItem is one line of an order submission.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderRequest is the order-creation payload.
type OrderRequest struct {
	Items           []OrderItem `json:"items"`
	PointsToUse     float64     `json:"points_to_use"`
	DeliveryAddress string      `json:"delivery_address,omitempty"`
}

// Order is a created or listed order.
type Order struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	Total      float64   `json:"total"`
	PointsUsed float64   `json:"points_used"`
	CreatedAt  time.Time `json:"created_at"`
}

// PaymentRequest is the payment-confirmation payload.
type PaymentRequest struct {
	OrderID   string  `json:"order_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference string  `json:"reference,omitempty"`
}

// Payment is a confirmed payment record.
type Payment struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Commission is one referral commission entry.
type Commission struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Level     int       `json:"level"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// CommissionSummary aggregates an account's commission standing.
type CommissionSummary struct {
	TotalEarned  float64 `json:"total_earned"`
	TotalPending float64 `json:"total_pending"`
	TotalPaid    float64 `json:"total_paid"`
}

// PayoutGenerateRequest bounds the commission window batched into payouts.
// Zero days means the backend default window.
type PayoutGenerateRequest struct {
	Days int `json:"days,omitempty"`
}

// PayoutPaidRequest records how a payout was settled.
type PayoutPaidRequest struct {
	Method    string `json:"method,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// ProductInput carries the admin-editable product fields. Pointer fields
// drop out of the payload when nil, so the same type serves both creation
// and partial update.
type ProductInput struct {
	Name        string   `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url"`
	VideoURL    *string  `json:"video_url,omitempty" validate:"omitempty,url"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Cost        *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Active      *bool    `json:"active,omitempty"`
}

// ProductStatus is the deactivation acknowledgement.
type ProductStatus struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

// AdminOrder is one order as the back office sees it, with the buyer
// attached.
type AdminOrder struct {
	Order
	UserID    string `json:"user_id,omitempty"`
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// Payout is one commission payout batch entry.
type Payout struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	Period    string    `json:"period,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CentavosToMeticais converts an internal centavo amount to the float
// meticais figure the core API expects.
func CentavosToMeticais(centavos int64) float64 {
	return float64(centavos) / 100
}
