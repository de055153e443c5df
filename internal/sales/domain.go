package sales

import (
	"bytes"
	"encoding/json"
	"time"
)

// Details holds the business fields of a sale supplied by the caller.
type Details struct {
	ProductName  string `json:"productName"`
	ProductPrice int64  `json:"productPrice"`
	Amount       int64  `json:"amount"`
	TotalPrice   int64  `json:"totalPrice"`
}

// Sale represents a recorded retail transaction.
type Sale struct {
	ID int64 `json:"id"`
	Details
	CreatedAt time.Time `json:"createdAt"`
}

// UpdatedSale is returned by an update. It carries no creation time since
// the stored one is never re-read.
type UpdatedSale struct {
	ID int64 `json:"id"`
	Details
}

// Input is the request body of create and update. Pointer fields tell a
// missing field apart from a zero value.
type Input struct {
	ProductName  *string `json:"productName"`
	ProductPrice *int64  `json:"productPrice"`
	Amount       *int64  `json:"amount"`
	TotalPrice   *int64  `json:"totalPrice"`
}

// Validate reports the first missing field, checked in the order
// productName, productPrice, amount, totalPrice.
func (in Input) Validate() error {
	switch {
	case in.ProductName == nil:
		return &ValidationError{Field: "productName"}
	case in.ProductPrice == nil:
		return &ValidationError{Field: "productPrice"}
	case in.Amount == nil:
		return &ValidationError{Field: "amount"}
	case in.TotalPrice == nil:
		return &ValidationError{Field: "totalPrice"}
	}
	return nil
}

// RequiredFields lists the request fields in the order they are checked.
var RequiredFields = []string{"productName", "productPrice", "amount", "totalPrice"}

// CheckPresence reports the first required field absent from a raw JSON
// object, before any field is decoded into its type. A null value counts as
// absent, as it does for Validate.
func CheckPresence(obj map[string]json.RawMessage) error {
	for _, field := range RequiredFields {
		v, ok := obj[field]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return &ValidationError{Field: field}
		}
	}
	return nil
}

// Details returns the dereferenced fields. Call Validate first.
func (in Input) Details() Details {
	return Details{
		ProductName:  *in.ProductName,
		ProductPrice: *in.ProductPrice,
		Amount:       *in.Amount,
		TotalPrice:   *in.TotalPrice,
	}
}
