package dto

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
)

// CreateProductRequest is the decoded body of a create call. Numeric fields are
// pointers so a missing value can be told apart from zero.
type CreateProductRequest struct {
	Name     string   `json:"name" validate:"required"`
	SKU      string   `json:"sku" validate:"min=3"`
	Price    *float64 `json:"price" validate:"required,gt=0"`
	Stock    *int     `json:"stock" validate:"required,gte=0"`
	Category string   `json:"category" validate:"category"`
}

var intType = reflect.TypeOf(0)

// UnmarshalJSON accepts a whole number written with a fraction, such as
// 100.0, for stock. Any other non-integer stock is a *json.UnmarshalTypeError.
func (r *CreateProductRequest) UnmarshalJSON(data []byte) error {
	type plain CreateProductRequest
	aux := struct {
		*plain
		Stock *json.Number `json:"stock"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "stock" {
			typeErr.Type = intType
		}
		return err
	}

	r.Stock = nil
	if aux.Stock == nil {
		return nil
	}
	stock, ok := wholeNumber(*aux.Stock)
	if !ok {
		return &json.UnmarshalTypeError{Value: "number " + aux.Stock.String(), Type: intType, Field: "stock"}
	}
	r.Stock = &stock
	return nil
}

func wholeNumber(n json.Number) (int, bool) {
	if i, err := n.Int64(); err == nil {
		return int(i), true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int(f), true
}
