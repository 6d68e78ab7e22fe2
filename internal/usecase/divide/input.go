package divide

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	domshopping "example.com/divide-account/internal/domain/shopping"
)

var ErrMalformedInput = errors.New("malformed input")

// request keeps items and emails loosely typed so that the Validator, not
// the decoder, reports type problems per field.
type request struct {
	ShoppingList []any `json:"shopping_list"`
	Emails       []any `json:"emails"`
	Notify       bool  `json:"notify"`
}

// DecodeInput reads one JSON document of the form
// {"shopping_list": [...], "emails": [...], "notify": bool}. Numbers are
// kept as json.Number so integer strictness is decided by the Validator.
func DecodeInput(r io.Reader) (Input, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var req request
	if err := dec.Decode(&req); err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if dec.More() {
		return Input{}, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedInput)
	}

	// A missing or null list stays nil so the Validator can tell it from [].
	var items []domshopping.RawItem
	if req.ShoppingList != nil {
		items = make([]domshopping.RawItem, len(req.ShoppingList))
	}
	for i, raw := range req.ShoppingList {
		// Non-object entries stay nil and are reported as invalid input.
		if obj, ok := raw.(map[string]any); ok {
			items[i] = obj
		}
	}
	return Input{
		Items:  items,
		Emails: req.Emails,
		Notify: req.Notify,
	}, nil
}
