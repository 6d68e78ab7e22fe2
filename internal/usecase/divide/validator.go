package divide

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	domshopping "example.com/divide-account/internal/domain/shopping"
)

// Validator checks raw shopping items and recipient emails. Every violation
// found in one pass is reported; nothing short-circuits.
//
// Integer fields accept only integer-typed values: Go integer kinds and
// json.Number literals without fraction or exponent. Floats, even 5.0, are
// rejected so that nothing is rounded silently.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: validate}
}

// Validate checks both inputs in one pass. A nil slice means the input was
// absent and is reported as missing; an empty one is too short.
func (v *Validator) Validate(rawItems []domshopping.RawItem, rawEmails []any) (domshopping.List, domshopping.EmailList, error) {
	itemErrs := &domshopping.ShoppingListErrors{}
	items := v.validateItems(rawItems, itemErrs)

	emailErrs := &domshopping.EmailListErrors{}
	emails := v.validateEmails(rawEmails, emailErrs)

	if itemErrs.Empty() && emailErrs.Empty() {
		return items, emails, nil
	}

	verr := &domshopping.ValidationError{}
	if !itemErrs.Empty() {
		verr.ShoppingList = itemErrs
	}
	if !emailErrs.Empty() {
		verr.Emails = emailErrs
	}
	return nil, nil, verr
}

func (v *Validator) validateItems(raw []domshopping.RawItem, errs *domshopping.ShoppingListErrors) domshopping.List {
	if raw == nil {
		errs.AddList(domshopping.KindStructural, domshopping.MsgMissing)
		return nil
	}
	if len(raw) == 0 {
		errs.AddList(domshopping.KindListShape, domshopping.MsgTooShort)
		return nil
	}

	items := make(domshopping.List, 0, len(raw))
	var total int64
	overflow := false
	for i, r := range raw {
		item, ok := v.validateItem(i, r, errs)
		if !ok {
			continue
		}
		items = append(items, item)

		if overflow {
			continue
		}
		cost, ok := mulNonNegative(item.Price, item.Quantity)
		if !ok || total > math.MaxInt64-cost {
			overflow = true
			continue
		}
		total += cost
	}
	if overflow {
		errs.AddList(domshopping.KindRange, domshopping.MsgTotalOverflow)
	}
	return items
}

var itemFields = map[string]string{
	domshopping.FieldName:     "Name",
	domshopping.FieldPrice:    "Price",
	domshopping.FieldQuantity: "Quantity",
}

func (v *Validator) validateItem(index int, raw domshopping.RawItem, errs *domshopping.ShoppingListErrors) (domshopping.Item, bool) {
	var item domshopping.Item
	if raw == nil {
		errs.AddItem(index, domshopping.FieldSchema, domshopping.KindStructural, domshopping.MsgInvalidType)
		return item, false
	}

	ok := true
	fail := func(field string, kind domshopping.Kind, msg string) {
		errs.AddItem(index, field, kind, msg)
		ok = false
	}

	var parsed []string
	if val, present := raw[domshopping.FieldName]; !present {
		fail(domshopping.FieldName, domshopping.KindStructural, domshopping.MsgMissing)
	} else if val == nil {
		fail(domshopping.FieldName, domshopping.KindStructural, domshopping.MsgNull)
	} else if name, isString := val.(string); !isString {
		fail(domshopping.FieldName, domshopping.KindStructural, domshopping.MsgNotString)
	} else {
		item.Name = name
		parsed = append(parsed, itemFields[domshopping.FieldName])
	}

	for _, field := range []string{domshopping.FieldPrice, domshopping.FieldQuantity} {
		val, present := raw[field]
		if !present {
			fail(field, domshopping.KindStructural, domshopping.MsgMissing)
			continue
		}
		if val == nil {
			fail(field, domshopping.KindStructural, domshopping.MsgNull)
			continue
		}
		n, err := toInt64(val)
		if errors.Is(err, strconv.ErrRange) {
			fail(field, domshopping.KindRange, domshopping.MsgOutOfRange)
			continue
		}
		if err != nil {
			fail(field, domshopping.KindStructural, domshopping.MsgNotInteger)
			continue
		}
		if field == domshopping.FieldPrice {
			item.Price = n
		} else {
			item.Quantity = n
		}
		parsed = append(parsed, itemFields[field])
	}

	var unknown []string
	for key := range raw {
		if _, known := itemFields[key]; !known {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		if key == domshopping.FieldSchema {
			fail(domshopping.FieldSchema, domshopping.KindStructural, domshopping.MsgReservedField)
			continue
		}
		fail(key, domshopping.KindStructural, domshopping.MsgUnknownField)
	}

	if len(parsed) > 0 {
		if err := v.validate.StructPartial(item, parsed...); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				fail(domshopping.FieldSchema, domshopping.KindStructural, err.Error())
				return item, false
			}
			for _, fe := range fieldErrs {
				kind, msg := describeFieldError(fe)
				fail(fe.Field(), kind, msg)
			}
		}
	}
	return item, ok
}

func describeFieldError(fe validator.FieldError) (domshopping.Kind, string) {
	switch fe.Tag() {
	case "required":
		return domshopping.KindStructural, domshopping.MsgEmpty
	case "min":
		return domshopping.KindRange, domshopping.MsgNegative
	default:
		return domshopping.KindStructural, fe.Error()
	}
}

func (v *Validator) validateEmails(raw []any, errs *domshopping.EmailListErrors) domshopping.EmailList {
	if raw == nil {
		errs.AddList(domshopping.KindStructural, domshopping.MsgMissing)
		return nil
	}
	if len(raw) == 0 {
		errs.AddList(domshopping.KindListShape, domshopping.MsgTooShort)
		return nil
	}

	emails := make(domshopping.EmailList, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	duplicated := false
	for i, r := range raw {
		if r == nil {
			errs.AddEntry(i, domshopping.KindStructural, domshopping.MsgNull)
			continue
		}
		email, isString := r.(string)
		if !isString {
			errs.AddEntry(i, domshopping.KindStructural, domshopping.MsgNotString)
			continue
		}
		if !v.isEmail(email) {
			errs.AddEntry(i, domshopping.KindEmailFormat, domshopping.MsgInvalidEmail)
		}
		if _, exists := seen[email]; exists {
			errs.AddEntry(i, domshopping.KindDuplicate, domshopping.MsgDuplicateEmail)
			duplicated = true
		} else {
			seen[email] = struct{}{}
		}
		emails = append(emails, email)
	}
	if duplicated {
		errs.AddList(domshopping.KindDuplicate, domshopping.MsgEmailsNotUniq)
	}
	return emails
}

// isEmail applies the validator's email rule and additionally requires a
// dotted domain made of non-empty labels.
func (v *Validator) isEmail(s string) bool {
	if err := v.validate.Var(s, "required,email"); err != nil {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	labels := strings.Split(s[at+1:], ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}
	return true
}

var errNotInteger = errors.New("not an integer")

func toInt64(val any) (int64, error) {
	switch n := val.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return fromUint(uint64(n))
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return fromUint(n)
	case json.Number:
		return strconv.ParseInt(n.String(), 10, 64)
	default:
		return 0, errNotInteger
	}
}

func fromUint(n uint64) (int64, error) {
	if n > math.MaxInt64 {
		return 0, strconv.ErrRange
	}
	return int64(n), nil
}

func mulNonNegative(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt64/b {
		return 0, false
	}
	return a * b, true
}
