package shopping

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

var ErrValidation = errors.New("validation failed")

type Kind string

const (
	KindStructural  Kind = "structural"
	KindRange       Kind = "range"
	KindListShape   Kind = "list_shape"
	KindEmailFormat Kind = "email_format"
	KindDuplicate   Kind = "duplicate"
)

const (
	MsgMissing        = "Missing data for required field."
	MsgNotString      = "Not a valid string."
	MsgEmpty          = "Field may not be empty."
	MsgNull           = "Field may not be null."
	MsgNotInteger     = "Not a valid integer."
	MsgOutOfRange     = "Number exceeds the supported range."
	MsgNegative       = "Must be greater than or equal to 0."
	MsgUnknownField   = "Unknown field."
	MsgReservedField  = "Reserved field name."
	MsgInvalidType    = "Invalid input type."
	MsgTooShort       = "Shorter than minimum length 1."
	MsgTotalOverflow  = "Total exceeds the supported range."
	MsgInvalidEmail   = "Not a valid email address."
	MsgEmailsNotUniq  = "E-mails must be unique."
	MsgDuplicateEmail = "Duplicate e-mail address."
)

type Violation struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// ItemErrors maps an item field name to its violations.
type ItemErrors map[string][]Violation

type ShoppingListErrors struct {
	List  []Violation        `json:"_list,omitempty"`
	Items map[int]ItemErrors `json:"items,omitempty"`
}

func (e *ShoppingListErrors) AddList(kind Kind, msg string) {
	e.List = append(e.List, Violation{Kind: kind, Message: msg})
}

func (e *ShoppingListErrors) AddItem(index int, field string, kind Kind, msg string) {
	if e.Items == nil {
		e.Items = make(map[int]ItemErrors)
	}
	if e.Items[index] == nil {
		e.Items[index] = make(ItemErrors)
	}
	e.Items[index][field] = append(e.Items[index][field], Violation{Kind: kind, Message: msg})
}

func (e *ShoppingListErrors) Empty() bool {
	return e == nil || (len(e.List) == 0 && len(e.Items) == 0)
}

type EmailListErrors struct {
	List    []Violation         `json:"_list,omitempty"`
	Entries map[int][]Violation `json:"entries,omitempty"`
}

func (e *EmailListErrors) AddList(kind Kind, msg string) {
	e.List = append(e.List, Violation{Kind: kind, Message: msg})
}

func (e *EmailListErrors) AddEntry(index int, kind Kind, msg string) {
	if e.Entries == nil {
		e.Entries = make(map[int][]Violation)
	}
	e.Entries[index] = append(e.Entries[index], Violation{Kind: kind, Message: msg})
}

func (e *EmailListErrors) Empty() bool {
	return e == nil || (len(e.List) == 0 && len(e.Entries) == 0)
}

// ValidationError mirrors the shape of the two inputs. A nil section means
// that input had no violations.
type ValidationError struct {
	ShoppingList *ShoppingListErrors `json:"shopping_list,omitempty"`
	Emails       *EmailListErrors    `json:"emails,omitempty"`
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Paths(), ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Paths lists every violated field path in input order, e.g.
// "shopping_list[0].price" or "emails".
func (e *ValidationError) Paths() []string {
	var paths []string
	if sl := e.ShoppingList; !sl.Empty() {
		if len(sl.List) > 0 {
			paths = append(paths, "shopping_list")
		}
		for _, idx := range sortedKeys(sl.Items) {
			fields := make([]string, 0, len(sl.Items[idx]))
			for field := range sl.Items[idx] {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			for _, field := range fields {
				paths = append(paths, "shopping_list["+strconv.Itoa(idx)+"]."+field)
			}
		}
	}
	if em := e.Emails; !em.Empty() {
		if len(em.List) > 0 {
			paths = append(paths, "emails")
		}
		for _, idx := range sortedKeys(em.Entries) {
			paths = append(paths, "emails["+strconv.Itoa(idx)+"]")
		}
	}
	return paths
}

// Has reports whether any violation of the given kind was recorded.
func (e *ValidationError) Has(kind Kind) bool {
	match := func(vs []Violation) bool {
		for _, v := range vs {
			if v.Kind == kind {
				return true
			}
		}
		return false
	}
	if sl := e.ShoppingList; sl != nil {
		if match(sl.List) {
			return true
		}
		for _, fields := range sl.Items {
			for _, vs := range fields {
				if match(vs) {
					return true
				}
			}
		}
	}
	if em := e.Emails; em != nil {
		if match(em.List) {
			return true
		}
		for _, vs := range em.Entries {
			if match(vs) {
				return true
			}
		}
	}
	return false
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
