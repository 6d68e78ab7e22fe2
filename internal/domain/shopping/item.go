package shopping

// RawItem is a loosely typed shopping item as received from a frontend,
// e.g. a decoded JSON object.
type RawItem map[string]any

const (
	FieldName     = "name"
	FieldPrice    = "price"
	FieldQuantity = "quantity"

	// FieldSchema keys violations that concern an item as a whole. It is
	// reserved: an input key of the same name is rejected, not echoed.
	FieldSchema = "_schema"
)

type Item struct {
	Name     string `json:"name" validate:"required"`
	Price    int64  `json:"price" validate:"min=0"`
	Quantity int64  `json:"quantity" validate:"min=0"`
}

// Cost returns price × quantity. Callers are expected to have checked the
// product fits in int64; the Validator does.
func (i Item) Cost() int64 {
	return i.Price * i.Quantity
}

type List []Item

func (l List) Total() int64 {
	var total int64
	for _, item := range l {
		total += item.Cost()
	}
	return total
}

type EmailList []string
