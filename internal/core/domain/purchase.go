package domain

// PurchaseFields are the mutable fields of a purchase. Updates replace all of
// them at once.
type PurchaseFields struct {
	UserID   string `json:"user_id"`
	CarID    string `json:"car_id"`
	UserName string `json:"user_name"`
	CarName  string `json:"car_name"`
	Price    int64  `json:"price"`
	Discount int64  `json:"discount"`
}

type Purchase struct {
	ID string `json:"id"`
	PurchaseFields
}

func NewPurchase(id string, fields PurchaseFields) Purchase {
	return Purchase{ID: id, PurchaseFields: fields}
}
