package orders

import "github.com/ariefcatur/go-delivery-marketplace/internal/models"

var validNext = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.StatusPending:        {models.StatusAccepted: true, models.StatusCanceled: true},
	models.StatusAccepted:       {models.StatusInPreparation: true},
	models.StatusInPreparation:  {models.StatusOutForDelivery: true},
	models.StatusOutForDelivery: {models.StatusDelivered: true},
	models.StatusDelivered:      {},
	models.StatusCanceled:       {},
}

func ValidStatus(s models.OrderStatus) bool {
	_, ok := validNext[s]
	return ok
}

func CanTransition(from, to models.OrderStatus) bool {
	return validNext[from][to]
}

// Open reports whether the order still needs attention.
func Open(s models.OrderStatus) bool {
	return s != models.StatusDelivered && s != models.StatusCanceled
}

// statusMessages is the notification copy sent to the customer.
var statusMessages = map[models.OrderStatus]string{
	models.StatusAccepted:       "order accepted",
	models.StatusInPreparation:  "order is being prepared",
	models.StatusOutForDelivery: "courier is on the way",
	models.StatusDelivered:      "order delivered, enjoy.",
}
