package checkout

type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
)

const (
	ReasonPriceMismatch = "PRICE_MISMATCH"
	ReasonEmptyCart     = "EMPTY_CART"
)

var validNext = map[Status]map[Status]bool{
	StatusRequested: {StatusAccepted: true, StatusRejected: true},
	StatusAccepted:  {},
	StatusRejected:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Final reports whether no further transition is possible.
func (s Status) Final() bool { return s == StatusAccepted || s == StatusRejected }
