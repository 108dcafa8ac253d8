package orders

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusOngoing        Status = "ongoing"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPendingPayment: {StatusOngoing: true, StatusCancelled: true},
	StatusOngoing:        {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted:      {},
	StatusCancelled:      {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Terminal orders only accept a review afterwards.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var statusLabels = map[Status]string{
	StatusPendingPayment: "Menunggu Pembayaran",
	StatusOngoing:        "Berlangsung",
	StatusCompleted:      "Selesai",
	StatusCancelled:      "Dibatalkan",
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
	PaymentExpired  PaymentStatus = "expired"
)

func (s PaymentStatus) Terminal() bool {
	return s == PaymentVerified || s == PaymentRejected || s == PaymentExpired
}

var paymentLabels = map[PaymentStatus]string{
	PaymentPending:  "Menunggu Verifikasi",
	PaymentVerified: "Terverifikasi",
	PaymentRejected: "Ditolak",
	PaymentExpired:  "Kedaluwarsa",
}

func (s PaymentStatus) Label() string {
	if l, ok := paymentLabels[s]; ok {
		return l
	}
	return string(s)
}
