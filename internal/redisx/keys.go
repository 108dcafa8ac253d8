package redisx

import (
	"fmt"
	"time"
)

const (
	// Booked dates per bulan: booked:{yyyy-mm} -> ["2025-12-25", ...]
	KeyBookedMonth = "booked:%04d-%02d"

	// Semua booked dates (endpoint bulk)
	KeyBookedAll = "booked:all"

	// Payment capture flow: payflow:{flow_id} -> Flow JSON
	KeyPaymentFlow = "payflow:%s"

	// Cache detail order: order_view:{order_id} -> Order JSON
	KeyOrderView = "order_view:%d"

	// Set berisi payment id VA yang masih pending (dipolling worker)
	KeyVAWatch = "va:watch"

	// Status VA terakhir yang berhasil dibaca: va:status:{payment_id}
	KeyVAStatus = "va:status:%d"

	// Dedup event processing: dedup:{service}:{id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLPaymentFlow = 24 * time.Hour
	TTLOrderView   = 5 * time.Minute
	TTLVAStatus    = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)

func BookedMonth(year, month int) string { return fmt.Sprintf(KeyBookedMonth, year, month) }
func PaymentFlow(id string) string       { return fmt.Sprintf(KeyPaymentFlow, id) }
func OrderView(orderID int64) string     { return fmt.Sprintf(KeyOrderView, orderID) }
func VAStatus(paymentID int64) string    { return fmt.Sprintf(KeyVAStatus, paymentID) }
func Dedup(service, id string) string    { return fmt.Sprintf(KeyDedup, service, id) }
