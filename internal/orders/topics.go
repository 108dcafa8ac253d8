package orders

import "strconv"

const (
	// activity dari web tier, dikonsumsi notifikasi / audit
	TopicActivity = "wedding.web.activity"
	// dikirim backend setelah payment gateway mengonfirmasi VA
	TopicVASettled = "payment.va.settled"
)

// Partition key = order id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID int64) []byte { return []byte(strconv.FormatInt(orderID, 10)) }
