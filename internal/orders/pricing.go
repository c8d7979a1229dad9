package orders

// DeletedCustomerName is shown on orders whose customer was since deleted.
// Such orders price to zero.
const DeletedCustomerName = "Customer Deleted"

// Totals computes the money columns for one order from the customer's
// current unit prices. Orders never store totals, so every read path goes
// through here.
func Totals(standardQty, premiumQty int, standardPrice, premiumPrice float64) (standardTotal, premiumTotal, total float64) {
	standardTotal = float64(standardQty) * standardPrice
	premiumTotal = float64(premiumQty) * premiumPrice
	total = standardTotal + premiumTotal
	return standardTotal, premiumTotal, total
}

// Reprice fills the derived columns on a joined row. When the customer no
// longer exists the row gets the deleted-customer sentinel, empty phone and
// zero prices, which in turn zeroes every total.
func Reprice(row *OrderRow) {
	if !row.CustomerExists {
		row.CustomerName = DeletedCustomerName
		row.CustomerPhone = ""
		row.StandardPrice = 0
		row.PremiumPrice = 0
	}
	row.StandardTotal, row.PremiumTotal, row.Total = Totals(
		row.StandardQty, row.PremiumQty, row.StandardPrice, row.PremiumPrice,
	)
}
