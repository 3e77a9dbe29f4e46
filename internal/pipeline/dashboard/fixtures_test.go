package dashboard

import "time"

func emptyRow(width int) []any {
	row := make([]any, width)
	for i := range row {
		row[i] = ""
	}
	return row
}

func saleRow(date, sku, product string, price, discount any) []any {
	row := emptyRow(18)
	row[1] = date
	row[2] = sku
	row[3] = product
	row[4] = "ROPA"
	row[6] = price
	row[7] = discount
	row[8] = "1"
	row[12] = "Tienda"
	row[13] = "Olva"
	return row
}

func expenseRow(kind, date string, amount any, center string) []any {
	row := emptyRow(15)
	row[1] = kind
	row[2] = date
	row[4] = "Pago"
	row[8] = amount
	row[9] = center
	return row
}

func purchaseRow(date, sku, product, category, provider, pickup, delivery string, qty, unitUSD, feeUSD, rate, total any) []any {
	row := emptyRow(20)
	row[0] = date
	row[1] = "Proveedor China"
	row[3] = sku
	row[4] = product
	row[5] = category
	row[6] = qty
	row[7] = unitUSD
	row[8] = feeUSD
	row[9] = rate
	row[10] = provider
	row[11] = pickup
	row[12] = delivery
	row[13] = total
	row[15] = "Lima"
	return row
}

func inventoryRow(sku, product string, unitCost, stock any) []any {
	row := emptyRow(10)
	row[0] = sku
	row[1] = product
	row[2] = "ROPA"
	row[4] = unitCost
	row[6] = stock
	return row
}

func header(width int) []any {
	row := make([]any, width)
	for i := range row {
		row[i] = "col"
	}
	return row
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
