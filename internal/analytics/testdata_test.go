package analytics

import (
	"time"
)

var salesMap = FieldMap{Value: "netSales", Value2: "profit", Date: "orderDate", Category: "customerSegment", Name: "productName"}

func sale(date, product, segment, customer string, net, profit float64) Record {
	rec := Record{
		"productName":     product,
		"customerSegment": segment,
		"customerId":      customer,
		"netSales":        net,
		"profit":          profit,
	}
	if date != "" {
		rec["orderDate"] = date
	}
	return rec
}

func sampleSales() []Record {
	return []Record{
		sale("2024-01-05", "Laptop", "Corporate", "C1", 1200, 300),
		sale("2024-01-20", "Phone", "Consumer", "C2", 800, 160),
		sale("2024-02-03", "Laptop", "Corporate", "C1", 1300, 320),
		sale("2024-02-14", "Monitor", "Home Office", "C3", 300, 45),
		sale("2024-03-01", "Laptop", "Consumer", "C4", 1250, 310),
		sale("2024-03-18", "Cable", "Consumer", "C5", 20, 8),
		sale("2024-04-02", "Phone", "Corporate", "C1", 820, 170),
		sale("2024-04-22", "Mouse", "Home Office", "C3", 35, 12),
	}
}

func mustDate(s string) time.Time {
	t, ok := ParseDate(s)
	if !ok {
		panic("bad test date " + s)
	}
	return t
}
