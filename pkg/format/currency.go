// Package format concentra el renderizado de valores para la salida del CLI:
// moneda en rupias con agrupación india (1,50,000) y fechas cortas.
package format

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// enIN aplica la agrupación de dígitos india (lakh/crore) vía x/text.
var enIN = message.NewPrinter(language.MustParse("en-IN"))

// Currency renderiza un monto en rupias sin decimales, ej. "₹1,50,000".
// Mismo comportamiento que Intl.NumberFormat('en-IN', {maximumFractionDigits: 0}).
func Currency(v decimal.Decimal) string {
	f, _ := v.Round(0).Float64()
	return enIN.Sprintf("₹%v", number.Decimal(f, number.MaxFractionDigits(0)))
}

// Quantity renderiza un entero con agrupación india.
func Quantity(n int64) string {
	return enIN.Sprintf("%v", number.Decimal(n))
}

// Timestamp renderiza una marca de tiempo corta para el listado de escaneos.
func Timestamp(t time.Time) string {
	return t.Local().Format("02 Jan 15:04:05")
}
