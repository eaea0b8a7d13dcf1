package report

import (
	"fmt"
	"strings"

	"github.com/example/weighbridge/internal/model"
)

const ticketWidth = 40

// RenderTicket produces the fixed-layout weighing receipt for a completed
// transaction, ready for a thermal or dot-matrix printer.
func RenderTicket(tx *model.Transaction, cfg model.AppConfig) string {
	var b strings.Builder

	center := func(s string) {
		pad := (ticketWidth - len(s)) / 2
		if pad < 0 {
			pad = 0
		}
		b.WriteString(strings.Repeat(" ", pad) + s + "\n")
	}
	row := func(label, value string) {
		gap := ticketWidth - len(label) - len(value)
		if gap < 1 {
			gap = 1
		}
		b.WriteString(label + strings.Repeat(" ", gap) + value + "\n")
	}
	rule := strings.Repeat("=", ticketWidth) + "\n"
	thinRule := strings.Repeat("-", ticketWidth) + "\n"

	center(cfg.CompanyName)
	center(cfg.CompanyAddress)
	center(cfg.TicketHeader)
	b.WriteString(rule)

	row("NO TIKET", "#"+tx.TicketNumber)
	row("TANGGAL", tx.SecondTimestamp.Format("02/01/2006"))
	row("JAM", tx.SecondTimestamp.Format("15:04:05"))
	b.WriteString(thinRule)
	row("PLAT NOMOR", tx.PlateNumber)
	row("PENGEMUDI", orDash(tx.DriverName))
	row("MUATAN", tx.CargoType)
	row("ASAL/TUJUAN", tx.PartyName)
	b.WriteString(thinRule)
	row("BRUTO", fmt.Sprintf("%d KG", tx.Bruto()))
	row("TARA", fmt.Sprintf("%d KG", tx.Tara()))
	row("NETTO AKHIR", fmt.Sprintf("%d KG", tx.NetWeight))
	b.WriteString(rule)
	row("OP: "+tx.Operator, "PRO: "+string(tx.OperatorRole))
	center(cfg.TicketFooter)

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
