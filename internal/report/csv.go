package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/example/weighbridge/internal/model"
)

// csvHeader is the fixed export column order. Spreadsheet tools key on it,
// so it never changes.
const csvHeader = "No. Tiket,Tanggal,Plat,Sopir,Muatan,Pelanggan,Bruto,Tara,Netto,Operator"

// WriteCSV renders completed transactions as UTF-8 CSV with a byte-order
// mark. Text fields are quoted; the three weight columns stay bare numbers
// so spreadsheets treat them as numeric.
func WriteCSV(w io.Writer, txs []model.Transaction) error {
	if _, err := io.WriteString(w, "\uFEFF"+csvHeader+"\n"); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, tx := range txs {
		row := fmt.Sprintf("%s,%s,%s,%s,%s,%s,%d,%d,%d,%s\n",
			quote(tx.TicketNumber),
			quote(tx.SecondTimestamp.Format("02/01/2006")),
			quote(tx.PlateNumber),
			quote(tx.DriverName),
			quote(tx.CargoType),
			quote(tx.PartyName),
			tx.Bruto(),
			tx.Tara(),
			tx.NetWeight,
			quote(tx.Operator),
		)
		if _, err := io.WriteString(w, row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
