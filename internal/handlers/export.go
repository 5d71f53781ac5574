package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"icmasure/internal/logging"
	"icmasure/internal/models"
	"icmasure/internal/selection"
)

// exportSubmissions streams an xlsx workbook of the selected (already
// reconciled) submissions. Mutates nothing.
func exportSubmissions(w http.ResponseWriter, r *http.Request, sel selection.Set, subs []models.AbstractSubmission) {
	byID := make(map[int]*models.AbstractSubmission, len(subs))
	for i := range subs {
		byID[subs[i].ID] = &subs[i]
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Submissions"
	f.SetSheetName(f.GetSheetName(0), sheet)

	header := []any{"Reference", "Title", "Author", "Email", "Affiliation",
		"Status", "Payment status", "Amount (IDR)", "Submitted"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}

	row := 2
	for _, id := range sel.IDs() {
		s, ok := byID[id]
		if !ok {
			continue
		}
		payStatus, amount := "", any("")
		if s.Payment != nil {
			payStatus = string(s.Payment.Status)
			amount = s.Payment.Amount
		}
		cells := []any{
			s.Reference, s.Title, s.AuthorName(), s.AuthorEmail, s.AuthorAffil,
			string(s.Status), payStatus, amount, s.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
			http.Error(w, "Export error", http.StatusInternalServerError)
			return
		}
		row++
	}

	name := fmt.Sprintf("submissions_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := f.Write(w); err != nil {
		logging.L().Errorw("export write", "err", err)
	}
}
