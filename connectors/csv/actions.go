package csv

import (
	"encoding/csv"
	"io"

	"github.com/google/uuid"
	lo "github.com/samber/lo"

	"ci-dashboard/domain/action"
)

// actionHeaders is the action tracker export schema, in column order.
var actionHeaders = []string{"Department", "Reason", "Owner", "Target", "Type", "Status"}

// WriteActions exports the action tracker as a flat UTF-8 CSV, header row
// included. Internal IDs are not exported; re-importing assigns fresh ones.
func WriteActions(w io.Writer, items []action.Item) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write(actionHeaders); err != nil {
		return err
	}
	for _, it := range items {
		row := []string{it.Department, it.Reason, it.Owner, it.Target, it.Type, it.Status}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadActions parses an action tracker CSV back into items. The column order
// is fixed to the export schema; extra columns are ignored and short rows are
// skipped.
func ReadActions(r io.Reader) ([]action.Item, error) {
	t, err := ReadTable(r)
	if err != nil {
		return nil, err
	}
	items := lo.FilterMap(t.Rows, func(row []string, _ int) (action.Item, bool) {
		if len(row) < len(actionHeaders) {
			return action.Item{}, false
		}
		return action.Item{
			ID:         uuid.NewString(),
			Department: row[0],
			Reason:     row[1],
			Owner:      row[2],
			Target:     row[3],
			Type:       row[4],
			Status:     row[5],
		}, true
	})
	return items, nil
}
