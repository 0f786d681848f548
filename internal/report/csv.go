package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/bluehealth/cooccur/internal/model"
)

// WriteScoresCSV writes s as a table: a header row with an empty corner
// cell and the column labels, then one row per row label.
func WriteScoresCSV(w io.Writer, s *model.ScoreMatrix) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(s.ColLabels)+1)
	header = append(header, "")
	header = append(header, s.ColLabels...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, label := range s.RowLabels {
		record := make([]string, 0, len(s.Scores[i])+1)
		record = append(record, label)
		for _, v := range s.Scores[i] {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
