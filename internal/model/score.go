package model

// ScoreMatrix holds association scores with the same shape as the
// CountsMatrix it was derived from. Rows follow dimension A and columns
// follow dimension B.
type ScoreMatrix struct {
	// Method names the normalization that produced the scores.
	Method string `json:"method"`

	// RowLabels are the display labels of dimension A.
	RowLabels []string `json:"row_labels"`

	// ColLabels are the display labels of dimension B.
	ColLabels []string `json:"col_labels"`

	// Scores holds the score of A-term i against B-term j at [i][j].
	Scores [][]float64 `json:"scores"`
}

// Shape returns (rows, cols).
func (s *ScoreMatrix) Shape() (int, int) {
	return len(s.RowLabels), len(s.ColLabels)
}

// Column returns a copy of column j.
func (s *ScoreMatrix) Column(j int) []float64 {
	col := make([]float64, len(s.Scores))
	for i, row := range s.Scores {
		col[i] = row[j]
	}
	return col
}

// ColumnStats summarizes one column of a ScoreMatrix.
type ColumnStats struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Q25   float64 `json:"q25"`
	Q50   float64 `json:"q50"`
	Q75   float64 `json:"q75"`
	Max   float64 `json:"max"`
}
