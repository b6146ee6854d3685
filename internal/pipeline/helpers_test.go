package pipeline

import "go-sqa-metrics/internal/model"

// table builds a dataset from a header and positional cells.
func table(columns []string, cells ...[]interface{}) model.Dataset {
	rows := make([]model.Row, 0, len(cells))
	for _, c := range cells {
		row := make(model.Row, len(columns))
		for i, col := range columns {
			if i < len(c) {
				row[col] = c[i]
			}
		}
		rows = append(rows, row)
	}
	return model.NewDataset(columns, rows)
}

func f(v float64) *float64 { return &v }

var reportColumns = []string{"File Name", "Noise Type", "dB/SNR Level", "Noise Suppression", "Voice Quality"}

// report is a small subjective test sheet with two noise types at two levels.
func report() model.Dataset {
	return table(reportColumns,
		[]interface{}{"a_traffic_5.wav", "Traffic", "5dB", 3.0, 4.0},
		[]interface{}{"b_traffic_20.wav", "Traffic", "20dB", 4.0, 4.5},
		[]interface{}{"c_babble_5.wav", "Babble", "5dB", 2.0, "n/a"},
		[]interface{}{"d_babble_20.wav", "Babble", "20dB", 3.0, 3.5},
	)
}
