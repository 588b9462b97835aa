package campaign

import (
	"fmt"

	"bayopt/internal/model"
	"bayopt/internal/table"
)

// Snapshot converts the campaign state into its persistent record. The
// recommendation cache is deliberately not captured: a restored campaign
// recomputes its next batch.
func (c *Campaign) Snapshot(id string) (model.CampaignSnapshot, error) {
	snap := model.CampaignSnapshot{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: model.CurrentSchemaVersion,
			CodecVersion:  model.CurrentCodecVersion,
		},
		ID:          id,
		BatchesDone: c.batchesDone,
		FitsDone:    c.fitsDone,
		Columns:     c.measurements.Columns(),
	}
	for i := 0; i < c.measurements.Len(); i++ {
		row, err := c.measurements.Row(i)
		if err != nil {
			return model.CampaignSnapshot{}, err
		}
		values := make(map[string]model.CellRecord, len(row))
		for name, cell := range row {
			values[name] = encodeCell(cell)
		}
		snap.Measurements = append(snap.Measurements, model.MeasurementRecord{
			BatchNr: c.batchNr[i],
			FitNr:   c.fitNr[i],
			Values:  values,
		})
	}
	return snap, nil
}

// Restore rebuilds the measurement log and counters from a snapshot. The
// search space is re-informed of the measured rows so sampling keeps
// avoiding them.
func (c *Campaign) Restore(snap model.CampaignSnapshot) error {
	restored := table.New(c.measurements.Columns()...)
	var batchNr, fitNr []int
	for i, rec := range snap.Measurements {
		row := make(map[string]table.Cell, len(rec.Values))
		for name, value := range rec.Values {
			cell, err := decodeCell(value)
			if err != nil {
				return fmt.Errorf("measurement %d column %q: %w", i, name, err)
			}
			row[name] = cell
		}
		if err := restored.AppendRow(row); err != nil {
			return err
		}
		batchNr = append(batchNr, rec.BatchNr)
		fitNr = append(fitNr, rec.FitNr)
	}

	if restored.Len() > 0 {
		if err := c.space.MarkAsMeasured(restored, c.withinTolerance); err != nil {
			return err
		}
	}

	c.measurements = restored
	c.batchNr = batchNr
	c.fitNr = fitNr
	c.batchesDone = snap.BatchesDone
	c.fitsDone = snap.FitsDone
	c.cached = nil
	return nil
}

func encodeCell(cell table.Cell) model.CellRecord {
	switch cell.Kind {
	case table.KindFloat:
		return model.CellRecord{Kind: "float", Float: cell.Float}
	case table.KindString:
		return model.CellRecord{Kind: "string", Str: cell.Str}
	case table.KindBool:
		return model.CellRecord{Kind: "bool", Bool: cell.Bool}
	default:
		return model.CellRecord{Kind: "missing"}
	}
}

func decodeCell(rec model.CellRecord) (table.Cell, error) {
	switch rec.Kind {
	case "float":
		return table.Float(rec.Float), nil
	case "string":
		return table.Str(rec.Str), nil
	case "bool":
		return table.Bool(rec.Bool), nil
	case "missing":
		return table.Missing(), nil
	default:
		return table.Cell{}, fmt.Errorf("unknown cell kind %q", rec.Kind)
	}
}
