package logic

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chatmma/analyst-tracker/internal/models"
)

// ExportColumns is the column order other pick consumers import
var ExportColumns = []string{"date", "analyst", "platform", "event", "location", "fight", "weight_class", "pick", "context"}

// FullExportColumns appends the fields only this tracker stores
var FullExportColumns = append(append([]string{}, ExportColumns...), "method", "confidence")

type exportService struct {
	pg     PgPool
	logger *zap.SugaredLogger
}

func NewExportService(pg PgPool, logger *zap.Logger) ExportService {
	return &exportService{pg: pg, logger: logger.Sugar()}
}

// ExportEventCSV writes one row per pick on the event in bout order
func (s *exportService) ExportEventCSV(ctx context.Context, eventID uuid.UUID, full bool, w io.Writer) error {
	event, err := getEvent(ctx, s.pg, eventID)
	if err != nil {
		return err
	}
	fights, err := listFights(ctx, s.pg, eventID)
	if err != nil {
		return err
	}
	picks, err := listPicks(ctx, s.pg, PickFilter{EventID: &eventID, Limit: 1000})
	if err != nil {
		return err
	}

	byID := make(map[uuid.UUID]models.Fight, len(fights))
	for _, f := range fights {
		byID[f.ID] = f
	}

	cw := csv.NewWriter(w)
	header := ExportColumns
	if full {
		header = FullExportColumns
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, p := range picks {
		if err := cw.Write(exportRow(event, byID[p.FightID], p, full)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	s.logger.Infow("Event exported", "event_id", eventID, "rows", len(picks), "full", full)
	return nil
}

func exportRow(event *models.Event, fight models.Fight, p models.AnalystPick, full bool) []string {
	date := ""
	if event.Date != nil {
		date = event.Date.Format(models.DateLayout)
	}
	pick := ""
	if p.PickedFighter != nil {
		pick = *p.PickedFighter
	}
	row := []string{date, p.AnalystName, p.Platform, event.Name, event.Location, fight.Label(), fight.WeightClass, pick, p.ReasoningNotes}
	if full {
		row = append(row, string(p.MethodPrediction), string(p.ConfidenceTag))
	}
	return row
}
