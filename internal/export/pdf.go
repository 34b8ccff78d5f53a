package export

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"github.com/goodtune/screenpulse/internal/metrics"
	"github.com/goodtune/screenpulse/internal/usage"
)

// PDFSink renders reports as a single-column A4 PDF document.
type PDFSink struct {
	path   string
	logger zerolog.Logger
}

// NewPDFSink creates a sink writing to path.
func NewPDFSink(path string, logger zerolog.Logger) *PDFSink {
	return &PDFSink{
		path:   path,
		logger: logger.With().Str("component", "export").Logger(),
	}
}

// Write renders the rows and saves the document. Rendering is cheap;
// the context is only consulted between pages.
func (s *PDFSink) Write(ctx context.Context, title string, generatedAt time.Time, rows []usage.ReportRow) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, title, "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, "Generated: "+generatedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	doc.Ln(4)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			metrics.ReportExports.WithLabelValues("error").Inc()
			return err
		}

		doc.SetFont("Helvetica", "B", 11)
		doc.CellFormat(0, 6, fmt.Sprintf("%s [%s]", row.Label, row.Category), "", 1, "L", false, 0, "")

		doc.SetFont("Helvetica", "", 10)
		detail := fmt.Sprintf("%s | %d opens", usage.FormatDuration(row.Foreground), row.Opens)
		doc.CellFormat(0, 5, detail, "", 1, "L", false, 0, "")
		doc.Ln(2)
	}

	if err := doc.OutputFileAndClose(s.path); err != nil {
		metrics.ReportExports.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to write report %s: %w", s.path, err)
	}

	metrics.ReportExports.WithLabelValues("success").Inc()
	s.logger.Info().
		Str("path", s.path).
		Int("rows", len(rows)).
		Msg("Report exported")
	return nil
}
