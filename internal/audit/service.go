package audit

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"

	errors "github.com/radityasurya/pharmacy-network/internal"
	auditDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/audit"
)

// Filter narrows an audit query for the operator console. Zero values mean
// "no restriction".
type Filter struct {
	Severity string
	Action   string
	TenantID string
	Search   string
	Limit    int
	Offset   int
}

type RepositoryAPI interface {
	// Append inserts a single entry outside any business transaction. Used
	// by the security escalator; business mutations append through their own
	// repositories instead so the entry shares the mutation's transaction.
	Append(entry *auditDatamodel.AuditEntry) error
	Query(f Filter) ([]*auditDatamodel.AuditEntry, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Record appends a standalone entry that has no business mutation to share
// a transaction with, such as a refused protected mutation.
func (s *Service) Record(e *Entry) error {
	if err := s.repo.Append(ToDataModel(e)); err != nil {
		s.logger.Error("audit append failed", "error", err, "action", e.Action)
		return errors.NewStoreUnavailableError(err)
	}
	return nil
}

// Query returns entries newest-first, clamped to a console page. Reads are
// not audited.
func (s *Service) Query(f Filter) ([]*Entry, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	return s.list(f)
}

func (s *Service) list(f Filter) ([]*Entry, error) {
	rows, err := s.repo.Query(f)
	if err != nil {
		s.logger.Error("audit query failed", "error", err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	return FromDataModelSlice(rows), nil
}

var csvHeader = []string{"timestamp", "action", "severity", "details", "ip_address"}

// exportMaxRows keeps a runaway filter from streaming the whole table.
const exportMaxRows = 10000

// ExportCSV streams the filtered result set newest-first for the security
// console's download button. An export is the whole filtered set, so the
// console page clamp does not apply here.
func (s *Service) ExportCSV(w io.Writer, f Filter) error {
	if f.Limit <= 0 || f.Limit > exportMaxRows {
		f.Limit = exportMaxRows
	}
	entries, err := s.list(f)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.NewInternalError("failed to write export header", err)
	}

	for _, e := range entries {
		details := "{}"
		if len(e.Details) > 0 {
			if raw, marshalErr := json.Marshal(e.Details); marshalErr == nil {
				details = string(raw)
			}
		}
		record := []string{
			e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			string(e.Action),
			string(e.Severity),
			details,
			e.IPAddress,
		}
		if err := cw.Write(record); err != nil {
			return errors.NewInternalError("failed to write export row", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.NewInternalError("failed to flush export", err)
	}

	s.logger.Info("audit export completed", "rows", len(entries))
	return nil
}
