package tenant

import (
	"log/slog"

	"github.com/radityasurya/pharmacy-network/internal"
	tenantDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/tenant"
)

type RepositoryAPI interface {
	GetByID(id string) (*tenantDatamodel.Tenant, error)
	List() ([]*tenantDatamodel.Tenant, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetByID(id string) (*Tenant, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load tenant", "error", err, "tenant_id", id)
		return nil, internal.NewStoreUnavailableError(err)
	}
	if row == nil {
		return nil, internal.ErrTenantNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) List() ([]*Tenant, error) {
	rows, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list tenants", "error", err)
		return nil, internal.NewStoreUnavailableError(err)
	}
	return FromDataModelSlice(rows), nil
}

// IsActive reports whether the tenant may act on the network. An unknown
// tenant id is a lookup failure, not a quiet deny.
func (s *Service) IsActive(id string) (bool, error) {
	t, err := s.GetByID(id)
	if err != nil {
		return false, err
	}
	return t.IsActive(), nil
}
