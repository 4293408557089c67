// api/dao/tenant_dao.go
package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	campus_errors "github.com/campuspulse/api/errors"
	logger "github.com/campuspulse/api/logging"
	"github.com/campuspulse/api/model"
)

type TenantDAO struct {
	Driver neo4j.Driver
}

func NewTenantDAO(driver neo4j.Driver) *TenantDAO {
	dao := &TenantDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Tenant", zap.Error(err))
	}
	return dao
}

// EnsureUniqueConstraint enforces global uniqueness of external_org_ref.
func (dao *TenantDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on Tenant external_org_ref")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_tenant_external_org_ref IF NOT EXISTS
        FOR (t:Tenant) REQUIRE t.external_org_ref IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		return fmt.Errorf("failed to ensure unique constraint: %w", err)
	}
	return nil
}

func (dao *TenantDAO) GetTenant(ctx context.Context, tenantID string) (model.Tenant, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (t:Tenant {id: $id})
    RETURN t.id AS id, t.external_org_ref AS external_org_ref, t.name AS name
    `
	result, err := session.Run(query, map[string]interface{}{"id": tenantID})
	if err != nil {
		logger.Error("Failed to execute tenant lookup",
			zap.Error(err),
			zap.String("tenantID", tenantID),
			zap.Duration("duration", time.Since(start)))
		return model.Tenant{}, campus_errors.ErrDatabaseOperation
	}

	if result.Next() {
		record := result.Record()
		t := model.Tenant{}
		if v, ok := record.Get("id"); ok {
			t.ID, _ = v.(string)
		}
		if v, ok := record.Get("external_org_ref"); ok {
			t.ExternalOrgRef, _ = v.(string)
		}
		if v, ok := record.Get("name"); ok {
			t.Name, _ = v.(string)
		}
		return t, nil
	}

	logger.Warn("Tenant not found", zap.String("tenantID", tenantID))
	return model.Tenant{}, campus_errors.ErrTenantNotFound
}
