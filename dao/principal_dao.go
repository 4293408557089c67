// api/dao/principal_dao.go
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

// PrincipalDAO reads principal records. Principals are owned by the external
// store; this layer never writes them.
type PrincipalDAO struct {
	Driver neo4j.Driver
}

func NewPrincipalDAO(driver neo4j.Driver) *PrincipalDAO {
	dao := &PrincipalDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Principal", zap.Error(err))
	}
	return dao
}

func (dao *PrincipalDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on Principal external_ref")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_principal_external_ref IF NOT EXISTS
        FOR (p:Principal) REQUIRE p.external_ref IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		return fmt.Errorf("failed to ensure unique constraint: %w", err)
	}
	return nil
}

// ByExternalRef joins a verified external identity to its principal record
// and home tenant. A principal is never tenant-less: the MEMBER_OF match is
// part of the lookup, so a dangling record reads as not found.
func (dao *PrincipalDAO) ByExternalRef(ctx context.Context, externalRef string) (model.Principal, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:Principal {external_ref: $externalRef})-[:MEMBER_OF]->(t:Tenant)
    RETURN p.id AS id, p.external_ref AS external_ref, p.role AS role,
           p.active AS active, t.id AS tenant_id
    `
	result, err := session.Run(query, map[string]interface{}{"externalRef": externalRef})
	if err != nil {
		logger.Error("Failed to execute principal lookup",
			zap.Error(err),
			zap.String("externalRef", externalRef),
			zap.Duration("duration", time.Since(start)))
		return model.Principal{}, campus_errors.ErrDatabaseOperation
	}

	if result.Next() {
		return mapRecordToPrincipal(result.Record())
	}

	logger.Warn("Principal not found",
		zap.String("externalRef", externalRef),
		zap.Duration("duration", time.Since(start)))
	return model.Principal{}, campus_errors.ErrPrincipalNotFound
}

func mapRecordToPrincipal(record *neo4j.Record) (model.Principal, error) {
	p := model.Principal{}

	if v, ok := record.Get("id"); ok {
		p.ID, _ = v.(string)
	}
	if v, ok := record.Get("external_ref"); ok {
		p.ExternalIdentityRef, _ = v.(string)
	}
	if v, ok := record.Get("tenant_id"); ok {
		p.TenantID, _ = v.(string)
	}
	if v, ok := record.Get("active"); ok {
		p.Active, _ = v.(bool)
	}
	// The raw role string is carried as-is; the decision engine treats an
	// unknown role as a mismatch rather than failing the lookup.
	if v, ok := record.Get("role"); ok {
		s, _ := v.(string)
		p.Role = model.Role(s)
	}

	if p.ID == "" || p.TenantID == "" {
		return model.Principal{}, fmt.Errorf("malformed principal record for %q", p.ExternalIdentityRef)
	}
	return p, nil
}
