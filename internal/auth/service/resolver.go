package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/praxislabs/praxis/internal/auth/domain"
	"github.com/praxislabs/praxis/internal/clock"
	tenantdomain "github.com/praxislabs/praxis/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ResolverParams struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	TenantRepo tenantdomain.Repository
}

// Resolver turns a bearer token into a Principal: user identity, role,
// primary tenant, and the user's active memberships.
type Resolver struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	tenantRepo tenantdomain.Repository
}

func NewResolver(p ResolverParams) *Resolver {
	return &Resolver{
		db:         p.DB,
		log:        p.Log.Named("auth.resolver"),
		clock:      p.Clock,
		tenantRepo: p.TenantRepo,
	}
}

func (r *Resolver) Resolve(ctx context.Context, token string) (*domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	hash := domain.HashToken(token)
	now := r.clock.Now(ctx)

	var record struct {
		UserID          snowflake.ID      `gorm:"column:user_id"`
		TokenHash       string            `gorm:"column:token_hash"`
		ExpiresAt       time.Time         `gorm:"column:expires_at"`
		Role            tenantdomain.Role `gorm:"column:role"`
		PrimaryTenantID snowflake.ID      `gorm:"column:primary_tenant_id"`
	}

	if err := r.db.WithContext(ctx).Raw(
		`SELECT s.user_id, s.token_hash, s.expires_at, u.role, u.primary_tenant_id
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.token_hash = ? AND s.expires_at > ?
		 LIMIT 1`,
		hash,
		now,
	).Scan(&record).Error; err != nil {
		return nil, err
	}

	if record.UserID == 0 || subtle.ConstantTimeCompare([]byte(record.TokenHash), []byte(hash)) != 1 {
		return nil, domain.ErrUnauthenticated
	}

	memberships, err := r.tenantRepo.ListActiveMembershipsByUser(ctx, r.db, record.UserID)
	if err != nil {
		return nil, err
	}

	return &domain.Principal{
		UserID:          record.UserID,
		Role:            record.Role,
		PrimaryTenantID: record.PrimaryTenantID,
		Memberships:     memberships,
	}, nil
}
