package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/praxislabs/praxis/internal/clock"
	quotadomain "github.com/praxislabs/praxis/internal/quota/domain"
	"github.com/praxislabs/praxis/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Every new tenant starts on a STARTER trial of this length.
const trialPeriodDays = 14

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tenant.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Create provisions a tenant with trial defaults, grants the owner an OWNER
// membership, and makes the new tenant the owner's primary tenant if they do
// not have one yet. Everything runs in one transaction so a half-provisioned
// tenant never becomes visible.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now(ctx)
	trialEndsAt := now.AddDate(0, 0, trialPeriodDays)
	limits := quotadomain.LimitsFor(domain.TierStarter)

	tenant := &domain.Tenant{
		ID:                 s.genID.Generate(),
		OwnerUserID:        req.OwnerUserID,
		Name:               name,
		Slug:               slug.Make(name),
		SubscriptionTier:   domain.TierStarter,
		SubscriptionStatus: domain.SubscriptionStatusTrial,
		TrialEndsAt:        &trialEndsAt,
		MaxPatients:        limits.MaxPatients,
		StorageGB:          limits.StorageGB,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, tenant); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			// Slug collision. Suffix with the id, which is unique.
			tenant.Slug = fmt.Sprintf("%s-%s", tenant.Slug, tenant.ID.String())
			if err := s.repo.Insert(ctx, tx, tenant); err != nil {
				return err
			}
		}

		membership := &domain.Membership{
			ID:        s.genID.Generate(),
			UserID:    req.OwnerUserID,
			TenantID:  tenant.ID,
			Role:      domain.RoleOwner,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.InsertMembership(ctx, tx, membership); err != nil {
			return err
		}

		return tx.WithContext(ctx).Exec(
			"UPDATE users SET primary_tenant_id = ?, updated_at = ? WHERE id = ? AND primary_tenant_id = 0",
			tenant.ID, now, req.OwnerUserID,
		).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("owner_user_id", req.OwnerUserID.String()),
		zap.String("slug", tenant.Slug))
	return tenant, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrTenantNotFound
	}
	return tenant, nil
}

// InviteMember grants a user access to the tenant. A deactivated membership
// for the same pair is reactivated with the requested role instead of
// inserting a duplicate.
func (s *Service) InviteMember(ctx context.Context, req domain.InviteMemberRequest) (*domain.Membership, error) {
	if _, err := domain.ParseRole(string(req.Role)); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindMembership(ctx, s.db, req.UserID, req.TenantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.IsActive {
			return nil, domain.ErrMembershipExists
		}
		now := s.clock.Now(ctx)
		err := s.db.WithContext(ctx).Exec(
			"UPDATE memberships SET is_active = TRUE, role = ?, updated_at = ? WHERE id = ?",
			req.Role, now, existing.ID,
		).Error
		if err != nil {
			return nil, err
		}
		existing.IsActive = true
		existing.Role = req.Role
		existing.UpdatedAt = now
		return existing, nil
	}

	now := s.clock.Now(ctx)
	membership := &domain.Membership{
		ID:        s.genID.Generate(),
		UserID:    req.UserID,
		TenantID:  req.TenantID,
		Role:      req.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertMembership(ctx, s.db, membership); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrMembershipExists
		}
		return nil, err
	}

	s.log.Info("member invited",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("user_id", req.UserID.String()),
		zap.String("role", string(req.Role)))
	return membership, nil
}

func (s *Service) DeactivateMember(ctx context.Context, tenantID, userID snowflake.ID) error {
	if err := s.repo.DeactivateMembership(ctx, s.db, userID, tenantID); err != nil {
		return err
	}
	s.log.Info("member deactivated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", userID.String()))
	return nil
}

func (s *Service) ListMembers(ctx context.Context, tenantID snowflake.ID) ([]domain.Membership, error) {
	return s.repo.ListMembershipsByTenant(ctx, s.db, tenantID)
}
