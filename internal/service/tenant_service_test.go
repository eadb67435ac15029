package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shiptrack-next/internal/constants"
)

func TestResolveActiveByCode(t *testing.T) {
	env := setupServiceTest(t, "tenant_resolve")
	svc := NewTenantService(env.tenantRepo)
	tenant := env.createTenant(t, "acme")
	ctx := context.Background()

	state, err := svc.ResolveActiveByCode(ctx, "  ACME ")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if state.ID != tenant.ID || state.Code != "acme" {
		t.Fatalf("unexpected state: %+v", state)
	}

	if _, err := svc.ResolveActiveByCode(ctx, "nobody"); !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected tenant not found, got %v", err)
	}
	if _, err := svc.ResolveActiveByCode(ctx, "   "); !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected tenant not found for blank code, got %v", err)
	}
}

func TestResolveActiveByCodeRejectsDisabled(t *testing.T) {
	env := setupServiceTest(t, "tenant_disabled")
	svc := NewTenantService(env.tenantRepo)
	ctx := context.Background()
	tenant := env.createTenant(t, "dormant")

	if _, err := svc.SetStatus(ctx, tenant.ID, constants.TenantStatusDisabled); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if _, err := svc.ResolveActiveByCode(ctx, "dormant"); !errors.Is(err, ErrTenantDisabled) {
		t.Fatalf("expected tenant disabled, got %v", err)
	}

	if _, err := svc.SetStatus(ctx, tenant.ID, constants.TenantStatusActive); err != nil {
		t.Fatalf("re-enable failed: %v", err)
	}
	if _, err := svc.ResolveActiveByCode(ctx, "dormant"); err != nil {
		t.Fatalf("expected re-enabled tenant to resolve, got %v", err)
	}
}
