package domain_test

import (
	"testing"

	"car-rental-adjustments/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDamageStatus(t *testing.T) {
	allowed := []struct {
		from domain.DamageStatus
		op   domain.DamageOperation
		to   domain.DamageStatus
	}{
		{domain.DamageStatusReported, domain.DamageOpStartAssessment, domain.DamageStatusUnderAssessment},
		{domain.DamageStatusReported, domain.DamageOpAssess, domain.DamageStatusAssessed},
		{domain.DamageStatusUnderAssessment, domain.DamageOpAssess, domain.DamageStatusAssessed},
		{domain.DamageStatusAssessed, domain.DamageOpReopen, domain.DamageStatusUnderAssessment},
		{domain.DamageStatusAssessed, domain.DamageOpCharge, domain.DamageStatusCharged},
		{domain.DamageStatusCharged, domain.DamageOpDispute, domain.DamageStatusDisputed},
		{domain.DamageStatusDisputed, domain.DamageOpResolve, domain.DamageStatusResolved},
	}

	for _, tc := range allowed {
		next, err := domain.NextDamageStatus(tc.from, tc.op)
		require.NoError(t, err, "%s from %s", tc.op, tc.from)
		assert.Equal(t, tc.to, next)
	}
}

func TestNextDamageStatus_RejectsEverythingElse(t *testing.T) {
	statuses := []domain.DamageStatus{
		domain.DamageStatusReported,
		domain.DamageStatusUnderAssessment,
		domain.DamageStatusAssessed,
		domain.DamageStatusCharged,
		domain.DamageStatusDisputed,
		domain.DamageStatusResolved,
	}
	ops := []domain.DamageOperation{
		domain.DamageOpStartAssessment,
		domain.DamageOpAssess,
		domain.DamageOpReopen,
		domain.DamageOpCharge,
		domain.DamageOpDispute,
		domain.DamageOpResolve,
	}
	allowed := map[domain.DamageStatus]map[domain.DamageOperation]bool{
		domain.DamageStatusReported:        {domain.DamageOpStartAssessment: true, domain.DamageOpAssess: true},
		domain.DamageStatusUnderAssessment: {domain.DamageOpAssess: true},
		domain.DamageStatusAssessed:        {domain.DamageOpReopen: true, domain.DamageOpCharge: true},
		domain.DamageStatusCharged:         {domain.DamageOpDispute: true},
		domain.DamageStatusDisputed:        {domain.DamageOpResolve: true},
		domain.DamageStatusResolved:        {},
	}

	for _, status := range statuses {
		for _, op := range ops {
			if allowed[status][op] {
				continue
			}
			_, err := domain.NextDamageStatus(status, op)
			require.Error(t, err, "%s from %s should be refused", op, status)
			assert.True(t, domain.IsKind(err, domain.ErrKindStateConflict))
			assert.Contains(t, err.Error(), string(status))
		}
	}
}

func TestNextDamageStatus_UnknownStatus(t *testing.T) {
	_, err := domain.NextDamageStatus("BOGUS", domain.DamageOpAssess)
	assert.True(t, domain.IsKind(err, domain.ErrKindStateConflict))
}
