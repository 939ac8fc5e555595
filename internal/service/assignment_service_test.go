package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

func seedRoster(t *testing.T, repo *memAgencyRepo) {
	t.Helper()
	ctx := context.Background()
	for _, agency := range []domain.Agency{
		{Name: "Sanitation Department", ContactEmail: "sanitation@city.gov", Categories: []string{"sanitation", "waste"}},
		{Name: "Road Maintenance", ContactEmail: "roads@city.gov", Categories: []string{"roads", "potholes"}},
		{Name: "Public Utilities", ContactEmail: "utilities@city.gov", Categories: []string{"water", "electricity"}},
	} {
		toCreate := agency
		require.NoError(t, repo.Create(ctx, &toCreate))
	}
}

func newAssignmentFixture(t *testing.T) (*AssignmentService, *memComplaintRepo, *memAgencyRepo, *recordingDispatcher) {
	t.Helper()
	complaints := newMemComplaintRepo()
	agencies := newMemAgencyRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewAssignmentService(AssignmentDependencies{
		ComplaintRepo: complaints,
		AgencyRepo:    agencies,
		Dispatcher:    dispatcher,
	})
	return svc, complaints, agencies, dispatcher
}

func storedComplaint(t *testing.T, repo *memComplaintRepo, category string, status domain.ComplaintStatus) *domain.Complaint {
	t.Helper()
	complaint := &domain.Complaint{
		Title:       "test",
		Description: "test",
		Category:    category,
		Status:      status,
		OwnerID:     1,
	}
	require.NoError(t, repo.Create(context.Background(), complaint))
	return complaint
}

func TestAssignMatchesAgencyByCategory(t *testing.T) {
	svc, complaints, agencies, dispatcher := newAssignmentFixture(t)
	seedRoster(t, agencies)
	complaint := storedComplaint(t, complaints, "roads", domain.ComplaintStatusPending)

	result, err := svc.Assign(context.Background(), complaint.ID)
	require.NoError(t, err)

	require.NotNil(t, result.Agency)
	assert.Equal(t, "Road Maintenance", result.Agency.Name)
	assert.Equal(t, domain.ComplaintStatusAssigned, result.Status)
	require.NotNil(t, result.Complaint.AgencyID)
	assert.Equal(t, result.Agency.ID, *result.Complaint.AgencyID)

	stored, err := complaints.GetByID(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusAssigned, stored.Status)

	published := dispatcher.byType(events.EventComplaintAssigned)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.ComplaintAssignedPayload)
	require.True(t, ok)
	assert.Equal(t, "Road Maintenance", payload.AgencyName)
}

func TestAssignNoMatchLandsUnassigned(t *testing.T) {
	svc, complaints, agencies, dispatcher := newAssignmentFixture(t)
	seedRoster(t, agencies)
	complaint := storedComplaint(t, complaints, "noise", domain.ComplaintStatusPending)

	result, err := svc.Assign(context.Background(), complaint.ID)
	require.NoError(t, err)

	assert.Nil(t, result.Agency)
	assert.Equal(t, domain.ComplaintStatusUnassigned, result.Status)
	assert.Nil(t, result.Complaint.AgencyID)
	assert.Empty(t, dispatcher.byType(events.EventComplaintAssigned))
}

func TestAssignEmptyRosterLandsUnassigned(t *testing.T) {
	svc, complaints, _, _ := newAssignmentFixture(t)
	complaint := storedComplaint(t, complaints, "roads", domain.ComplaintStatusPending)

	result, err := svc.Assign(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusUnassigned, result.Status)
}

func TestAssignIsIdempotent(t *testing.T) {
	svc, complaints, agencies, _ := newAssignmentFixture(t)
	seedRoster(t, agencies)
	complaint := storedComplaint(t, complaints, "water", domain.ComplaintStatusPending)

	first, err := svc.Assign(context.Background(), complaint.ID)
	require.NoError(t, err)
	second, err := svc.Assign(context.Background(), complaint.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	require.NotNil(t, second.Complaint.AgencyID)
	assert.Equal(t, *first.Complaint.AgencyID, *second.Complaint.AgencyID)
}

func TestAssignReevaluatesAgainstCurrentRoster(t *testing.T) {
	svc, complaints, agencies, _ := newAssignmentFixture(t)
	seedRoster(t, agencies)
	complaint := storedComplaint(t, complaints, "streetlights", domain.ComplaintStatusPending)

	result, err := svc.Assign(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusUnassigned, result.Status)

	lighting := &domain.Agency{Name: "Street Lighting", ContactEmail: "lighting@city.gov", Categories: []string{"streetlights"}}
	require.NoError(t, agencies.Create(context.Background(), lighting))

	result, err = svc.Assign(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusAssigned, result.Status)
	require.NotNil(t, result.Complaint.AgencyID)
	assert.Equal(t, lighting.ID, *result.Complaint.AgencyID)
}

func TestAssignTieBreaksOnLowestAgencyID(t *testing.T) {
	svc, complaints, agencies, _ := newAssignmentFixture(t)
	ctx := context.Background()
	first := &domain.Agency{Name: "First", ContactEmail: "first@city.gov", Categories: []string{"parks"}}
	second := &domain.Agency{Name: "Second", ContactEmail: "second@city.gov", Categories: []string{"parks"}}
	require.NoError(t, agencies.Create(ctx, first))
	require.NoError(t, agencies.Create(ctx, second))

	complaint := storedComplaint(t, complaints, "parks", domain.ComplaintStatusPending)
	result, err := svc.Assign(ctx, complaint.ID)
	require.NoError(t, err)
	require.NotNil(t, result.Agency)
	assert.Equal(t, first.ID, result.Agency.ID)
}

func TestAssignConcurrentWriteConflicts(t *testing.T) {
	_, complaints, agencies, dispatcher := newAssignmentFixture(t)
	seedRoster(t, agencies)
	ctx := context.Background()
	complaint := storedComplaint(t, complaints, "roads", domain.ComplaintStatusPending)

	snapshot, err := complaints.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	bumped := copyComplaint(snapshot)
	bumped.Status = domain.ComplaintStatusUnassigned
	require.NoError(t, complaints.Update(ctx, bumped, snapshot.UpdatedAt))

	stale := &staleComplaintRepo{memComplaintRepo: complaints, stale: snapshot}
	svc := NewAssignmentService(AssignmentDependencies{
		ComplaintRepo: stale,
		AgencyRepo:    agencies,
		Dispatcher:    dispatcher,
	})

	_, err = svc.Assign(ctx, complaint.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestAssignUnknownComplaint(t *testing.T) {
	svc, _, agencies, _ := newAssignmentFixture(t)
	seedRoster(t, agencies)

	_, err := svc.Assign(context.Background(), 9999)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
