package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// memComplaintRepo is an in-memory ComplaintRepository honoring the same
// optimistic-update contract as the Postgres implementation.
type memComplaintRepo struct {
	mu    sync.Mutex
	seq   int64
	items map[int64]*domain.Complaint
}

func newMemComplaintRepo() *memComplaintRepo {
	return &memComplaintRepo{items: make(map[int64]*domain.Complaint)}
}

func copyComplaint(c *domain.Complaint) *domain.Complaint {
	clone := *c
	if c.Attachments != nil {
		clone.Attachments = append([]string(nil), c.Attachments...)
	}
	if c.AgencyID != nil {
		id := *c.AgencyID
		clone.AgencyID = &id
	}
	if c.Response != nil {
		resp := *c.Response
		clone.Response = &resp
	}
	if c.ResolvedAt != nil {
		at := *c.ResolvedAt
		clone.ResolvedAt = &at
	}
	return &clone
}

func (r *memComplaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	complaint.ID = r.seq
	now := time.Now()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now
	r.items[complaint.ID] = copyComplaint(complaint)
	return nil
}

func (r *memComplaintRepo) GetByID(_ context.Context, id int64) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyComplaint(stored), nil
}

func (r *memComplaintRepo) Update(_ context.Context, complaint *domain.Complaint, expectedUpdatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[complaint.ID]
	if !ok || !stored.UpdatedAt.Equal(expectedUpdatedAt) {
		return pgx.ErrNoRows
	}
	stored.Category = complaint.Category
	stored.Status = complaint.Status
	stored.Response = complaint.Response
	stored.AgencyID = complaint.AgencyID
	stored.ResolvedAt = complaint.ResolvedAt
	newUpdated := time.Now()
	if !newUpdated.After(expectedUpdatedAt) {
		newUpdated = expectedUpdatedAt.Add(time.Millisecond)
	}
	stored.UpdatedAt = newUpdated
	r.items[complaint.ID] = copyComplaint(stored)
	complaint.UpdatedAt = newUpdated
	return nil
}

func (r *memComplaintRepo) ListWithFilter(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Complaint
	for _, stored := range r.items {
		if filter.OwnerID != nil && stored.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.AgencyID != nil && (stored.AgencyID == nil || *stored.AgencyID != *filter.AgencyID) {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if stored.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		result = append(result, *copyComplaint(stored))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memComplaintRepo) CountByAgency(_ context.Context, agencyID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, stored := range r.items {
		if stored.AgencyID != nil && *stored.AgencyID == agencyID {
			count++
		}
	}
	return count, nil
}

// memAgencyRepo is an in-memory AgencyRepository.
type memAgencyRepo struct {
	mu    sync.Mutex
	seq   int64
	items map[int64]*domain.Agency
}

func newMemAgencyRepo() *memAgencyRepo {
	return &memAgencyRepo{items: make(map[int64]*domain.Agency)}
}

func copyAgency(a *domain.Agency) *domain.Agency {
	clone := *a
	clone.Categories = append([]string(nil), a.Categories...)
	return &clone
}

func (r *memAgencyRepo) Create(_ context.Context, agency *domain.Agency) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	agency.ID = r.seq
	now := time.Now()
	agency.CreatedAt = now
	agency.UpdatedAt = now
	r.items[agency.ID] = copyAgency(agency)
	return nil
}

func (r *memAgencyRepo) Update(_ context.Context, agency *domain.Agency) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[agency.ID]; !ok {
		return pgx.ErrNoRows
	}
	agency.UpdatedAt = time.Now()
	r.items[agency.ID] = copyAgency(agency)
	return nil
}

func (r *memAgencyRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func (r *memAgencyRepo) GetByID(_ context.Context, id int64) (*domain.Agency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyAgency(stored), nil
}

func (r *memAgencyRepo) GetByContactEmail(_ context.Context, email string) (*domain.Agency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.items {
		if stored.ContactEmail == email {
			return copyAgency(stored), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memAgencyRepo) List(_ context.Context) ([]domain.Agency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Agency, 0, len(r.items))
	for _, stored := range r.items {
		result = append(result, *copyAgency(stored))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// memAnalyticsRepo computes the aggregation primitives over a fixed slice.
type memAnalyticsRepo struct {
	complaints []domain.Complaint
}

func (r *memAnalyticsRepo) ComplaintCount(context.Context) (int64, error) {
	return int64(len(r.complaints)), nil
}

func (r *memAnalyticsRepo) CountByStatus(_ context.Context, status domain.ComplaintStatus) (int64, error) {
	var count int64
	for _, c := range r.complaints {
		if c.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *memAnalyticsRepo) StatusCounts(context.Context) ([]repository.StatusCount, error) {
	buckets := map[domain.ComplaintStatus]int64{}
	for _, c := range r.complaints {
		buckets[c.Status]++
	}
	var result []repository.StatusCount
	for status, count := range buckets {
		result = append(result, repository.StatusCount{Status: status, Count: count})
	}
	return result, nil
}

func (r *memAnalyticsRepo) CategoryCounts(context.Context) ([]repository.CategoryCount, error) {
	buckets := map[string]int64{}
	for _, c := range r.complaints {
		buckets[c.Category]++
	}
	var result []repository.CategoryCount
	for category, count := range buckets {
		result = append(result, repository.CategoryCount{Category: category, Count: count})
	}
	return result, nil
}

func (r *memAnalyticsRepo) ResolutionSpans(context.Context) ([]repository.ResolutionSpan, error) {
	var result []repository.ResolutionSpan
	for _, c := range r.complaints {
		if c.Status == domain.ComplaintStatusResolved && c.ResolvedAt != nil {
			result = append(result, repository.ResolutionSpan{CreatedAt: c.CreatedAt, ResolvedAt: *c.ResolvedAt})
		}
	}
	return result, nil
}

func (r *memAnalyticsRepo) CreationTimesSince(_ context.Context, since time.Time) ([]time.Time, error) {
	var result []time.Time
	for _, c := range r.complaints {
		if !c.CreatedAt.Before(since) {
			result = append(result, c.CreatedAt)
		}
	}
	return result, nil
}

func (r *memAnalyticsRepo) ActiveAgencyCount(context.Context) (int64, error) {
	seen := map[int64]struct{}{}
	for _, c := range r.complaints {
		if c.AgencyID != nil {
			seen[*c.AgencyID] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func (r *memAnalyticsRepo) AgencyCounts(context.Context) ([]repository.AgencyCount, error) {
	buckets := map[int64]*repository.AgencyCount{}
	for _, c := range r.complaints {
		if c.AgencyID == nil {
			continue
		}
		entry, ok := buckets[*c.AgencyID]
		if !ok {
			entry = &repository.AgencyCount{AgencyID: *c.AgencyID}
			buckets[*c.AgencyID] = entry
		}
		entry.Total++
		if c.Status == domain.ComplaintStatusResolved {
			entry.Resolved++
		}
	}
	var result []repository.AgencyCount
	for _, entry := range buckets {
		result = append(result, *entry)
	}
	return result, nil
}

// staleComplaintRepo serves one stale snapshot on the first GetByID, then
// delegates to the backing repository. It simulates another writer slipping
// in between a service's read and its optimistic update.
type staleComplaintRepo struct {
	*memComplaintRepo
	stale  *domain.Complaint
	served bool
}

func (r *staleComplaintRepo) GetByID(ctx context.Context, id int64) (*domain.Complaint, error) {
	if !r.served && r.stale != nil && r.stale.ID == id {
		r.served = true
		return copyComplaint(r.stale), nil
	}
	return r.memComplaintRepo.GetByID(ctx, id)
}

// memUserRepo is an in-memory UserRepository.
type memUserRepo struct {
	mu    sync.Mutex
	seq   int64
	items map[int64]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{items: make(map[int64]*domain.User)}
}

func copyUser(u *domain.User) *domain.User {
	clone := *u
	if u.AgencyID != nil {
		id := *u.AgencyID
		clone.AgencyID = &id
	}
	return &clone
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = r.seq
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.items[user.ID] = copyUser(user)
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	r.items[user.ID] = copyUser(user)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyUser(stored), nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.items {
		if stored.Email == email {
			return copyUser(stored), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.User, 0, len(r.items))
	for _, stored := range r.items {
		result = append(result, *copyUser(stored))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// recordingDispatcher delivers synchronously and keeps every event.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, e := range d.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

// recordingHub captures broadcast payloads.
type recordingHub struct {
	mu       sync.Mutex
	messages [][]byte
}

func (h *recordingHub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, append([]byte(nil), message...))
}
