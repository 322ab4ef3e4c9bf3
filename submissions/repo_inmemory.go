package submissions

import "sync"

// InMemoryRepo is an in-memory implementation of Repo. It preserves
// insertion order: upserting an existing ID replaces the record in place.
type InMemoryRepo struct {
	mu      sync.RWMutex
	order   []string
	records map[string]Submission
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{records: make(map[string]Submission)}
}

var _ Repo = (*InMemoryRepo)(nil)

func (r *InMemoryRepo) Upsert(records []Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range records {
		if _, ok := r.records[record.ID]; !ok {
			r.order = append(r.order, record.ID)
		}
		r.records[record.ID] = record
	}
	return nil
}

func (r *InMemoryRepo) DeleteByKey(ids ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if _, ok := r.records[id]; !ok {
			continue
		}
		delete(r.records, id)
		for i, existing := range r.order {
			if existing == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (r *InMemoryRepo) ReadAll() ([]Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Submission, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out, nil
}
