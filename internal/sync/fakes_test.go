package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"applysync/internal/domain"
)

type fakeSource struct {
	mu stdsync.Mutex

	summaries   []domain.SourceApplication
	details     map[string]domain.SourceApplication
	attachments map[string]string

	listErr     error
	detailErr   error
	attachErr   error
	since       []string
	detailCalls int
}

func (f *fakeSource) ListApplications(_ context.Context, since string) ([]domain.SourceApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = append(f.since, since)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.SourceApplication(nil), f.summaries...), nil
}

func (f *fakeSource) FetchApplicationDetail(_ context.Context, id string) (domain.SourceApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if f.detailErr != nil {
		return domain.SourceApplication{}, f.detailErr
	}
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	for _, s := range f.summaries {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.SourceApplication{}, fmt.Errorf("no application %s", id)
}

func (f *fakeSource) FetchAttachmentEncoded(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attachErr != nil {
		return "", f.attachErr
	}
	enc, ok := f.attachments[url]
	if !ok {
		return "", fmt.Errorf("no attachment %s", url)
	}
	return enc, nil
}

type fakeDest struct {
	mu stdsync.Mutex

	slots     []domain.Slot
	refs      []domain.CrossReference
	details   map[string]domain.ApplicantDetail
	detailErr map[string]error
	refsErr   error

	createErr func(domain.ApplicantPayload) error
	noteErr   func(applicantID, contents string) error

	created     []domain.ApplicantPayload
	notes       []domain.NotePayload
	detailCalls int
	nextID      int
}

func (f *fakeDest) ListOpenSlots(context.Context) ([]domain.Slot, error) {
	return f.slots, nil
}

func (f *fakeDest) ListCrossReferences(context.Context) ([]domain.CrossReference, error) {
	if f.refsErr != nil {
		return nil, f.refsErr
	}
	return f.refs, nil
}

func (f *fakeDest) FetchApplicantDetail(_ context.Context, id string) (domain.ApplicantDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if err := f.detailErr[id]; err != nil {
		return domain.ApplicantDetail{}, err
	}
	d, ok := f.details[id]
	if !ok {
		return domain.ApplicantDetail{ID: id}, nil
	}
	return d, nil
}

func (f *fakeDest) CreateApplicant(_ context.Context, p domain.ApplicantPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		if err := f.createErr(p); err != nil {
			return "", err
		}
	}
	f.nextID++
	f.created = append(f.created, p)
	return fmt.Sprintf("prospect_%d", f.nextID), nil
}

func (f *fakeDest) CreateNote(_ context.Context, applicantID, contents string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.noteErr != nil {
		if err := f.noteErr(applicantID, contents); err != nil {
			return err
		}
	}
	f.notes = append(f.notes, domain.NotePayload{ApplicantID: applicantID, Contents: contents})
	return nil
}

// memKV stores JSON like the sqlite store does, so values round-trip the
// same way.
type memKV struct {
	mu   stdsync.Mutex
	data map[string][]byte
	sets map[string]int
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, sets: map[string]int{}}
}

func (m *memKV) Get(_ context.Context, key string, v any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

func (m *memKV) Set(_ context.Context, key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.sets[key]++
	return nil
}

func (m *memKV) put(key string, v any) {
	if err := m.Set(context.Background(), key, v); err != nil {
		panic(err)
	}
	m.sets[key] = 0
}

func resolvable(msg string) error {
	return &domain.ResolvableError{Message: msg}
}

var errBoom = errors.New("boom")

func noSleep(context.Context, time.Duration) error { return nil }
