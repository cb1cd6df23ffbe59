package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/trotyl/uestc-sdk-go/internal/models"
	appErrors "github.com/trotyl/uestc-sdk-go/pkg/errors"
)

type fakeFetcher struct {
	mu          sync.Mutex
	courses     []models.Course
	people      []models.Person
	err         error
	courseCalls int
	peopleCalls int
	lastOption  models.SearchOption
}

func (f *fakeFetcher) SearchForCourses(ctx context.Context, opt models.SearchOption) ([]models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.courseCalls++
	f.lastOption = opt
	if f.err != nil {
		return nil, f.err
	}
	return models.FilterRecords(f.courses, opt), nil
}

func (f *fakeFetcher) SearchForPeople(ctx context.Context, opt models.SearchOption) ([]models.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.peopleCalls++
	f.lastOption = opt
	if f.err != nil {
		return nil, f.err
	}
	return models.FilterRecords(f.people, opt), nil
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.courseCalls + f.peopleCalls
}

type fakeIdentity struct {
	user *models.User
}

func (f *fakeIdentity) Current() *models.User { return f.user }

type stubCacheRepo struct {
	store   map[string][]byte
	sets    int
	deletes int
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.sets++
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) Delete(_ context.Context, key string) error {
	s.deletes++
	delete(s.store, key)
	return nil
}

type fakeAuthenticator struct {
	profile *models.PortalProfile
	err     error
	calls   int
}

func (f *fakeAuthenticator) Login(_ context.Context, studentID, _ string) (*models.PortalProfile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.profile != nil {
		return f.profile, nil
	}
	return &models.PortalProfile{StudentID: studentID}, nil
}

func confirmedUser() *models.User {
	return &models.User{StudentID: "2012019050020", Grade: 2012, Confirmed: true}
}

func portalCourses() []models.Course {
	return []models.Course{
		{ID: "c-1", Code: "E0801", Name: "Linear Algebra", Teacher: "Zhang Wei", SemesterID: 13, DayOfWeek: 1},
		{ID: "c-2", Code: "E0802", Name: "Discrete Mathematics", Teacher: "Li Na", SemesterID: 13, DayOfWeek: 3},
		{ID: "c-3", Code: "E1001", Name: "Computer Algebra Systems", Teacher: "Zhang Min", SemesterID: 14, DayOfWeek: 5},
	}
}

func portalPeople() []models.Person {
	return []models.Person{
		{ID: "t-1", Name: "Zhang Wei", Kind: models.PersonTeacher, Department: "Mathematics"},
		{ID: "s-1", Name: "Chen Jie", Kind: models.PersonStudent, Department: "Computer Science"},
	}
}
