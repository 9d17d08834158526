package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"peergrade/internal/model"
)

// memStore backs the in-memory repository fakes the service tests run
// against. A monotonic clock stamps creation times so ordering by creation
// is deterministic.
type memStore struct {
	mu   sync.Mutex
	seq  int
	tick time.Time

	mappings       map[string]*model.Mapping
	responses      map[string]*model.Response
	answers        map[string]*model.Answer
	questionnaires map[string]*model.Questionnaire
	assignments    map[string]*model.Assignment
	locks          map[string]*model.ResponseLock
}

func newMemStore() *memStore {
	return &memStore{
		tick:           time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
		mappings:       make(map[string]*model.Mapping),
		responses:      make(map[string]*model.Response),
		answers:        make(map[string]*model.Answer),
		questionnaires: make(map[string]*model.Questionnaire),
		assignments:    make(map[string]*model.Assignment),
		locks:          make(map[string]*model.ResponseLock),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s_%d", prefix, s.seq)
}

func (s *memStore) nextTime() time.Time {
	s.tick = s.tick.Add(time.Second)
	return s.tick
}

func answerKey(responseID, questionID string) string {
	return responseID + "|" + questionID
}

type fakeMappingRepo struct{ s *memStore }

func (r *fakeMappingRepo) Create(_ context.Context, m *model.Mapping) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == "" {
		m.ID = r.s.nextID("map")
	}
	r.s.mappings[m.ID] = m
	return nil
}

func (r *fakeMappingRepo) GetByID(_ context.Context, id string) (*model.Mapping, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.mappings[id], nil
}

func (r *fakeMappingRepo) GetPeers(_ context.Context, mapping *model.Mapping) ([]*model.Mapping, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var peers []*model.Mapping
	for _, m := range r.s.mappings {
		if m.AssignmentID == mapping.AssignmentID && m.RevieweeID == mapping.RevieweeID && m.Kind == mapping.Kind {
			peers = append(peers, m)
		}
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].ID < peers[j].ID })
	return peers, nil
}

func (r *fakeMappingRepo) GetByReviewer(_ context.Context, assignmentID, reviewerID string) ([]*model.Mapping, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Mapping
	for _, m := range r.s.mappings {
		if m.AssignmentID == assignmentID && m.ReviewerID == reviewerID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeResponseRepo struct{ s *memStore }

func (r *fakeResponseRepo) Create(_ context.Context, response *model.Response) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if response.ID == "" {
		response.ID = r.s.nextID("resp")
	}
	if response.CreatedAt.IsZero() {
		response.CreatedAt = r.s.nextTime()
	}
	response.UpdatedAt = response.CreatedAt
	stored := *response
	r.s.responses[response.ID] = &stored
	return response.ID, nil
}

func (r *fakeResponseRepo) GetByID(_ context.Context, id string) (*model.Response, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.responses[id]
	if !ok {
		return nil, nil
	}
	out := *stored
	return &out, nil
}

func (r *fakeResponseRepo) GetByMap(_ context.Context, mapID string) ([]*model.Response, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Response
	for _, stored := range r.s.responses {
		if stored.MapID == mapID {
			cp := *stored
			out = append(out, &cp)
		}
	}
	model.SortByCreationDesc(out)
	return out, nil
}

func (r *fakeResponseRepo) LatestForRound(_ context.Context, mapID string, round int) (*model.Response, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*model.Response
	for _, stored := range r.s.responses {
		if stored.MapID == mapID {
			cp := *stored
			all = append(all, &cp)
		}
	}
	return model.LatestForRound(all, round), nil
}

func (r *fakeResponseRepo) Update(_ context.Context, response *model.Response) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.responses[response.ID]; !ok {
		return fmt.Errorf("response %s not stored", response.ID)
	}
	response.UpdatedAt = r.s.nextTime()
	stored := *response
	r.s.responses[response.ID] = &stored
	return nil
}

func (r *fakeResponseRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.responses, id)
	return nil
}

type fakeAnswerRepo struct{ s *memStore }

func (r *fakeAnswerRepo) Upsert(_ context.Context, answer *model.Answer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := answerKey(answer.ResponseID, answer.QuestionID)
	if existing, ok := r.s.answers[key]; ok {
		existing.Value = answer.Value
		existing.Comment = answer.Comment
		answer.ID = existing.ID
		return nil
	}
	if answer.ID == "" {
		answer.ID = r.s.nextID("ans")
	}
	stored := *answer
	r.s.answers[key] = &stored
	return nil
}

func (r *fakeAnswerRepo) GetByResponse(_ context.Context, responseID string) ([]*model.Answer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Answer
	for _, stored := range r.s.answers {
		if stored.ResponseID == responseID {
			cp := *stored
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (r *fakeAnswerRepo) Get(_ context.Context, responseID, questionID string) (*model.Answer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.answers[answerKey(responseID, questionID)]
	if !ok {
		return nil, nil
	}
	out := *stored
	return &out, nil
}

func (r *fakeAnswerRepo) DeleteByResponse(_ context.Context, responseID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key, stored := range r.s.answers {
		if stored.ResponseID == responseID {
			delete(r.s.answers, key)
		}
	}
	return nil
}

type fakeQuestionnaireRepo struct{ s *memStore }

func (r *fakeQuestionnaireRepo) Create(_ context.Context, q *model.Questionnaire) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if q.ID == "" {
		q.ID = r.s.nextID("quest")
	}
	r.s.questionnaires[q.ID] = q
	return q.ID, nil
}

func (r *fakeQuestionnaireRepo) GetByID(_ context.Context, id string) (*model.Questionnaire, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.questionnaires[id], nil
}

func (r *fakeQuestionnaireRepo) GetByOwnerTeam(_ context.Context, teamID string) ([]*model.Questionnaire, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Questionnaire
	for _, q := range r.s.questionnaires {
		if q.OwnerTeamID == teamID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeQuestionnaireRepo) GetByQuestionID(_ context.Context, questionID string) (*model.Questionnaire, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for id := range r.s.questionnaires {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if r.s.questionnaires[id].QuestionByID(questionID) != nil {
			return r.s.questionnaires[id], nil
		}
	}
	return nil, nil
}

func (r *fakeQuestionnaireRepo) List(_ context.Context) ([]*model.Questionnaire, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Questionnaire
	for _, q := range r.s.questionnaires {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAssignmentRepo struct{ s *memStore }

func (r *fakeAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == "" {
		a.ID = r.s.nextID("asgt")
	}
	r.s.assignments[a.ID] = a
	return nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.assignments[id], nil
}

type fakeLockRepo struct{ s *memStore }

func (r *fakeLockRepo) Get(_ context.Context, mapID string) (*model.ResponseLock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.locks[mapID]
	if !ok {
		return nil, nil
	}
	out := *stored
	return &out, nil
}

func (r *fakeLockRepo) Put(_ context.Context, lock *model.ResponseLock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *lock
	r.s.locks[lock.MapID] = &stored
	return nil
}

func (r *fakeLockRepo) Delete(_ context.Context, mapID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.locks, mapID)
	return nil
}

// fakeBroadcaster records instructor events synchronously.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *fakeBroadcaster) BroadcastToInstructors(_ string, event string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *fakeBroadcaster) countOf(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e == event {
			n++
		}
	}
	return n
}

// fixture wires one of everything over a shared in-memory store.
type fixture struct {
	store          *memStore
	mappings       *fakeMappingRepo
	responses      *fakeResponseRepo
	answers        *fakeAnswerRepo
	questionnaires *fakeQuestionnaireRepo
	assignments    *fakeAssignmentRepo
	lockRepo       *fakeLockRepo
	locks          *LockManager
	resolver       *ResolverService
	scoring        *ScoringService
	broadcaster    *fakeBroadcaster
	svc            *ResponseService
	quiz           *QuizService
}

func newFixture() *fixture {
	s := newMemStore()
	f := &fixture{
		store:          s,
		mappings:       &fakeMappingRepo{s: s},
		responses:      &fakeResponseRepo{s: s},
		answers:        &fakeAnswerRepo{s: s},
		questionnaires: &fakeQuestionnaireRepo{s: s},
		assignments:    &fakeAssignmentRepo{s: s},
		lockRepo:       &fakeLockRepo{s: s},
		broadcaster:    &fakeBroadcaster{},
	}
	f.locks = NewLockManager(f.lockRepo, 0)
	f.resolver = NewResolverService(f.questionnaires, f.assignments, f.answers, nil)
	f.scoring = NewScoringService(f.mappings, f.responses, f.answers, f.resolver)
	notifier := NewNotifier(LogMailer{}, f.broadcaster, "http://localhost:8080")
	f.svc = NewResponseService(
		f.mappings, f.responses, f.answers, f.assignments,
		f.resolver, f.scoring, f.locks, notifier, ReviewerOnlyPolicy{},
	)
	f.quiz = NewQuizService(f.mappings, f.responses, f.answers, f.questionnaires, f.resolver, ReviewerOnlyPolicy{})
	return f
}

func intp(v int) *int { return &v }

// reviewRubric is a five-question review questionnaire scored 0..5 whose
// scorable weights sum to 5. The upload question never gets an answer record.
func reviewRubric(id string) *model.Questionnaire {
	return &model.Questionnaire{
		ID:               id,
		Name:             "Review Rubric",
		Type:             model.QuestionnaireReview,
		MinQuestionScore: 0,
		MaxQuestionScore: 5,
		Questions: []model.Question{
			{ID: "q1", Seq: 1, Type: model.QuestionCriterion, Prompt: "Requirements met?", Weight: 2, Required: true},
			{ID: "q2", Seq: 2, Type: model.QuestionCriterion, Prompt: "Readable code?", Weight: 2},
			{ID: "q3", Seq: 3, Type: model.QuestionScale, Prompt: "Test quality", Weight: 1},
			{ID: "q4", Seq: 4, Type: model.QuestionTextArea, Prompt: "Suggestions"},
			{ID: "q5", Seq: 5, Type: model.QuestionUploadFile, Prompt: "Annotated diff"},
		},
	}
}

// seedReviewWorld stores an assignment bound to reviewRubric plus one review
// mapping and returns both.
func (f *fixture) seedReviewWorld(teamReviewing bool) (*model.Assignment, *model.Mapping) {
	ctx := context.Background()
	rubric := reviewRubric("quest_review")
	f.questionnaires.Create(ctx, rubric)

	assignment := &model.Assignment{
		ID:              "asgt_1",
		Name:            "Program 2",
		InstructorEmail: "instructor@example.edu",
		TeamReviewing:   teamReviewing,
		NumRounds:       2,
		CurrentRound:    1,
		Rubrics: []model.AssignmentRubric{
			{QuestionnaireID: rubric.ID, NotificationLimit: 15},
		},
	}
	f.assignments.Create(ctx, assignment)

	mapping := &model.Mapping{
		ID:           "map_1",
		Kind:         model.KindReview,
		AssignmentID: assignment.ID,
		ReviewerID:   "student_1",
		RevieweeID:   "team_a",
		ReviewerName: "Ada",
		RevieweeName: "Team A",
		CreatedAt:    f.store.nextTime(),
	}
	f.mappings.Create(ctx, mapping)
	return assignment, mapping
}

// submitReview drives a full begin/save/submit cycle for a mapping and
// returns the save result. All four rubric questions get the same value.
func (f *fixture) submitReview(t interface{ Fatalf(string, ...interface{}) }, actorID, mapID string, round, value int) *SaveResult {
	ctx := context.Background()
	view, err := f.svc.Begin(ctx, actorID, mapID, round)
	if err != nil {
		t.Fatalf("Begin(%s): %v", mapID, err)
	}
	result, err := f.svc.Save(ctx, actorID, view.Response.ID, &SaveRequest{
		Answers: []AnswerInput{
			{QuestionID: "q1", Value: intp(value)},
			{QuestionID: "q2", Value: intp(value)},
			{QuestionID: "q3", Value: intp(value)},
			{QuestionID: "q4", Comment: "see inline notes"},
		},
		Submit: true,
	})
	if err != nil {
		t.Fatalf("Save(%s): %v", mapID, err)
	}
	return result
}
