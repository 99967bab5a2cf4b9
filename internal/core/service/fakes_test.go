package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/auth"
	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory document store shared by the stub repositories
// ---------------------------------------------------------------------------

// world holds every collection. The metadata store writes to the same maps
// the repositories read, so a test can observe both sides of a relationship.
type world struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*domain.User
	courses  map[primitive.ObjectID]*domain.Course
	schools  map[primitive.ObjectID]*domain.School
	chats    map[primitive.ObjectID]*domain.Chat
	messages map[primitive.ObjectID]*domain.Message

	// fail makes metadata writes to the named target return the error.
	fail map[string]error
	// metadataCalls counts metadata writes that reached the store.
	metadataCalls int
}

func newWorld() *world {
	return &world{
		users:    make(map[primitive.ObjectID]*domain.User),
		courses:  make(map[primitive.ObjectID]*domain.Course),
		schools:  make(map[primitive.ObjectID]*domain.School),
		chats:    make(map[primitive.ObjectID]*domain.Chat),
		messages: make(map[primitive.ObjectID]*domain.Message),
		fail:     make(map[string]error),
	}
}

func (w *world) addSchool(name string) *domain.School {
	s := &domain.School{
		ID:   primitive.NewObjectID(),
		Name: name,
		Location: domain.SchoolLocation{
			Zip: "10001", City: "New York", State: "NY",
			GeoJSON: domain.NewPoint(-73.99, 40.75),
		},
		Meta: domain.SchoolMeta{
			Students:        []primitive.ObjectID{},
			SchoolOfficials: []primitive.ObjectID{},
			Courses:         []primitive.ObjectID{},
		},
	}
	w.schools[s.ID] = s
	return s
}

func (w *world) addUser(role domain.Role, school primitive.ObjectID) *domain.User {
	p, err := domain.NewProfile(role)
	if err != nil {
		panic(err)
	}
	domain.MatchProfile(p,
		func(sp *domain.StudentProfile) struct{} { sp.Meta.School = school; return struct{}{} },
		func(*domain.InstructorProfile) struct{} { return struct{}{} },
		func(op *domain.SchoolOfficialProfile) struct{} { op.Meta.School = school; return struct{}{} },
	)
	u := &domain.User{ID: primitive.NewObjectID(), Role: role, Email: primitive.NewObjectID().Hex() + "@example.com", Profile: p}
	w.users[u.ID] = u
	return u
}

func (w *world) addCourse(school primitive.ObjectID, instructors ...primitive.ObjectID) *domain.Course {
	c := &domain.Course{
		ID:                 primitive.NewObjectID(),
		Title:              "Robotics",
		VerificationStatus: domain.VerificationPending,
		Meta: domain.CourseMeta{
			Instructors: instructors,
			Students:    []primitive.ObjectID{},
			School:      school,
		},
	}
	w.courses[c.ID] = c
	return c
}

// ---------------------------------------------------------------------------
// ports.MetadataStore
// ---------------------------------------------------------------------------

type memMetadataStore struct{ w *world }

func (s memMetadataStore) AddToSet(_ context.Context, t domain.MetadataTarget, docIDs, values []primitive.ObjectID) error {
	return s.w.write(t, docIDs, values, false)
}

func (s memMetadataStore) PullAll(_ context.Context, t domain.MetadataTarget, docIDs, values []primitive.ObjectID) error {
	return s.w.write(t, docIDs, values, true)
}

func (w *world) write(t domain.MetadataTarget, docIDs, values []primitive.ObjectID, remove bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.metadataCalls++
	if err := w.fail[t.Name]; err != nil {
		return err
	}
	for _, id := range docIDs {
		arr := w.array(t, id)
		if arr == nil {
			continue
		}
		if remove {
			*arr = pullAll(*arr, values)
		} else {
			*arr = addToSet(*arr, values)
		}
	}
	return nil
}

// array locates target.Field on document id, mirroring the role filter the
// real store applies to user targets.
func (w *world) array(t domain.MetadataTarget, id primitive.ObjectID) *[]primitive.ObjectID {
	switch t.Collection {
	case domain.CollectionUsers:
		u, ok := w.users[id]
		if !ok || !t.AppliesTo(u.Role) {
			return nil
		}
		switch t.Field {
		case "meta.courses":
			return domain.MatchProfile(u.Profile,
				func(p *domain.StudentProfile) *[]primitive.ObjectID { return &p.Meta.Courses },
				func(p *domain.InstructorProfile) *[]primitive.ObjectID { return &p.Meta.Courses },
				func(*domain.SchoolOfficialProfile) *[]primitive.ObjectID { return nil },
			)
		case "meta.chats":
			return domain.MatchProfile(u.Profile,
				func(p *domain.StudentProfile) *[]primitive.ObjectID { return &p.Meta.Chats },
				func(p *domain.InstructorProfile) *[]primitive.ObjectID { return &p.Meta.Chats },
				func(p *domain.SchoolOfficialProfile) *[]primitive.ObjectID { return &p.Meta.Chats },
			)
		}
	case domain.CollectionCourses:
		c, ok := w.courses[id]
		if !ok {
			return nil
		}
		switch t.Field {
		case "meta.students":
			return &c.Meta.Students
		case "meta.instructors":
			return &c.Meta.Instructors
		}
	case domain.CollectionSchools:
		s, ok := w.schools[id]
		if !ok {
			return nil
		}
		switch t.Field {
		case "meta.students":
			return &s.Meta.Students
		case "meta.schoolOfficials":
			return &s.Meta.SchoolOfficials
		case "meta.courses":
			return &s.Meta.Courses
		}
	case domain.CollectionChats:
		c, ok := w.chats[id]
		if ok && t.Field == "meta.users" {
			return &c.Meta.Users
		}
	}
	return nil
}

func addToSet(arr, values []primitive.ObjectID) []primitive.ObjectID {
	for _, v := range values {
		if !contains(arr, v) {
			arr = append(arr, v)
		}
	}
	return arr
}

func pullAll(arr, values []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(arr))
	for _, v := range arr {
		if !contains(values, v) {
			out = append(out, v)
		}
	}
	return out
}

func contains(arr []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range arr {
		if v == id {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

type memUserRepo struct {
	w        *world
	lastPage ports.Page
	lastNear *ports.Near
	created  int
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	for _, existing := range r.w.users {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	u.ID = primitive.NewObjectID()
	r.w.users[u.ID] = u
	r.created++
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	u, ok := r.w.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	for _, u := range r.w.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Find(_ context.Context, f ports.UserFilter, page ports.Page) ([]*domain.User, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	r.lastPage = page
	out := make([]*domain.User, 0)
	for _, u := range r.w.users {
		if len(f.IDs) > 0 && !contains(f.IDs, u.ID) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, u)
	}
	if page.Limit > 0 && len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, nil
}

func (r *memUserRepo) FindNear(ctx context.Context, near ports.Near, f ports.UserFilter, page ports.Page) ([]*domain.User, error) {
	r.lastNear = &near
	return r.Find(ctx, f, page)
}

func (r *memUserRepo) Update(_ context.Context, id primitive.ObjectID, u ports.UserUpdate) (*domain.User, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	user, ok := r.w.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if u.FirstName != nil {
		user.FirstName = *u.FirstName
	}
	return user, nil
}

func (r *memUserRepo) UpdateLocation(_ context.Context, id primitive.ObjectID, loc domain.Location) (*domain.User, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	user, ok := r.w.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Location = loc
	return user, nil
}

func (r *memUserRepo) Delete(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	u, ok := r.w.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	delete(r.w.users, id)
	return u, nil
}

type memCourseRepo struct{ w *world }

func (r memCourseRepo) Create(_ context.Context, c *domain.Course) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	c.ID = primitive.NewObjectID()
	r.w.courses[c.ID] = c
	return nil
}

func (r memCourseRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Course, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	c, ok := r.w.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	return c, nil
}

func (r memCourseRepo) Find(_ context.Context, f ports.CourseFilter, _ ports.Page) ([]*domain.Course, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	out := make([]*domain.Course, 0)
	for _, c := range r.w.courses {
		if len(f.IDs) > 0 && !contains(f.IDs, c.ID) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r memCourseRepo) Update(_ context.Context, id primitive.ObjectID, u ports.CourseUpdate) (*domain.Course, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	c, ok := r.w.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	if u.Title != nil {
		c.Title = *u.Title
	}
	return c, nil
}

func (r memCourseRepo) UpdateVerificationStatus(_ context.Context, id primitive.ObjectID, status domain.VerificationStatus) (*domain.Course, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	c, ok := r.w.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	c.VerificationStatus = status
	return c, nil
}

func (r memCourseRepo) Delete(_ context.Context, id primitive.ObjectID) (*domain.Course, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	c, ok := r.w.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	delete(r.w.courses, id)
	return c, nil
}

type memSchoolRepo struct{ w *world }

func (r memSchoolRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.School, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	s, ok := r.w.schools[id]
	if !ok {
		return nil, domain.ErrSchoolNotFound
	}
	return s, nil
}

func (r memSchoolRepo) Find(_ context.Context, _ ports.SchoolFilter, _ ports.Page) ([]*domain.School, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	out := make([]*domain.School, 0, len(r.w.schools))
	for _, s := range r.w.schools {
		out = append(out, s)
	}
	return out, nil
}

func (r memSchoolRepo) FindNear(ctx context.Context, _ ports.Near, f ports.SchoolFilter, page ports.Page) ([]*domain.School, error) {
	return r.Find(ctx, f, page)
}

type memChatRepo struct{ w *world }

func (r memChatRepo) Create(_ context.Context, c *domain.Chat) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	c.ID = primitive.NewObjectID()
	r.w.chats[c.ID] = c
	return nil
}

func (r memChatRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Chat, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	c, ok := r.w.chats[id]
	if !ok {
		return nil, domain.ErrChatNotFound
	}
	return c, nil
}

func (r memChatRepo) FindByPrivateKey(_ context.Context, key string) (*domain.Chat, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	for _, c := range r.w.chats {
		if c.PrivateChatKey == key {
			return c, nil
		}
	}
	return nil, domain.ErrChatNotFound
}

func (r memChatRepo) Find(_ context.Context, f ports.ChatFilter, _ ports.Page) ([]*domain.Chat, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	out := make([]*domain.Chat, 0)
	for _, c := range r.w.chats {
		match := true
		for _, u := range f.Users {
			if !c.HasUser(u) {
				match = false
			}
		}
		if match && (!f.Exact || len(c.Meta.Users) == len(f.Users)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memChatRepo) Delete(_ context.Context, id primitive.ObjectID) (*domain.Chat, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	c, ok := r.w.chats[id]
	if !ok {
		return nil, domain.ErrChatNotFound
	}
	delete(r.w.chats, id)
	return c, nil
}

func (r memChatRepo) RecordMessage(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	c, ok := r.w.chats[id]
	if !ok {
		return domain.ErrChatNotFound
	}
	c.NumMessages++
	c.LastMessageSentAt = &at
	return nil
}

type memMessageRepo struct{ w *world }

func (r memMessageRepo) Create(_ context.Context, m *domain.Message) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	m.ID = primitive.NewObjectID()
	r.w.messages[m.ID] = m
	return nil
}

func (r memMessageRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Message, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	m, ok := r.w.messages[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	return m, nil
}

// FindByChat orders newest first; ObjectIDs grow with creation time.
func (r memMessageRepo) FindByChat(_ context.Context, chatID primitive.ObjectID, page ports.Page) ([]*domain.Message, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	out := make([]*domain.Message, 0)
	for _, m := range r.w.messages {
		if m.Meta.Chat == chatID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() > out[j].ID.Hex() })
	if page.Skip >= len(out) {
		return []*domain.Message{}, nil
	}
	out = out[page.Skip:]
	if page.Limit > 0 && len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, nil
}

func (r memMessageRepo) authored(chatID, id, authorID primitive.ObjectID) (*domain.Message, error) {
	m, ok := r.w.messages[id]
	if !ok || m.Meta.Chat != chatID || m.Meta.From != authorID {
		return nil, domain.ErrMessageNotFound
	}
	return m, nil
}

func (r memMessageRepo) UpdateText(_ context.Context, chatID, id, authorID primitive.ObjectID, text string) (*domain.Message, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	m, err := r.authored(chatID, id, authorID)
	if err != nil {
		return nil, err
	}
	m.Text, m.IsEdited = text, true
	return m, nil
}

func (r memMessageRepo) SetDeleted(_ context.Context, chatID, id, authorID primitive.ObjectID, deleted bool) (*domain.Message, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	m, err := r.authored(chatID, id, authorID)
	if err != nil {
		return nil, err
	}
	m.IsDeleted = deleted
	return m, nil
}

func (r memMessageRepo) AddReader(_ context.Context, chatID, id, userID primitive.ObjectID) (*domain.Message, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	m, ok := r.w.messages[id]
	if !ok || m.Meta.Chat != chatID {
		return nil, domain.ErrMessageNotFound
	}
	m.Meta.ReadBy = addToSet(m.Meta.ReadBy, []primitive.ObjectID{userID})
	return m, nil
}

func (r memMessageRepo) DeleteByChat(_ context.Context, chatID primitive.ObjectID) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	for id, m := range r.w.messages {
		if m.Meta.Chat == chatID {
			delete(r.w.messages, id)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

type stubLocations struct {
	byZip map[string]*domain.ZipLocation
}

func (s stubLocations) FindLocationByZip(_ context.Context, zip string) (*domain.ZipLocation, error) {
	loc, ok := s.byZip[zip]
	if !ok {
		return nil, domain.ErrLocationNotFound
	}
	return loc, nil
}

func (s stubLocations) FindLocationsByText(context.Context, string) ([]*domain.ZipLocation, error) {
	return []*domain.ZipLocation{}, nil
}

// stubHasher prefixes instead of hashing so tests can assert on the result.
type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (stubHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// countingRecorder tallies the events the services report.
type countingRecorder struct {
	ports.NopRecorder
	mu       sync.Mutex
	metadata map[string]int
	cache    map[string]int
}

func (r *countingRecorder) MetadataUpdate(operation, result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.metadata == nil {
		r.metadata = make(map[string]int)
	}
	r.metadata[operation+":"+result]++
}

func (r *countingRecorder) LocationCache(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		r.cache = make(map[string]int)
	}
	r.cache[result]++
}

type stubTokens struct{}

func (stubTokens) Sign(u domain.TokenUser) (string, error) {
	return "token:" + u.ID + ":" + string(u.Role), nil
}

func (stubTokens) Parse(string) (*domain.TokenPayload, error) { return nil, domain.ErrInvalidToken }

func tokenUser(u *domain.User) domain.TokenUser {
	return domain.NewTokenUser(u)
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

// harness wires the real services over one in-memory world.
type harness struct {
	w           *world
	userRepo    *memUserRepo
	metadata    *MetadataService
	rec         *countingRecorder
	invitations *auth.Issuer
	users       *UserService
	courses     *CourseService
	chats       *ChatService
	auth        *AuthService
}

var brooklyn = &domain.ZipLocation{
	Zip: "11201", City: "Brooklyn", State: "NY",
	GeoJSON: domain.NewPoint(-73.99, 40.69),
}

func newHarness() *harness {
	w := newWorld()
	log := zerolog.Nop()
	limits := ports.DefaultPageLimits()

	userRepo := &memUserRepo{w: w}
	rec := &countingRecorder{}
	invitations := auth.NewIssuer("invitation-secret", time.Hour)

	metadata := NewMetadataService(memMetadataStore{w: w}, rec, log)
	locations := stubLocations{byZip: map[string]*domain.ZipLocation{brooklyn.Zip: brooklyn}}

	users := NewUserService(userRepo, memSchoolRepo{w: w}, locations, metadata, stubHasher{}, limits, rec, log)
	return &harness{
		w:           w,
		userRepo:    userRepo,
		metadata:    metadata,
		rec:         rec,
		invitations: invitations,
		users:       users,
		courses:     NewCourseService(memCourseRepo{w: w}, users, memSchoolRepo{w: w}, metadata, invitations, limits, rec, log),
		chats:       NewChatService(memChatRepo{w: w}, memMessageRepo{w: w}, users, metadata, limits, rec, log),
		auth:        NewAuthService(users, stubTokens{}, stubHasher{}, log),
	}
}
