package handler_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"novelhub/internal/backend"
	"novelhub/internal/models"
	"novelhub/internal/service"
	"novelhub/internal/session"
)

// fakeSessions accepts "token-<user id>" bearer tokens.
type fakeSessions struct {
	stored map[string]*backend.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{stored: map[string]*backend.Session{}}
}

func (f *fakeSessions) Resolve(_ context.Context, id string) (*backend.Session, error) {
	s, ok := f.stored[id]
	if !ok {
		return nil, session.ErrNoSession
	}
	return s, nil
}

func (f *fakeSessions) Credentials(token string) (backend.Credentials, error) {
	const prefix = "token-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return backend.Credentials{}, session.ErrInvalidToken
	}
	return backend.Credentials{AccessToken: token, UserID: token[len(prefix):], Role: "authenticated"}, nil
}

func (f *fakeSessions) Create(_ context.Context, s *backend.Session) (string, error) {
	id := "sess-" + s.User.ID
	f.stored[id] = s
	return id, nil
}

func (f *fakeSessions) Revoke(_ context.Context, id string) (*backend.Session, error) {
	s, ok := f.stored[id]
	if !ok {
		return nil, session.ErrNoSession
	}
	delete(f.stored, id)
	return s, nil
}

type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) SignUp(ctx context.Context, email, password string) (*backend.User, *backend.Session, error) {
	args := m.Called(ctx, email, password)
	var s *backend.Session
	if args.Get(1) != nil {
		s = args.Get(1).(*backend.Session)
	}
	if args.Get(0) == nil {
		return nil, s, args.Error(2)
	}
	return args.Get(0).(*backend.User), s, args.Error(2)
}

func (m *MockAuth) SignInWithPassword(ctx context.Context, email, password string) (*backend.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Session), args.Error(1)
}

func (m *MockAuth) RefreshSession(ctx context.Context, refreshToken string) (*backend.Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Session), args.Error(1)
}

func (m *MockAuth) GetUser(ctx context.Context, accessToken string) (*backend.User, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.User), args.Error(1)
}

func (m *MockAuth) SignOut(ctx context.Context, accessToken string) error {
	return m.Called(ctx, accessToken).Error(0)
}

type MockNovelService struct {
	mock.Mock
}

func (m *MockNovelService) List(ctx context.Context, p service.ListParams) (*service.NovelPage, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.NovelPage), args.Error(1)
}

func (m *MockNovelService) NewArrivals(ctx context.Context, page int) (*service.NovelPage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.NovelPage), args.Error(1)
}

func (m *MockNovelService) Explore(ctx context.Context, genre string) ([]models.Novel, error) {
	args := m.Called(ctx, genre)
	return args.Get(0).([]models.Novel), args.Error(1)
}

func (m *MockNovelService) Get(ctx context.Context, id string) (*models.Novel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Novel), args.Error(1)
}

func (m *MockNovelService) ByAuthor(ctx context.Context, userID string) ([]models.Novel, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Novel), args.Error(1)
}

func (m *MockNovelService) Dashboard(ctx context.Context, userID string) ([]service.AuthorNovel, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]service.AuthorNovel), args.Error(1)
}

func (m *MockNovelService) QuickSearch(ctx context.Context, term string) ([]models.Novel, error) {
	args := m.Called(ctx, term)
	return args.Get(0).([]models.Novel), args.Error(1)
}

func (m *MockNovelService) Search(ctx context.Context, term string, genres []string, page, pageSize int) ([]models.Novel, error) {
	args := m.Called(ctx, term, genres, page, pageSize)
	return args.Get(0).([]models.Novel), args.Error(1)
}

func (m *MockNovelService) Create(ctx context.Context, userID string, in service.NovelInput, cover *service.Upload) (*models.Novel, error) {
	args := m.Called(ctx, userID, in, cover)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Novel), args.Error(1)
}

func (m *MockNovelService) Update(ctx context.Context, id string, in service.NovelInput, cover *service.Upload) (*models.Novel, error) {
	args := m.Called(ctx, id, in, cover)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Novel), args.Error(1)
}

func (m *MockNovelService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockNovelService) IncrementViews(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockVoteService struct {
	mock.Mock
}

func (m *MockVoteService) Counts(ctx context.Context, novelID string) (models.VoteCount, error) {
	args := m.Called(ctx, novelID)
	return args.Get(0).(models.VoteCount), args.Error(1)
}

func (m *MockVoteService) UserVote(ctx context.Context, userID, novelID string) (string, error) {
	args := m.Called(ctx, userID, novelID)
	return args.String(0), args.Error(1)
}

func (m *MockVoteService) State(ctx context.Context, userID, novelID string) (*service.VoteState, error) {
	args := m.Called(ctx, userID, novelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VoteState), args.Error(1)
}

func (m *MockVoteService) Toggle(ctx context.Context, userID, novelID, voteType string) (*service.VoteState, error) {
	args := m.Called(ctx, userID, novelID, voteType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VoteState), args.Error(1)
}

type MockLibraryService struct {
	mock.Mock
}

func (m *MockLibraryService) Add(ctx context.Context, userID, novelID string) error {
	return m.Called(ctx, userID, novelID).Error(0)
}

func (m *MockLibraryService) Remove(ctx context.Context, userID, novelID string) error {
	return m.Called(ctx, userID, novelID).Error(0)
}

func (m *MockLibraryService) Contains(ctx context.Context, userID, novelID string) (bool, error) {
	args := m.Called(ctx, userID, novelID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLibraryService) List(ctx context.Context, userID string) ([]service.LibraryItem, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]service.LibraryItem), args.Error(1)
}

type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) Update(ctx context.Context, userID, novelID, chapterID string) error {
	return m.Called(ctx, userID, novelID, chapterID).Error(0)
}

func (m *MockProgressService) ContinueReading(ctx context.Context, userID, novelID string) (*models.ReadingProgress, error) {
	args := m.Called(ctx, userID, novelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReadingProgress), args.Error(1)
}

func (m *MockProgressService) History(ctx context.Context, userID string) ([]service.HistoryEntry, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]service.HistoryEntry), args.Error(1)
}

func (m *MockProgressService) WeeklyStats(ctx context.Context, userID string) ([]service.DayStat, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]service.DayStat), args.Error(1)
}

func (m *MockProgressService) ClearHistory(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockProfileService) CompleteProfile(ctx context.Context, userID, email string, in service.ProfileInput, picture *service.Upload) (*models.UserProfile, error) {
	args := m.Called(ctx, userID, email, in, picture)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, userID string, in service.ProfileInput, picture *service.Upload) (*models.UserProfile, error) {
	args := m.Called(ctx, userID, in, picture)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockProfileService) NeedsCompletion(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}
