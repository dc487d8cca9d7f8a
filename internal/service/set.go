package service

import (
	"novelhub/internal/backend"
	"novelhub/internal/repository"
)

// Set is every service wired over one data source; both binaries build one.
type Set struct {
	Storage  StorageService
	Novels   NovelService
	Ranking  RankingService
	Chapters ChapterService
	Votes    VoteService
	Reviews  ReviewService
	Comments CommentService
	Library  LibraryService
	Progress ProgressService
	Profiles ProfileService
}

// NewSet builds the repositories over db and the services over them. live
// may be nil, which disables comment watching.
func NewSet(db backend.DataSource, store backend.StorageAPI, live Subscriber, maxUpload int64, opts Options) *Set {
	novels := repository.NewNovelRepository(db)
	chapters := repository.NewChapterRepository(db)
	votes := repository.NewVoteRepository(db)
	reviews := repository.NewReviewRepository(db)
	comments := repository.NewCommentRepository(db)
	library := repository.NewLibraryRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	users := repository.NewUserRepository(db)

	storage := NewStorageService(store, maxUpload, opts)
	progress := NewProgressService(progressRepo, chapters, novels, opts)
	return &Set{
		Storage:  storage,
		Novels:   NewNovelService(novels, chapters, storage, opts),
		Ranking:  NewRankingService(novels, votes, opts),
		Chapters: NewChapterService(chapters, progress, opts),
		Votes:    NewVoteService(votes, opts),
		Reviews:  NewReviewService(reviews, users, opts),
		Comments: NewCommentService(comments, users, live, opts),
		Library:  NewLibraryService(library, novels, chapters, progressRepo, opts),
		Progress: progress,
		Profiles: NewProfileService(users, storage, opts),
	}
}
