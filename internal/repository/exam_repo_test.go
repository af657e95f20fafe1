package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smartcia/assessment-api/internal/kv"
	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/internal/repository"
)

func sampleExam(id string) models.Exam {
	return models.Exam{
		ID:              id,
		Title:           "Midterm",
		Subject:         "Mathematics",
		DurationMinutes: 30,
		CreatedBy:       "MA26",
		CreatedAt:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Questions: []models.Question{
			{ID: id + "-q1", Text: "2+2?", Type: models.QuestionTypeMCQ, Marks: 5, Options: []string{"3", "4"}, CorrectOptionIndex: 1},
		},
	}
}

func TestExamRepositorySaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewExamRepository(kv.NewMemoryStore())

	_, err := repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	exam := sampleExam("e1")
	require.NoError(t, repo.Save(ctx, exam))

	stored, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, exam, stored)

	// upsert replaces in place instead of appending
	exam.Title = "Midterm (revised)"
	require.NoError(t, repo.Save(ctx, exam))

	all, err := repo.List(ctx, repository.ExamFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "Midterm (revised)", all[0].Title)
}

func TestExamRepositoryListFilters(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewExamRepository(kv.NewMemoryStore())

	first := sampleExam("e1")
	first.IsPublished = true
	second := sampleExam("e2")
	second.Subject = "Power BI"
	second.CreatedBy = "POWBI26"
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	owner := "POWBI26"
	byOwner, err := repo.List(ctx, repository.ExamFilter{CreatedBy: &owner})
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	require.Equal(t, "e2", byOwner[0].ID)

	published, err := repo.List(ctx, repository.ExamFilter{PublishedOnly: true})
	require.NoError(t, err)
	require.Len(t, published, 1)
	require.Equal(t, "e1", published[0].ID)

	subject := "Power BI"
	bySubject, err := repo.List(ctx, repository.ExamFilter{Subject: &subject})
	require.NoError(t, err)
	require.Len(t, bySubject, 1)
	require.Equal(t, "e2", bySubject[0].ID)
}

func TestSubmissionRepositoryUpsertByID(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSubmissionRepository(kv.NewMemoryStore())

	submission := models.Submission{
		ID:        "s1",
		ExamID:    "e1",
		StudentID: "222BCAA29",
		Answers: []models.Answer{
			{QuestionID: "q1", StudentAnswer: "4", ObtainedMarks: 5, IsGraded: true},
		},
		TotalScore: 5,
		MaxScore:   5,
	}
	require.NoError(t, repo.Save(ctx, submission))

	submission.TotalScore = 3
	submission.Answers[0].ObtainedMarks = 3
	require.NoError(t, repo.Save(ctx, submission))

	examID := "e1"
	byExam, err := repo.List(ctx, repository.SubmissionFilter{ExamID: &examID})
	require.NoError(t, err)
	require.Len(t, byExam, 1)
	require.Equal(t, 3.0, byExam[0].TotalScore)

	other := "other"
	none, err := repo.List(ctx, repository.SubmissionFilter{StudentID: &other})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSessionRepository(kv.NewMemoryStore())

	_, err := repo.CurrentUser(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)

	user := models.User{ID: "MA26", Name: "Prof. Mathematics", Role: models.RoleTeacher, Email: "ma26@university.edu"}
	require.NoError(t, repo.SetCurrentUser(ctx, user))

	stored, err := repo.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, user, stored)

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.CurrentUser(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
