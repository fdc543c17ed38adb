package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mkravets/team-dashboard/internal/model"
	"github.com/mkravets/team-dashboard/internal/repository"
)

func TestTaskService_Create(t *testing.T) {
	tests := []struct {
		name          string
		input         *CreateTaskInput
		setupMocks    func(*MockUserRepository, *MockTeamRepository, *MockTaskRepository)
		expectedError bool
		errorCode     ErrorCode
		expectStatus  model.TaskStatus
	}{
		{
			name:  "status defaults to pending",
			input: &CreateTaskInput{Title: "write report", OwnerID: 1},
			setupMocks: func(ur *MockUserRepository, tr *MockTeamRepository, kr *MockTaskRepository) {
				ur.On("Get", mock.Anything, int64(1)).Return(&repository.User{ID: 1, Username: "john"}, nil)
				kr.On("Create", mock.Anything, mock.MatchedBy(func(task *repository.Task) bool {
					return task.Status == "pending" && task.TeamID == nil
				})).Return(&repository.Task{ID: 1, Title: "write report", Status: "pending", OwnerID: 1}, nil)
			},
			expectStatus: model.TaskStatusPending,
		},
		{
			name:  "explicit status and team",
			input: &CreateTaskInput{Title: "write report", OwnerID: 1, Status: strPtr("in_progress"), TeamID: int64Ptr(10)},
			setupMocks: func(ur *MockUserRepository, tr *MockTeamRepository, kr *MockTaskRepository) {
				ur.On("Get", mock.Anything, int64(1)).Return(&repository.User{ID: 1, Username: "john"}, nil)
				tr.On("Get", mock.Anything, int64(10)).Return(&repository.Team{ID: 10, Name: "backend"}, nil)
				kr.On("Create", mock.Anything, mock.MatchedBy(func(task *repository.Task) bool {
					return task.Status == "in_progress" && task.TeamID != nil && *task.TeamID == 10
				})).Return(&repository.Task{ID: 1, Title: "write report", Status: "in_progress", OwnerID: 1, TeamID: int64Ptr(10)}, nil)
			},
			expectStatus: model.TaskStatusInProgress,
		},
		{
			name:          "missing title",
			input:         &CreateTaskInput{OwnerID: 1},
			setupMocks:    func(*MockUserRepository, *MockTeamRepository, *MockTaskRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeValidation,
		},
		{
			name:          "missing owner",
			input:         &CreateTaskInput{Title: "write report"},
			setupMocks:    func(*MockUserRepository, *MockTeamRepository, *MockTaskRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeValidation,
		},
		{
			name:          "unrecognized status",
			input:         &CreateTaskInput{Title: "write report", OwnerID: 1, Status: strPtr("done")},
			setupMocks:    func(*MockUserRepository, *MockTeamRepository, *MockTaskRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeValidation,
		},
		{
			name:  "owner does not exist",
			input: &CreateTaskInput{Title: "write report", OwnerID: 404},
			setupMocks: func(ur *MockUserRepository, tr *MockTeamRepository, kr *MockTaskRepository) {
				ur.On("Get", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:  "team does not exist",
			input: &CreateTaskInput{Title: "write report", OwnerID: 1, TeamID: int64Ptr(404)},
			setupMocks: func(ur *MockUserRepository, tr *MockTeamRepository, kr *MockTaskRepository) {
				ur.On("Get", mock.Anything, int64(1)).Return(&repository.User{ID: 1, Username: "john"}, nil)
				tr.On("Get", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockUserRepo := new(MockUserRepository)
			mockTeamRepo := new(MockTeamRepository)
			mockTaskRepo := new(MockTaskRepository)

			tt.setupMocks(mockUserRepo, mockTeamRepo, mockTaskRepo)

			svc := NewTaskService(mockTx).
				WithUserRepo(mockUserRepo).
				WithTeamRepo(mockTeamRepo).
				WithTaskRepo(mockTaskRepo)

			got, err := svc.Create(context.Background(), tt.input)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, tt.expectStatus, got.Status)
			}

			mockUserRepo.AssertExpectations(t)
			mockTeamRepo.AssertExpectations(t)
			mockTaskRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_Update(t *testing.T) {
	tests := []struct {
		name          string
		taskID        int64
		input         *UpdateTaskInput
		setupMocks    func(*MockUserRepository, *MockTeamRepository, *MockTaskRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:   "status change",
			taskID: 1,
			input:  &UpdateTaskInput{Status: strPtr("completed")},
			setupMocks: func(ur *MockUserRepository, tr *MockTeamRepository, kr *MockTaskRepository) {
				kr.On("Patch", mock.Anything, mock.MatchedBy(func(p *repository.TaskPatch) bool {
					return p.ID == 1 && p.Status != nil && *p.Status == "completed"
				})).Return(&repository.Task{ID: 1, Title: "write report", Status: "completed", OwnerID: 1}, nil)
			},
		},
		{
			name:   "reassignment revalidates the new owner",
			taskID: 1,
			input:  &UpdateTaskInput{OwnerID: int64Ptr(404)},
			setupMocks: func(ur *MockUserRepository, tr *MockTeamRepository, kr *MockTaskRepository) {
				ur.On("Get", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:   "moving to a team revalidates the team",
			taskID: 1,
			input:  &UpdateTaskInput{TeamID: int64Ptr(404)},
			setupMocks: func(ur *MockUserRepository, tr *MockTeamRepository, kr *MockTaskRepository) {
				tr.On("Get", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:          "unrecognized status",
			taskID:        1,
			input:         &UpdateTaskInput{Status: strPtr("archived")},
			setupMocks:    func(*MockUserRepository, *MockTeamRepository, *MockTaskRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeValidation,
		},
		{
			name:   "task not found",
			taskID: 404,
			input:  &UpdateTaskInput{Title: strPtr("new title")},
			setupMocks: func(ur *MockUserRepository, tr *MockTeamRepository, kr *MockTaskRepository) {
				kr.On("Patch", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockUserRepo := new(MockUserRepository)
			mockTeamRepo := new(MockTeamRepository)
			mockTaskRepo := new(MockTaskRepository)

			tt.setupMocks(mockUserRepo, mockTeamRepo, mockTaskRepo)

			svc := NewTaskService(mockTx).
				WithUserRepo(mockUserRepo).
				WithTeamRepo(mockTeamRepo).
				WithTaskRepo(mockTaskRepo)

			got, err := svc.Update(context.Background(), tt.taskID, tt.input)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.NotNil(t, got)
			}

			mockUserRepo.AssertExpectations(t)
			mockTeamRepo.AssertExpectations(t)
			mockTaskRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_ListByUser(t *testing.T) {
	mockTx := new(MockTransactor)
	mockUserRepo := new(MockUserRepository)
	mockTaskRepo := new(MockTaskRepository)

	mockUserRepo.On("Get", mock.Anything, int64(1)).Return(&repository.User{ID: 1, Username: "john"}, nil)
	mockTaskRepo.On("ListByOwner", mock.Anything, int64(1)).Return([]*repository.Task{
		{ID: 1, Title: "write report", Status: "pending", OwnerID: 1},
	}, nil)

	svc := NewTaskService(mockTx).
		WithUserRepo(mockUserRepo).
		WithTaskRepo(mockTaskRepo)

	got, err := svc.ListByUser(context.Background(), 1)

	assert.Nil(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].OwnerID)
	assert.Nil(t, got[0].TeamID)
}

func TestTaskService_ListByUser_UserNotFound(t *testing.T) {
	mockTx := new(MockTransactor)
	mockUserRepo := new(MockUserRepository)

	mockUserRepo.On("Get", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)

	svc := NewTaskService(mockTx).WithUserRepo(mockUserRepo)

	got, err := svc.ListByUser(context.Background(), 404)

	assert.Error(t, err)
	assert.Equal(t, ErrorCodeNotFound, err.Code)
	assert.Nil(t, got)
}

func TestTaskService_ListByTeam_TeamNotFound(t *testing.T) {
	mockTx := new(MockTransactor)
	mockTeamRepo := new(MockTeamRepository)

	mockTeamRepo.On("Get", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)

	svc := NewTaskService(mockTx).WithTeamRepo(mockTeamRepo)

	got, err := svc.ListByTeam(context.Background(), 404)

	assert.Error(t, err)
	assert.Equal(t, ErrorCodeNotFound, err.Code)
	assert.Nil(t, got)
}

func TestTaskService_ListByStatus(t *testing.T) {
	t.Run("valid status", func(t *testing.T) {
		mockTx := new(MockTransactor)
		mockTaskRepo := new(MockTaskRepository)

		mockTaskRepo.On("ListByStatus", mock.Anything, "completed").Return([]*repository.Task{
			{ID: 1, Title: "write report", Status: "completed", OwnerID: 1},
		}, nil)

		svc := NewTaskService(mockTx).WithTaskRepo(mockTaskRepo)

		got, err := svc.ListByStatus(context.Background(), "completed")

		assert.Nil(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("unrecognized status is a validation error, not a miss", func(t *testing.T) {
		mockTx := new(MockTransactor)
		mockTaskRepo := new(MockTaskRepository)

		svc := NewTaskService(mockTx).WithTaskRepo(mockTaskRepo)

		got, err := svc.ListByStatus(context.Background(), "finished")

		assert.Error(t, err)
		assert.Equal(t, ErrorCodeValidation, err.Code)
		assert.Nil(t, got)
		mockTaskRepo.AssertNotCalled(t, "ListByStatus", mock.Anything, mock.Anything)
	})
}

func TestTaskService_Delete(t *testing.T) {
	mockTx := new(MockTransactor)
	mockTaskRepo := new(MockTaskRepository)

	mockTaskRepo.On("Delete", mock.Anything, int64(1)).Return(nil)
	mockTaskRepo.On("Delete", mock.Anything, int64(404)).Return(repository.ErrNotFound)

	svc := NewTaskService(mockTx).WithTaskRepo(mockTaskRepo)

	assert.Nil(t, svc.Delete(context.Background(), 1))

	err := svc.Delete(context.Background(), 404)
	assert.Error(t, err)
	assert.Equal(t, ErrorCodeNotFound, err.Code)
}
