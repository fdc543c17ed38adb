package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mkravets/team-dashboard/internal/model"
	"github.com/mkravets/team-dashboard/internal/repository"
)

func TestTeamService_Create(t *testing.T) {
	tests := []struct {
		name          string
		teamName      string
		creatorID     int64
		setupMocks    func(*MockUserRepository, *MockTeamRepository, *MockMemberRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:      "creator becomes moderator atomically",
			teamName:  "backend",
			creatorID: 1,
			setupMocks: func(ur *MockUserRepository, tr *MockTeamRepository, mr *MockMemberRepository) {
				ur.On("Get", mock.Anything, int64(1)).Return(&repository.User{ID: 1, Username: "john"}, nil)
				tr.On("NameTaken", mock.Anything, "backend", int64(0)).Return(false, nil)
				tr.On("Create", mock.Anything, &repository.Team{Name: "backend"}).Return(&repository.Team{ID: 10, Name: "backend"}, nil)
				mr.On("Create", mock.Anything, &repository.TeamMember{
					TeamID:      10,
					UserID:      1,
					IsModerator: true,
				}).Return(&repository.TeamMember{ID: 100, TeamID: 10, UserID: 1, IsModerator: true}, nil)
			},
		},
		{
			name:      "creator not found",
			teamName:  "backend",
			creatorID: 404,
			setupMocks: func(ur *MockUserRepository, tr *MockTeamRepository, mr *MockMemberRepository) {
				ur.On("Get", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:      "team name already exists",
			teamName:  "backend",
			creatorID: 1,
			setupMocks: func(ur *MockUserRepository, tr *MockTeamRepository, mr *MockMemberRepository) {
				ur.On("Get", mock.Anything, int64(1)).Return(&repository.User{ID: 1, Username: "john"}, nil)
				tr.On("NameTaken", mock.Anything, "backend", int64(0)).Return(true, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeConflict,
		},
		{
			name:      "unique index wins the race",
			teamName:  "backend",
			creatorID: 1,
			setupMocks: func(ur *MockUserRepository, tr *MockTeamRepository, mr *MockMemberRepository) {
				ur.On("Get", mock.Anything, int64(1)).Return(&repository.User{ID: 1, Username: "john"}, nil)
				tr.On("NameTaken", mock.Anything, "backend", int64(0)).Return(false, nil)
				tr.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrAlreadyExists)
			},
			expectedError: true,
			errorCode:     ErrorCodeConflict,
		},
		{
			name:      "membership write failure aborts the whole create",
			teamName:  "backend",
			creatorID: 1,
			setupMocks: func(ur *MockUserRepository, tr *MockTeamRepository, mr *MockMemberRepository) {
				ur.On("Get", mock.Anything, int64(1)).Return(&repository.User{ID: 1, Username: "john"}, nil)
				tr.On("NameTaken", mock.Anything, "backend", int64(0)).Return(false, nil)
				tr.On("Create", mock.Anything, mock.Anything).Return(&repository.Team{ID: 10, Name: "backend"}, nil)
				mr.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockUserRepo := new(MockUserRepository)
			mockTeamRepo := new(MockTeamRepository)
			mockMemberRepo := new(MockMemberRepository)

			tt.setupMocks(mockUserRepo, mockTeamRepo, mockMemberRepo)

			svc := NewTeamService(mockTx).
				WithUserRepo(mockUserRepo).
				WithTeamRepo(mockTeamRepo).
				WithMemberRepo(mockMemberRepo)

			got, err := svc.Create(context.Background(), tt.teamName, tt.creatorID)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, &model.Team{ID: 10, Name: "backend"}, got)
			}

			mockUserRepo.AssertExpectations(t)
			mockTeamRepo.AssertExpectations(t)
			mockMemberRepo.AssertExpectations(t)
		})
	}
}

func TestTeamService_Update(t *testing.T) {
	tests := []struct {
		name          string
		teamID        int64
		newName       string
		setupMocks    func(*MockTeamRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:    "success",
			teamID:  10,
			newName: "platform",
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("NameTaken", mock.Anything, "platform", int64(10)).Return(false, nil)
				tr.On("Rename", mock.Anything, int64(10), "platform").Return(&repository.Team{ID: 10, Name: "platform"}, nil)
			},
		},
		{
			name:    "name collides with a different team",
			teamID:  10,
			newName: "frontend",
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("NameTaken", mock.Anything, "frontend", int64(10)).Return(true, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeConflict,
		},
		{
			name:    "team not found",
			teamID:  404,
			newName: "platform",
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("NameTaken", mock.Anything, "platform", int64(404)).Return(false, nil)
				tr.On("Rename", mock.Anything, int64(404), "platform").Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockTeamRepo := new(MockTeamRepository)

			tt.setupMocks(mockTeamRepo)

			svc := NewTeamService(mockTx).WithTeamRepo(mockTeamRepo)

			got, err := svc.Update(context.Background(), tt.teamID, tt.newName)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, tt.newName, got.Name)
			}

			mockTeamRepo.AssertExpectations(t)
		})
	}
}

func TestTeamService_Delete_DetachesTasksInsteadOfDeleting(t *testing.T) {
	mockTx := new(MockTransactor)
	mockTeamRepo := new(MockTeamRepository)
	mockMemberRepo := new(MockMemberRepository)
	mockTaskRepo := new(MockTaskRepository)

	mockTeamRepo.On("Get", mock.Anything, int64(10)).Return(&repository.Team{ID: 10, Name: "backend"}, nil)
	mockMemberRepo.On("DeleteByTeam", mock.Anything, int64(10)).Return(nil)
	mockTaskRepo.On("ClearTeam", mock.Anything, int64(10)).Return(nil)
	mockTeamRepo.On("Delete", mock.Anything, int64(10)).Return(nil)

	svc := NewTeamService(mockTx).
		WithTeamRepo(mockTeamRepo).
		WithMemberRepo(mockMemberRepo).
		WithTaskRepo(mockTaskRepo)

	err := svc.Delete(context.Background(), 10)

	assert.Nil(t, err)
	// Tasks survive a team delete: only ClearTeam may touch them.
	mockTaskRepo.AssertNotCalled(t, "DeleteByOwner", mock.Anything, mock.Anything)
	mockTaskRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	mockTeamRepo.AssertExpectations(t)
	mockMemberRepo.AssertExpectations(t)
	mockTaskRepo.AssertExpectations(t)
}

func TestTeamService_Members(t *testing.T) {
	tests := []struct {
		name          string
		teamID        int64
		setupMocks    func(*MockTeamRepository, *MockMemberRepository)
		expectedError bool
		errorCode     ErrorCode
		expectedLen   int
	}{
		{
			name:   "success",
			teamID: 10,
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("Get", mock.Anything, int64(10)).Return(&repository.Team{ID: 10, Name: "backend"}, nil)
				mr.On("ListByTeam", mock.Anything, int64(10)).Return([]*repository.TeamMember{
					{ID: 1, TeamID: 10, UserID: 1, IsModerator: true},
					{ID: 2, TeamID: 10, UserID: 2, IsModerator: false},
				}, nil)
			},
			expectedLen: 2,
		},
		{
			name:   "team not found",
			teamID: 404,
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("Get", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockTeamRepo := new(MockTeamRepository)
			mockMemberRepo := new(MockMemberRepository)

			tt.setupMocks(mockTeamRepo, mockMemberRepo)

			svc := NewTeamService(mockTx).
				WithTeamRepo(mockTeamRepo).
				WithMemberRepo(mockMemberRepo)

			got, err := svc.Members(context.Background(), tt.teamID)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
			} else {
				assert.Nil(t, err)
				assert.Len(t, got, tt.expectedLen)
			}

			mockTeamRepo.AssertExpectations(t)
			mockMemberRepo.AssertExpectations(t)
		})
	}
}

func TestTeamService_UserTeams(t *testing.T) {
	mockTx := new(MockTransactor)
	mockUserRepo := new(MockUserRepository)
	mockTeamRepo := new(MockTeamRepository)

	mockUserRepo.On("Get", mock.Anything, int64(1)).Return(&repository.User{ID: 1, Username: "john"}, nil)
	mockTeamRepo.On("ListByUser", mock.Anything, int64(1)).Return([]*repository.Team{
		{ID: 10, Name: "backend"},
		{ID: 11, Name: "frontend"},
	}, nil)

	svc := NewTeamService(mockTx).
		WithUserRepo(mockUserRepo).
		WithTeamRepo(mockTeamRepo)

	got, err := svc.UserTeams(context.Background(), 1)

	assert.Nil(t, err)
	assert.Equal(t, []*model.Team{
		{ID: 10, Name: "backend"},
		{ID: 11, Name: "frontend"},
	}, got)
}
