package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/uwuweb/uwuweb-api/internal/models"
)

// UserRepository is the identity directory: it resolves login accounts
// and the role-scoped ids (teacher/student/parent) behind them.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, id uint) (models.User, error)
	ResolveScopedID(ctx context.Context, userID uint, role string) (uint, error)
	UserIDForStudent(ctx context.Context, studentID uint) (uint, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a repository backed by GORM.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ResolveScopedID maps a user id to its teacher_id, student_id or
// parent_id depending on role. Admins carry no scoped id and resolve to 0.
func (r *userRepository) ResolveScopedID(ctx context.Context, userID uint, role string) (uint, error) {
	switch role {
	case models.RoleAdmin:
		return 0, nil
	case models.RoleTeacher:
		var teacher models.Teacher
		if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&teacher).Error; err != nil {
			return 0, err
		}
		return teacher.ID, nil
	case models.RoleStudent:
		var student models.Student
		if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&student).Error; err != nil {
			return 0, err
		}
		return student.ID, nil
	case models.RoleParent:
		var parent models.Parent
		if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&parent).Error; err != nil {
			return 0, err
		}
		return parent.ID, nil
	default:
		return 0, errors.New("unknown role")
	}
}

// UserIDForStudent walks a student id back to its login account.
func (r *userRepository) UserIDForStudent(ctx context.Context, studentID uint) (uint, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, studentID).Error; err != nil {
		return 0, err
	}
	return student.UserID, nil
}
