package services

import (
	"errors"
	"strings"

	"github.com/diewo77/timesheet-app/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidCredentials covers unknown username, wrong password and
	// deactivated accounts alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRole rejects roles outside admin/user.
	ErrInvalidRole = errors.New("role must be admin or user")
	// ErrUserNotFound signals a missing user.
	ErrUserNotFound = errors.New("user not found")
)

// UserService manages accounts, passwords and project assignments.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService { return &UserService{db: db} }

type UserInput struct {
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	Role        string `json:"role"`
	Password    string `json:"password"`
	TabCalendar bool   `json:"tab_calendar"`
	TabMaster   bool   `json:"tab_master"`
	TabPlan     bool   `json:"tab_plan"`
	TabControl  bool   `json:"tab_control"`
}

func validRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleUser
}

// Authenticate checks the password against the stored bcrypt hash. Inactive
// accounts fail the same way as bad passwords.
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ? AND active = ?", strings.TrimSpace(username), true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) Get(userID uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) List(includeInactive bool) ([]models.User, error) {
	q := s.db.Order("username")
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) Create(in UserInput) (models.User, error) {
	if !validRole(in.Role) {
		return models.User{}, ErrInvalidRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{
		Username:     strings.TrimSpace(in.Username),
		FullName:     strings.TrimSpace(in.FullName),
		Role:         in.Role,
		PasswordHash: string(hash),
		Active:       true,
		TabCalendar:  in.TabCalendar,
		TabMaster:    in.TabMaster,
		TabPlan:      in.TabPlan,
		TabControl:   in.TabControl,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Update changes everything except the password; see ResetPassword.
func (s *UserService) Update(userID uint, in UserInput) error {
	if !validRole(in.Role) {
		return ErrInvalidRole
	}
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]any{
			"username":     strings.TrimSpace(in.Username),
			"full_name":    strings.TrimSpace(in.FullName),
			"role":         in.Role,
			"tab_calendar": in.TabCalendar,
			"tab_master":   in.TabMaster,
			"tab_plan":     in.TabPlan,
			"tab_control":  in.TabControl,
		}).Error
}

func (s *UserService) SetActive(userID uint, active bool) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("active", active).Error
}

func (s *UserService) ResetPassword(userID uint, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("password_hash", string(hash)).Error
}

func (s *UserService) UpdateTabs(userID uint, calendar, master, plan, control bool) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]any{
			"tab_calendar": calendar,
			"tab_master":   master,
			"tab_plan":     plan,
			"tab_control":  control,
		}).Error
}

// Assign is idempotent: assigning twice leaves one row.
func (s *UserService) Assign(userID, projectID uint) error {
	a := models.ProjectAssignment{UserID: userID, ProjectID: projectID}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&a).Error
}

func (s *UserService) Unassign(userID, projectID uint) error {
	return s.db.Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.ProjectAssignment{}).Error
}

// AssignedUser is a user row as shown on a project's assignment list.
type AssignedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// UsersForProject lists active users assigned to a project.
func (s *UserService) UsersForProject(projectID uint) ([]AssignedUser, error) {
	var rows []AssignedUser
	err := s.db.Table("users u").
		Select("u.id, u.username, u.full_name, u.role").
		Joins("JOIN project_assignments pa ON pa.user_id = u.id").
		Where("pa.project_id = ? AND u.active = ?", projectID, true).
		Order("u.full_name").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AssignedProject is a project row as shown on a user's assignment list.
type AssignedProject struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	ClientID   uint    `json:"client_id"`
	ClientName string  `json:"client_name"`
	HourlyRate float64 `json:"hourly_rate"`
	Notes      string  `json:"notes"`
}

// ProjectsForUser lists the projects a user is assigned to. onlyOpen keeps
// only projects whose project-level schedule is aperta.
func (s *UserService) ProjectsForUser(userID uint, onlyOpen bool) ([]AssignedProject, error) {
	q := s.db.Table("projects p").
		Select("DISTINCT p.id, p.name, p.client_id, c.name AS client_name, p.hourly_rate, p.notes").
		Joins("JOIN clients c ON c.id = p.client_id").
		Joins("JOIN project_assignments pa ON pa.project_id = p.id").
		Joins("LEFT JOIN schedules s ON s.project_id = p.id AND s.activity_id IS NULL").
		Where("pa.user_id = ?", userID)
	if onlyOpen {
		q = q.Where("s.status = ?", models.ScheduleOpen)
	}
	var rows []AssignedProject
	if err := q.Order("c.name, p.name").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *UserService) IsAssigned(userID, projectID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.ProjectAssignment{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error
	return count > 0, err
}

// CanAccessActivity checks that the activity belongs to the project and the
// user is assigned to that project.
func (s *UserService) CanAccessActivity(userID, projectID, activityID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Activity{}).
		Where("id = ? AND project_id = ?", activityID, projectID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}
	return s.IsAssigned(userID, projectID)
}
