package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/upb/student-records/models"
	"github.com/upb/student-records/repositories"
	"github.com/upb/student-records/services"
	"go.uber.org/zap"
)

// PasswordHasher hashes plain-text seed passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// UserSeed is a user to insert with a plain-text password
type UserSeed struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      models.Role
}

// StudentSeed is a student record to insert, linked to its major by name
type StudentSeed struct {
	FirstName string
	LastName  string
	Email     string
	Major     string
	BirthDate string
	IsHonors  bool
}

// Data is the full set of seed rows
type Data struct {
	Majors   []string
	Users    []UserSeed
	Students []StudentSeed
}

// DefaultData returns the stock majors, the four demo accounts and the
// student records owned by the two student accounts.
func DefaultData() Data {
	return Data{
		Majors: []string{
			"Accounting",
			"Finance",
			"Information Systems",
			"International Business",
			"Management",
			"Operations Management & Business Analytics",
			"Supply Chain Management",
		},
		Users: []UserSeed{
			{Username: "student", Email: "student@umd.edu", FirstName: "Imma", LastName: "Student", Password: "studentpw", Role: models.RoleStudent},
			{Username: "zkpaidas", Email: "zkpaidas@umd.edu", FirstName: "Zoe", LastName: "Paidas", Password: "studentpw", Role: models.RoleStudent},
			{Username: "manager", Email: "manager@umd.edu", FirstName: "Joe", LastName: "King", Password: "managerpw", Role: models.RoleManager},
			{Username: "admin", Email: "admin@umd.edu", FirstName: "Crystal", LastName: "Ball", Password: "adminpw", Role: models.RoleAdmin},
		},
		Students: []StudentSeed{
			{FirstName: "Imma", LastName: "Student", Email: "student@umd.edu", Major: "Information Systems", BirthDate: "2003-05-14"},
			{FirstName: "Zoe", LastName: "Paidas", Email: "zkpaidas@umd.edu", Major: "Finance", BirthDate: "2002-11-02", IsHonors: true},
		},
	}
}

// Service rebuilds the schema and loads seed data
type Service struct {
	schema repositories.SchemaManager
	txMgr  repositories.TransactionManager
	repos  *repositories.Repositories
	hasher PasswordHasher
	logger *zap.Logger
}

// NewService creates a new seed service
func NewService(schema repositories.SchemaManager, txMgr repositories.TransactionManager, repos *repositories.Repositories, hasher PasswordHasher, logger *zap.Logger) *Service {
	return &Service{
		schema: schema,
		txMgr:  txMgr,
		repos:  repos,
		hasher: hasher,
		logger: logger,
	}
}

// Run drops and recreates every table, then inserts data, all in one transaction
func (s *Service) Run(ctx context.Context, data Data) error {
	return services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.schema.DropSchema(ctx); err != nil {
			return err
		}
		if err := s.schema.InitSchema(ctx); err != nil {
			return err
		}

		majorIDs := make(map[string]int64, len(data.Majors))
		for _, name := range data.Majors {
			major := models.NewMajor(name)
			if err := s.repos.Majors.Create(ctx, major); err != nil {
				return fmt.Errorf("seed major %q: %w", name, err)
			}
			majorIDs[name] = major.ID
			s.logger.Info("inserted into major", zap.String("major", name))
		}

		for _, u := range data.Users {
			hash, err := s.hasher.Hash(u.Password)
			if err != nil {
				return fmt.Errorf("seed user %q: %w", u.Username, err)
			}
			user := models.NewUser(u.Username, u.Email, u.FirstName, u.LastName, hash, u.Role)
			if err := s.repos.Users.Create(ctx, user); err != nil {
				return fmt.Errorf("seed user %q: %w", u.Username, err)
			}
			s.logger.Info("inserted into user", zap.String("username", u.Username), zap.String("role", u.Role.String()))
		}

		for _, st := range data.Students {
			birthDate, err := time.Parse(models.BirthDateLayout, st.BirthDate)
			if err != nil {
				return fmt.Errorf("seed student %q: %w", st.Email, err)
			}
			var majorID *int64
			if id, ok := majorIDs[st.Major]; ok {
				majorID = &id
			}
			student := models.NewStudent(st.FirstName, st.LastName, st.Email, majorID, birthDate, st.IsHonors)
			if err := s.repos.Students.Create(ctx, student); err != nil {
				return fmt.Errorf("seed student %q: %w", st.Email, err)
			}
			s.logger.Info("inserted into student", zap.String("name", student.FullName()))
		}

		return nil
	})
}
