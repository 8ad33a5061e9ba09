package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/campus-ticketing/internal/model"
	"github.com/iliyamo/campus-ticketing/internal/repository"
	"github.com/iliyamo/campus-ticketing/internal/utils"
)

type ClubRegistration struct {
	ClubName string
	Email    string
	Password string
}

type StudentRegistration struct {
	Name      string
	RbtNumber string
	Email     string
	Password  string
}

// ClubSession is returned by club register and login.
type ClubSession struct {
	ClubID   string     `json:"clubId"`
	ClubName string     `json:"clubName"`
	Email    string     `json:"email"`
	Token    string     `json:"token"`
	Role     model.Role `json:"role"`
}

// StudentSession is returned by student register and login.
type StudentSession struct {
	StudentID string     `json:"studentId"`
	Name      string     `json:"name"`
	RbtNumber string     `json:"rbtNumber"`
	Email     string     `json:"email"`
	Token     string     `json:"token"`
	Role      model.Role `json:"role"`
}

// Profile describes the caller of GET /me.
type Profile struct {
	ID        string     `json:"id"`
	Role      model.Role `json:"role"`
	Email     string     `json:"email"`
	ClubName  string     `json:"clubName,omitempty"`
	Name      string     `json:"name,omitempty"`
	RbtNumber string     `json:"rbtNumber,omitempty"`
}

// AccountService registers and authenticates clubs and students.
type AccountService struct {
	clubs      ClubStore
	students   StudentStore
	tokens     TokenIssuer
	bcryptCost int
	log        *zap.Logger
}

func NewAccountService(clubs ClubStore, students StudentStore, tokens TokenIssuer, bcryptCost int,
	log *zap.Logger) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{clubs: clubs, students: students, tokens: tokens, bcryptCost: bcryptCost, log: log}
}

func (s *AccountService) RegisterClub(ctx context.Context, in ClubRegistration) (*ClubSession, error) {
	email := normalizeEmail(in.Email)
	taken, err := s.clubs.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check club email: %w", err)
	}
	if taken {
		s.log.Info("club registration rejected: email taken", zap.String("email", email))
		return nil, ErrEmailTaken
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	club := &model.Club{ID: uuid.NewString(), ClubName: strings.TrimSpace(in.ClubName), Email: email, PasswordHash: hash}
	err = s.clubs.Create(ctx, club)
	if errors.Is(err, repository.ErrEmailExists) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create club: %w", err)
	}
	s.log.Info("club registered", zap.String("club_id", club.ID))
	return s.clubSession(club)
}

func (s *AccountService) LoginClub(ctx context.Context, email, password string) (*ClubSession, error) {
	club, err := s.clubs.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load club: %w", err)
	}
	if !utils.VerifyPassword(club.PasswordHash, password) {
		s.log.Info("club login failed", zap.String("club_id", club.ID))
		return nil, ErrInvalidCredentials
	}
	return s.clubSession(club)
}

func (s *AccountService) RegisterStudent(ctx context.Context, in StudentRegistration) (*StudentSession, error) {
	email := normalizeEmail(in.Email)
	rbt := strings.TrimSpace(in.RbtNumber)

	taken, err := s.students.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check student email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}
	taken, err = s.students.ExistsByRbtNumber(ctx, rbt)
	if err != nil {
		return nil, fmt.Errorf("check rbt number: %w", err)
	}
	if taken {
		return nil, ErrRbtTaken
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	st := &model.Student{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		RbtNumber:    rbt,
		Email:        email,
		PasswordHash: hash,
	}
	switch err := s.students.Create(ctx, st); {
	case errors.Is(err, repository.ErrEmailExists):
		return nil, ErrEmailTaken
	case errors.Is(err, repository.ErrRbtNumberExists):
		return nil, ErrRbtTaken
	case err != nil:
		return nil, fmt.Errorf("create student: %w", err)
	}
	s.log.Info("student registered", zap.String("student_id", st.ID))
	return s.studentSession(st)
}

func (s *AccountService) LoginStudent(ctx context.Context, email, password string) (*StudentSession, error) {
	st, err := s.students.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if !utils.VerifyPassword(st.PasswordHash, password) {
		s.log.Info("student login failed", zap.String("student_id", st.ID))
		return nil, ErrInvalidCredentials
	}
	return s.studentSession(st)
}

// PrincipalExists reports whether p's subject is present in the store
// for its role.
func (s *AccountService) PrincipalExists(ctx context.Context, p model.Principal) (bool, error) {
	var err error
	switch p.Role {
	case model.RoleClub:
		_, err = s.clubs.GetByID(ctx, p.ID)
	case model.RoleStudent:
		_, err = s.students.GetByID(ctx, p.ID)
	default:
		return false, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Profile loads the account behind p.
func (s *AccountService) Profile(ctx context.Context, p model.Principal) (*Profile, error) {
	switch p.Role {
	case model.RoleClub:
		club, err := s.clubs.GetByID(ctx, p.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClubNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("load club: %w", err)
		}
		return &Profile{ID: club.ID, Role: model.RoleClub, Email: club.Email, ClubName: club.ClubName}, nil
	case model.RoleStudent:
		st, err := s.students.GetByID(ctx, p.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("load student: %w", err)
		}
		return &Profile{ID: st.ID, Role: model.RoleStudent, Email: st.Email, Name: st.Name, RbtNumber: st.RbtNumber}, nil
	}
	return nil, fmt.Errorf("unknown role %q", p.Role)
}

func (s *AccountService) clubSession(c *model.Club) (*ClubSession, error) {
	tok, err := s.tokens.Issue(model.Principal{ID: c.ID, Role: model.RoleClub},
		utils.DisplayClaims{ClubName: c.ClubName, Email: c.Email})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ClubSession{ClubID: c.ID, ClubName: c.ClubName, Email: c.Email, Token: tok.Token, Role: model.RoleClub}, nil
}

func (s *AccountService) studentSession(st *model.Student) (*StudentSession, error) {
	tok, err := s.tokens.Issue(model.Principal{ID: st.ID, Role: model.RoleStudent},
		utils.DisplayClaims{Name: st.Name, RbtNumber: st.RbtNumber, Email: st.Email})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &StudentSession{
		StudentID: st.ID,
		Name:      st.Name,
		RbtNumber: st.RbtNumber,
		Email:     st.Email,
		Token:     tok.Token,
		Role:      model.RoleStudent,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
