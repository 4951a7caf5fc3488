package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/solarhub/solarhub-api/apperrors"
	"github.com/solarhub/solarhub-api/models"
	"github.com/solarhub/solarhub-api/utils"
)

// RegisterInput is a new account request
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	MobileNo  string
	Address   models.Address
}

// ProfilePatch holds the self-service profile fields
type ProfilePatch struct {
	FirstName      models.Optional[string] `json:"firstName"`
	LastName       models.Optional[string] `json:"lastName"`
	MobileNo       models.Optional[string] `json:"mobileNo"`
	ProfilePicture models.Optional[string] `json:"profilePicture"`
	Address        *models.AddressPatch    `json:"address"`
}

// AdminUserPatch is ProfilePatch plus the email, which only administrators may change
type AdminUserPatch struct {
	ProfilePatch
	Email models.Optional[string] `json:"email"`
}

// LoginResult is returned on a successful login or profile update
type LoginResult struct {
	User  *models.User
	Token string
}

// MailSender schedules an email without waiting for delivery
type MailSender interface {
	Dispatch(to, subject, body string)
}

// UserService owns accounts, email verification and saved configurations
type UserService struct {
	db     *gorm.DB
	hasher PasswordHasher
	tokens *TokenService
	otps   OTPStore
	mail   MailSender
	otpTTL time.Duration
	logger *zap.Logger
}

// NewUserService creates the identity store
func NewUserService(db *gorm.DB, hasher PasswordHasher, tokens *TokenService, otps OTPStore, mail MailSender, otpTTL time.Duration, logger *zap.Logger) *UserService {
	return &UserService{
		db:     db,
		hasher: hasher,
		tokens: tokens,
		otps:   otps,
		mail:   mail,
		otpTTL: otpTTL,
		logger: logger,
	}
}

// Register creates an unverified account and mails a verification code
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := models.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" || strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, apperrors.Validation("First name, last name, email and password are required")
	}

	exists, err := s.emailTaken(ctx, email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Validation("User already exists")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "hash password"))
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		MobileNo:     in.MobileNo,
		Address:      in.Address,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Validation("User already exists")
		}
		return nil, apperrors.Internal(errors.Wrap(err, "create user"))
	}

	if err := s.sendOTP(ctx, email); err != nil {
		s.logger.Warn("Failed to issue verification code at registration", zap.String("email", email), zap.Error(err))
	}
	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// sendOTP stores a fresh code and mails it
func (s *UserService) sendOTP(ctx context.Context, email string) error {
	code, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.otps.Save(ctx, email, code, s.otpTTL); err != nil {
		return err
	}
	s.mail.Dispatch(email, "OTP Verification", fmt.Sprintf("Your OTP is %s", code))
	return nil
}

// ConfirmOTP marks the account verified when the code is live
func (s *UserService) ConfirmOTP(ctx context.Context, email, code string) error {
	email = models.NormalizeEmail(email)
	if email == "" || code == "" {
		return apperrors.Validation("Email and OTP are required")
	}

	ok, err := s.otps.Verify(ctx, email, code)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !ok {
		return apperrors.Validation("Invalid or expired OTP")
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Update("is_verified", true)
	if res.Error != nil {
		return apperrors.Internal(errors.Wrap(res.Error, "verify user"))
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("User not found")
	}

	if err := s.otps.Delete(ctx, email); err != nil {
		s.logger.Warn("Failed to delete used verification code", zap.String("email", email), zap.Error(err))
	}
	return nil
}

// Login checks credentials and issues a token. Unverified accounts get a fresh code instead.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = models.NormalizeEmail(email)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Unauthenticated("Invalid email or password")
	}
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "load user"))
	}
	if !s.hasher.Check(password, user.PasswordHash) {
		return nil, apperrors.Unauthenticated("Invalid email or password")
	}

	if !user.IsVerified {
		if err := s.sendOTP(ctx, email); err != nil {
			return nil, apperrors.Internal(err)
		}
		return nil, apperrors.Forbidden("User not verified. OTP sent.")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "issue token"))
	}
	return &LoginResult{User: &user, Token: token}, nil
}

// GetProfile returns the account with its saved configurations
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("PreferredConfigurations", func(db *gorm.DB) *gorm.DB { return db.Order("saved_at ASC") }).
		First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "load user"))
	}
	return &user, nil
}

// UpdateProfile applies the patch and returns the account with a refreshed token
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*LoginResult, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := applyProfilePatch(user, patch); err != nil {
		return nil, err
	}
	if err := s.saveProfile(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "issue token"))
	}
	return &LoginResult{User: user, Token: token}, nil
}

func applyProfilePatch(user *models.User, patch ProfilePatch) error {
	for _, name := range []models.Optional[string]{patch.FirstName, patch.LastName} {
		if name.Set && strings.TrimSpace(name.Value) == "" {
			return apperrors.Validation("Name cannot be empty")
		}
	}
	patch.FirstName.Apply(&user.FirstName)
	patch.LastName.Apply(&user.LastName)
	patch.MobileNo.Apply(&user.MobileNo)
	if patch.MobileNo.Null {
		user.MobileNo = ""
	}
	patch.ProfilePicture.Apply(&user.ProfilePicture)
	if patch.ProfilePicture.Null {
		user.ProfilePicture = models.DefaultProfilePicture
	}
	if patch.Address != nil {
		patch.Address.ApplyTo(&user.Address)
	}
	return nil
}

func (s *UserService) saveProfile(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Model(user).Select(
		"first_name", "last_name", "email", "mobile_no", "profile_picture",
		"address_street", "address_city", "address_state", "address_zip_code", "address_country",
	).Updates(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Validation("Email is already in use")
	}
	if err != nil {
		return apperrors.Internal(errors.Wrap(err, "update user"))
	}
	return nil
}

// SaveConfiguration appends a named configuration and returns the full list
func (s *UserService) SaveConfiguration(ctx context.Context, userID uuid.UUID, name, description string) ([]models.SavedConfiguration, error) {
	name, description = strings.TrimSpace(name), strings.TrimSpace(description)
	if name == "" || description == "" {
		return nil, apperrors.Validation("Name and description are required")
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	config := models.SavedConfiguration{
		UserID:      user.ID,
		Name:        name,
		Description: description,
		SavedAt:     time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&config).Error; err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "save configuration"))
	}
	return append(user.PreferredConfigurations, config), nil
}

// ListCustomers returns every non-administrator account
func (s *UserService) ListCustomers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Where("is_admin = ?", false).Order("created_at DESC").Find(&users).Error
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "list users"))
	}
	return users, nil
}

// AdminUpdate applies an administrator's patch, which may change the email
func (s *UserService) AdminUpdate(ctx context.Context, userID uuid.UUID, patch AdminUserPatch) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := applyProfilePatch(user, patch.ProfilePatch); err != nil {
		return nil, err
	}
	if patch.Email.Set {
		email := models.NormalizeEmail(patch.Email.Value)
		if email == "" {
			return nil, apperrors.Validation("Email cannot be empty")
		}
		taken, err := s.emailTaken(ctx, email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.Validation("Email is already in use")
		}
		user.Email = email
	}
	if err := s.saveProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the account and its saved configurations
func (s *UserService) Delete(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.User{}, "id = ?", userID)
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete user")
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("User not found")
		}
		return errors.Wrap(tx.Where("user_id = ?", userID).Delete(&models.SavedConfiguration{}).Error, "delete configurations")
	})
	if err != nil {
		return apperrors.From(err)
	}
	s.logger.Info("User removed", zap.String("user_id", userID.String()))
	return nil
}

// FindByID loads an account for request authentication
func (s *UserService) FindByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "load user"))
	}
	return &user, nil
}

func (s *UserService) emailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ? AND id <> ?", email, except).Count(&count).Error
	if err != nil {
		return false, apperrors.Internal(errors.Wrap(err, "check email"))
	}
	return count > 0, nil
}
