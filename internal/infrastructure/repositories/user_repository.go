package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/peekpark/peekpark/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for User (with GORM tags)
type DBUser struct {
	ID           string    `gorm:"primaryKey;size:64"`
	Name         string    `gorm:"size:255"`
	Phone        string    `gorm:"uniqueIndex;size:32;not null"`
	Email        string    `gorm:"size:255"`
	PhotoURL     string    `gorm:"size:1024"`
	DeviceID     string    `gorm:"index;size:255"`
	DeviceName   string    `gorm:"size:255"`
	DeviceType   string    `gorm:"size:64"`
	OSVersion    string    `gorm:"size:128"`
	ModelName    string    `gorm:"size:255"`
	Manufacturer string    `gorm:"size:255"`
	Brand        string    `gorm:"size:255"`
	AppVersion   string    `gorm:"size:64"`
	IsVerified   bool      `gorm:"index"`
	IsActive     bool      `gorm:"index"`
	CreatedAt    time.Time `gorm:"index"`
	LastLoginAt  time.Time
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// FindByPhone implements domain.UserRepository
func (r *UserRepositoryImpl) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// CreateIfAbsent implements domain.UserRepository. The unique phone index decides races:
// a losing writer gets the winner's document back with created=false.
func (r *UserRepositoryImpl) CreateIfAbsent(ctx context.Context, user *domain.User) (*domain.User, bool, error) {
	dbUser := r.domainToDB(user)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(dbUser)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		existing, err := r.FindByPhone(ctx, user.Phone)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				// conflict on the primary key with a different phone
				return nil, false, domain.ErrUserAlreadyExists
			}
			return nil, false, err
		}
		return existing, false, nil
	}
	return r.dbToDomain(dbUser), true, nil
}

// RecordLogin implements domain.UserRepository
func (r *UserRepositoryImpl) RecordLogin(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_login_at": at,
		"is_active":     true,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// domainToDB converts domain user to database user
func (r *UserRepositoryImpl) domainToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:           user.ID,
		Name:         user.Name,
		Phone:        user.Phone,
		Email:        user.Email,
		PhotoURL:     user.PhotoURL,
		DeviceID:     user.DeviceID,
		DeviceName:   user.Device.DeviceName,
		DeviceType:   user.Device.DeviceType,
		OSVersion:    user.Device.OSVersion,
		ModelName:    user.Device.ModelName,
		Manufacturer: user.Device.Manufacturer,
		Brand:        user.Device.Brand,
		AppVersion:   user.Device.AppVersion,
		IsVerified:   user.IsVerified,
		IsActive:     user.IsActive,
		CreatedAt:    user.CreatedAt,
		LastLoginAt:  user.LastLoginAt,
	}
}

// dbToDomain converts database user to domain user
func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:       dbUser.ID,
		Name:     dbUser.Name,
		Phone:    dbUser.Phone,
		Email:    dbUser.Email,
		PhotoURL: dbUser.PhotoURL,
		DeviceID: dbUser.DeviceID,
		Device: domain.DeviceDescriptor{
			DeviceName:   dbUser.DeviceName,
			DeviceType:   dbUser.DeviceType,
			OSVersion:    dbUser.OSVersion,
			ModelName:    dbUser.ModelName,
			Manufacturer: dbUser.Manufacturer,
			Brand:        dbUser.Brand,
			AppVersion:   dbUser.AppVersion,
		},
		IsVerified:  dbUser.IsVerified,
		IsActive:    dbUser.IsActive,
		CreatedAt:   dbUser.CreatedAt,
		LastLoginAt: dbUser.LastLoginAt,
	}
}
