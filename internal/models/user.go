package models

import (
	"crypto/md5"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/laurfratila/microblog/internal/snowflake"
)

// ErrInvalidCredentials is returned by Authenticate when the name or
// password does not match. Deliberately indistinguishable between the
// two cases.
var ErrInvalidCredentials = errors.New("invalid credentials")

// A User is a registered account. A User owns its Posts, Notifications
// and Tokens, which are removed with it.
type User struct {
	snowflake.ID      `gorm:"primarykey;autoIncrement:false"`
	UpdatedAt         time.Time
	Name              string `gorm:"size:64;uniqueIndex;not null"`
	Email             string `gorm:"size:120;uniqueIndex;not null"`
	EncryptedPassword []byte `gorm:"size:60;not null"`
	About             string `gorm:"size:140"`
	LastSeenAt        time.Time
	PostsCount        int32 `gorm:"default:0;not null"`
	FollowersCount    int32 `gorm:"default:0;not null"`
	FollowingCount    int32 `gorm:"default:0;not null"`
	LastPostAt        time.Time
	Posts             []Post         `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Notifications     []Notification `gorm:"constraint:OnDelete:CASCADE;"`
	Tokens            []Token        `gorm:"constraint:OnDelete:CASCADE;"`
}

// Avatar returns the Gravatar URL for the user's email at the given
// pixel size.
func (u *User) Avatar(size int) string {
	digest := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(u.Email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon&s=%d", digest, size)
}

// CheckPassword reports whether the supplied plaintext password matches
// the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(u.EncryptedPassword, []byte(password)) == nil
}

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create registers a new user with the given handle, email and
// plaintext password.
func (u *Users) Create(name, email, password string) (*User, error) {
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidOperation)
	}
	passwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &User{
		ID:                snowflake.Now(),
		Name:              name,
		Email:             email,
		EncryptedPassword: passwd,
		LastSeenAt:        time.Now().UTC(),
	}
	if err := u.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (u *Users) FindByID(id snowflake.ID) (*User, error) {
	var user User
	if err := u.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *Users) FindByName(name string) (*User, error) {
	var user User
	if err := u.db.Where("name = ?", name).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *Users) FindByEmail(email string) (*User, error) {
	var user User
	if err := u.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate returns the user with the given name if the password
// matches, ErrInvalidCredentials otherwise.
func (u *Users) Authenticate(name, password string) (*User, error) {
	user, err := u.FindByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// SetPassword replaces the user's password hash.
func (u *Users) SetPassword(user *User, password string) error {
	passwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return u.db.Model(user).Update("encrypted_password", passwd).Error
}

// Touch records activity on the account.
func (u *Users) Touch(user *User) error {
	return u.db.Model(user).UpdateColumn("last_seen_at", time.Now().UTC()).Error
}

// Delete removes the user, its posts, notifications, tokens, and
// follow edges in both directions.
func (u *Users) Delete(user *User) error {
	return u.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower_id = ? OR followed_id = ?", user.ID, user.ID).Delete(&Relationship{}).Error; err != nil {
			return err
		}
		return tx.Select("Posts", "Notifications", "Tokens").Delete(user).Error
	})
}

// ResetPasswordToken issues a signed token which PasswordsUpdate style
// flows can exchange for a password change within expiresIn.
func (u *Users) ResetPasswordToken(user *User, secret []byte, expiresIn time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"reset_password": user.ID.String(),
		"exp":            time.Now().Add(expiresIn).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyResetPasswordToken returns the user a reset token was issued
// for, or an error if the token is invalid or expired.
func (u *Users) VerifyResetPasswordToken(token string, secret []byte) (*User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	sub, ok := claims["reset_password"].(string)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	id, err := snowflake.Parse(sub)
	if err != nil {
		return nil, err
	}
	return u.FindByID(id)
}
