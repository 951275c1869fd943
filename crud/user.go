package crud

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"blogGraph/auth"
	"blogGraph/database"
	"blogGraph/domain"
	"blogGraph/errs"
)

// UserService manages Users. It also contains the part of the authentication system
// that handles database interactions and token creation / hashing. It's basically
// the "backend" of the auth system, with http/auth.go dealing with requests and
// middleware being the "frontend". It implements the domain.UserService interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	hmac       HMAC
	pepper     string
	emailRegex *regexp.Regexp
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB, pepper, hmacKey string) *UserService {
	return &UserService{
		userValidator{
			hmac:       newHMAC(hmacKey),
			pepper:     pepper,
			emailRegex: regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,16}$`),
			userGorm: userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// Authenticate checks a submitted username and password for existence and correctness.
// On success it issues a new remember token, stores its hash and returns the plain token,
// which is the bearer token the client sends along with every following request.
// Issuing a token invalidates the previous one.
func (uv *userValidator) Authenticate(ctx context.Context, username, password string) (*domain.User, string, error) {
	// Look for a user database record containing the submitted username.
	found, err := uv.userGorm.ByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return nil, "", errs.Errorf(errs.EUNAUTHENTICATED, "Invalid username or password.")
		}
		return nil, "", err
	}

	// Append a predefined pepper to the submitted password, hash it, and compare the result to the
	// password hash stored in the user's database record. If they match, the submitted password is correct.
	err = bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password+uv.pepper))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return nil, "", errs.Errorf(errs.EUNAUTHENTICATED, "Invalid username or password.")
		}
		return nil, "", err
	}

	err = runUserValFns(found,
		uv.rememberRenew,
		uv.rememberMinBytes,
		uv.rememberHmac,
		uv.rememberHashRequired)
	if err != nil {
		return nil, "", err
	}
	if err := uv.userGorm.SetRememberHash(ctx, found.ID, found.RememberHash); err != nil {
		return nil, "", err
	}
	token := found.Remember
	found.Remember = ""
	return found, token, nil
}

// MakeRememberToken is helper to generate remember tokens of a predetermined byte size.
func (uv *userValidator) MakeRememberToken() (string, error) {
	return bytesToString(RememberTokenBytes)
}

// ByRemember runs validations / normalizations on a user's remember token. It then passes
// the HASHED remember token on to userGorm.ByRemember, which will look it up in the database.
// An unknown token means the request is not authenticated.
func (uv *userValidator) ByRemember(ctx context.Context, token string) (*domain.User, error) {
	user := domain.User{
		Remember: token,
	}
	if err := runUserValFns(&user, uv.rememberHmac, uv.rememberHashRequired); err != nil {
		return nil, errs.Errorf(errs.EUNAUTHENTICATED, "The token is invalid.")
	}
	found, err := uv.userGorm.ByRemember(ctx, user.RememberHash)
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return nil, errs.Errorf(errs.EUNAUTHENTICATED, "The token is invalid.")
		}
		return nil, err
	}
	return found, nil
}

// Create runs validations needed for creating new User database records.
// Every new user gets the user role, no matter what the client asked for.
func (uv *userValidator) Create(ctx context.Context, user *domain.User) error {
	err := runUserValFns(user,
		uv.usernameNormalize,
		uv.usernameRequired,
		uv.passwordRequired,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.emailNormalize,
		uv.emailFormat,
		uv.rolesDefault)
	if err != nil {
		return err
	}
	if err := uv.usernameIsAvail(ctx, user); err != nil {
		return err
	}
	return uv.userGorm.Create(ctx, user)
}

// Update runs validations needed for updating a User record in the database.
// Only the fields present in upd are applied and written, empty ones are ignored.
// A new password logs the user out everywhere: the remember hash is cleared with it.
func (uv *userValidator) Update(ctx context.Context, actor *domain.Actor, id string, upd domain.UserUpdate) (*domain.User, error) {
	if err := auth.Authorize(actor, id); err != nil {
		return nil, err
	}
	user, err := uv.userGorm.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if present(upd.Username) {
		user.Username = *upd.Username
	}
	if present(upd.Email) {
		user.Email = *upd.Email
	}
	if present(upd.Avatar) {
		user.Avatar = *upd.Avatar
	}
	if present(upd.Password) {
		user.Password = *upd.Password
	}
	err = runUserValFns(user,
		uv.usernameNormalize,
		uv.usernameRequired,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.emailNormalize,
		uv.emailFormat)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]interface{})
	if present(upd.Username) {
		if err := uv.usernameIsAvail(ctx, user); err != nil {
			return nil, err
		}
		changes["username"] = user.Username
	}
	if present(upd.Email) {
		changes["email"] = user.Email
	}
	if present(upd.Avatar) {
		changes["avatar"] = user.Avatar
	}
	if present(upd.Password) {
		changes["password_hash"] = user.PasswordHash
		changes["remember_hash"] = ""
	}
	if len(changes) == 0 {
		return user, nil
	}
	if err := uv.userGorm.Update(ctx, id, changes); err != nil {
		return nil, err
	}
	return uv.userGorm.ByID(ctx, id)
}

// Delete removes the user after checking that the actor may act as that user.
// Deleting a user that does not exist is not an error.
func (uv *userValidator) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	if err := auth.Authorize(actor, id); err != nil {
		return err
	}
	return uv.userGorm.Delete(ctx, id)
}

// Promote grants the admin role to the user with the given username.
func (uv *userValidator) Promote(ctx context.Context, username string) (*domain.User, error) {
	user, err := uv.userGorm.ByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user.HasRole(domain.RoleAdmin) {
		return user, nil
	}
	user.Roles = strings.Join(append(user.RoleSet(), domain.RoleAdmin), ",")
	if err := uv.userGorm.Update(ctx, user.ID, map[string]interface{}{"roles": user.Roles}); err != nil {
		return nil, err
	}
	return user, nil
}

// present reports whether an optional update field has been provided.
func present(s *string) bool {
	return s != nil && *s != ""
}

// runUserValFns runs any number of functions of type userValFn on the passed in User object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runUserValFns(user *domain.User, fns ...userValFn) error {
	for _, fn := range fns {
		if err := fn(user); err != nil {
			return err
		}
	}
	return nil
}

// A userValFn is any function that takes in a pointer to a domain.User object and returns an error.
type userValFn func(user *domain.User) error

// emailFormat makes sure that a provided email address matches a predefined regex pattern.
func (uv *userValidator) emailFormat(user *domain.User) error {
	if user.Email == "" {
		return nil
	}
	if !uv.emailRegex.MatchString(user.Email) {
		return errs.Errorf(errs.EINVALID, "The email address is invalid.")
	}
	return nil
}

// emailNormalize converts the email to all lowercase and trims its whitespaces.
func (uv *userValidator) emailNormalize(user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	user.Email = strings.TrimSpace(user.Email)
	return nil
}

// usernameNormalize trims the username's whitespaces.
func (uv *userValidator) usernameNormalize(user *domain.User) error {
	user.Username = strings.TrimSpace(user.Username)
	return nil
}

// usernameRequired makes sure that the username is not the empty string.
func (uv *userValidator) usernameRequired(user *domain.User) error {
	if user.Username == "" {
		return errs.Errorf(errs.EINVALID, "A username is required.")
	}
	return nil
}

// usernameIsAvail makes sure that a provided username is not yet taken.
// The unique index on users.username has the last word, this just answers early.
func (uv *userValidator) usernameIsAvail(ctx context.Context, user *domain.User) error {
	existing, err := uv.userGorm.ByUsername(ctx, user.Username)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		// Username is not taken.
		return nil
	}
	if err != nil {
		return err
	}
	if user.ID != existing.ID {
		// Username found, and the passed in user is not the owner of that username.
		return errs.Errorf(errs.ECONFLICT, "This username is already taken.")
	}
	return nil
}

// passwordBcrypt hashes a user's password with a predefined pepper.
// It bcrypts it, if the Password field is not the empty string.
// It then clears the password on the user object in memory for security reasons.
func (uv *userValidator) passwordBcrypt(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	pwBytes := []byte(user.Password + uv.pepper)
	hashedBytes, err := bcrypt.GenerateFromPassword(pwBytes, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedBytes)
	user.Password = ""
	return nil
}

// passwordHashRequired makes sure that the user's password hash is not the empty string.
func (uv *userValidator) passwordHashRequired(user *domain.User) error {
	if user.PasswordHash == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// passwordMinLength makes sure that the user's password is at least 8 characters long.
func (uv *userValidator) passwordMinLength(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	if utf8.RuneCountInString(user.Password) < 8 {
		return errs.Errorf(errs.EINVALID, "The password must have at least 8 characters.")
	}
	return nil
}

// passwordRequired makes sure that the user's password is not the empty string.
func (uv *userValidator) passwordRequired(user *domain.User) error {
	if user.Password == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// rolesDefault resets the roles of a new user to the plain user role.
func (uv *userValidator) rolesDefault(user *domain.User) error {
	user.Roles = domain.RoleUser
	return nil
}

// rememberHashRequired makes sure the user's remember token hash is not the empty string.
func (uv *userValidator) rememberHashRequired(user *domain.User) error {
	if user.RememberHash == "" {
		return errs.RememberHashEmpty
	}
	return nil
}

// rememberHmac creates the user's remember token hash, if a remember token has been provided.
func (uv *userValidator) rememberHmac(user *domain.User) error {
	if user.Remember == "" {
		return nil
	}
	user.RememberHash = uv.hmac.hash(user.Remember)
	return nil
}

// rememberMinBytes makes sure that the user's remember token is not too short.
func (uv *userValidator) rememberMinBytes(user *domain.User) error {
	if user.Remember == "" {
		return nil
	}
	n, err := nBytes(user.Remember)
	if err != nil {
		return err
	}
	if n < 32 {
		return errs.RememberTooShort
	}
	return nil
}

// rememberRenew replaces the user's remember token with a fresh one.
func (uv *userValidator) rememberRenew(user *domain.User) error {
	token, err := uv.MakeRememberToken()
	if err != nil {
		return err
	}
	user.Remember = token
	return nil
}

// ByID retrieves a User database record by ID.
func (ug *userGorm) ByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, database.Unavailable(err)
	}
	return &user, nil
}

// ByUsername retrieves a User database record by Username.
func (ug *userGorm) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	db := ug.db.WithContext(ctx).Where("username = ?", username)
	if err := first(db, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ByRemember retrieves a User database record by its hashed remember token.
// The checkUser middleware calls this on every request, trying to identify a user
// by matching a request's bearer token to a hashed remember token in the database.
func (ug *userGorm) ByRemember(ctx context.Context, rememberHash string) (*domain.User, error) {
	var user domain.User
	db := ug.db.WithContext(ctx).Where("remember_hash = ?", rememberHash)
	if err := first(db, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// All retrieves every user, ordered by username.
func (ug *userGorm) All(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0)
	err := ug.db.WithContext(ctx).Order("username asc").Find(&users).Error
	if err != nil {
		return nil, database.Unavailable(err)
	}
	return users, nil
}

// Create stores the data from the User object in a new database record.
func (ug *userGorm) Create(ctx context.Context, user *domain.User) error {
	err := ug.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errs.Errorf(errs.ECONFLICT, "This username is already taken.")
		}
		return database.Unavailable(err)
	}
	return nil
}

// Update writes the given columns of the user record, leaving all others alone.
// If the record vanished in the meantime, nothing is written and ENOTFOUND is returned.
func (ug *userGorm) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	res := ug.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(changes)
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			return errs.Errorf(errs.ECONFLICT, "This username is already taken.")
		}
		return database.Unavailable(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
	}
	return nil
}

// SetRememberHash stores a new remember token hash for the user.
func (ug *userGorm) SetRememberHash(ctx context.Context, id, rememberHash string) error {
	res := ug.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("remember_hash", rememberHash)
	if res.Error != nil {
		return database.Unavailable(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
	}
	return nil
}

// Delete permanently deletes the user. Their posts, comments, follows and likes
// go with them, as far as the database's foreign keys are concerned.
func (ug *userGorm) Delete(ctx context.Context, id string) error {
	err := ug.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id).Error
	if err != nil {
		return database.Unavailable(err)
	}
	return nil
}

// first is a helper for getting the first database record that matches a given query.
func first(db *gorm.DB, dst interface{}) error {
	err := db.First(dst).Error
	if err != nil {
		if database.IsNotFound(err) {
			return errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return database.Unavailable(err)
	}
	return nil
}

// HMAC is a wrapper around the crypto/hmac package making it easier to use.
// It only keeps the key, every hash gets its own hash.Hash so that concurrent
// requests don't share state.
type HMAC struct {
	key []byte
}

// newHMAC creates and returns a new HMAC object.
func newHMAC(key string) HMAC {
	return HMAC{
		key: []byte(key),
	}
}

// hash hashes an input string using HMAC with the secret key
// provided when the HMAC object was created in NewUserService.
func (h HMAC) hash(input string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(input))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

const RememberTokenBytes = 32

// bytes generates n random bytes or returns an error. It uses the
// crypto/rand package, so it can be used for things like remember tokens.
func bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// nBytes returns the number of bytes used in a base64 URL encoded string.
func nBytes(base64String string) (int, error) {
	b, err := base64.URLEncoding.DecodeString(base64String)
	if err != nil {
		return -1, err
	}
	return len(b), nil
}

// bytesToString generates a byte slice of size nBytes and then returns a
// string that is the base64 URL encoded version of that byte slice.
func bytesToString(nBytes int) (string, error) {
	b, err := bytes(nBytes)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
