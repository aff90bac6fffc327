package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"ireporter/internal/models"
	"ireporter/internal/observability"
	contextutils "ireporter/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

const userSelectFields = `id, username, email, password_hash, is_moderator, created_at, updated_at`

// UserService provides account management over the users relation.
type UserService struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, logger *observability.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsModerator, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID fetches one user.
func (s *UserService) GetUserByID(ctx context.Context, id int) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "get_user_by_id",
		observability.AttributeUserID(id))
	defer observability.FinishSpan(span, &err)

	row := s.db.QueryRowContext(ctx, "SELECT "+userSelectFields+" FROM users WHERE id = $1", id)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "user %d not found", id)
	}
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to load user %d: %w", id, err)
	}
	return user, nil
}

// GetUserByUsername fetches one user by username.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "get_user_by_username",
		attribute.String("user.username", username))
	defer observability.FinishSpan(span, &err)

	row := s.db.QueryRowContext(ctx, "SELECT "+userSelectFields+" FROM users WHERE username = $1", username)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "user %q not found", username)
	}
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to load user %q: %w", username, err)
	}
	return user, nil
}

// CreateUser registers an account with a bcrypt-hashed password.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string, isModerator bool) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "create_user",
		attribute.String("user.username", username),
		attribute.Bool("user.is_moderator", isModerator))
	defer observability.FinishSpan(span, &err)

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, contextutils.NewValidationError("username", "must not be empty")
	}
	if len(password) < 8 {
		return nil, contextutils.NewValidationError("password", "must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to hash password")
	}

	emailValue := sql.NullString{String: strings.TrimSpace(email), Valid: strings.TrimSpace(email) != ""}
	now := time.Now()

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash, is_moderator, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5) RETURNING `+userSelectFields,
		username, emailValue, string(hash), isModerator, now)
	user, err := scanUser(row)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, contextutils.NewValidationError("username", "already taken")
		}
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to create user: %w", err)
	}

	s.logger.Info(ctx, "User created", map[string]interface{}{
		"user_id":      user.ID,
		"username":     user.Username,
		"is_moderator": user.IsModerator,
	})
	return user, nil
}

// AuthenticateUser verifies a username/password pair. The same error is
// returned for an unknown user and a wrong password.
func (s *UserService) AuthenticateUser(ctx context.Context, username, password string) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "authenticate_user",
		attribute.String("user.username", username))
	defer observability.FinishSpan(span, &err)

	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		if contextutils.GetErrorCode(err) == contextutils.ErrorCodeRecordNotFound {
			return nil, contextutils.WrapError(contextutils.ErrUnauthorized, "invalid credentials")
		}
		return nil, err
	}

	if !user.PasswordHash.Valid {
		return nil, contextutils.WrapError(contextutils.ErrUnauthorized, "invalid credentials")
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(password)); err != nil {
		return nil, contextutils.WrapError(contextutils.ErrUnauthorized, "invalid credentials")
	}
	return user, nil
}

// UpdateUserPassword replaces a user's password with a new bcrypt hash.
func (s *UserService) UpdateUserPassword(ctx context.Context, userID int, newPassword string) (err error) {
	ctx, span := observability.TraceUserFunction(ctx, "update_user_password",
		observability.AttributeUserID(userID))
	defer observability.FinishSpan(span, &err)

	if len(newPassword) < 8 {
		return contextutils.NewValidationError("password", "must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return contextutils.WrapError(err, "failed to hash password")
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3",
		string(hash), time.Now(), userID)
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to update password: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to read update result: %w", err)
	}
	if affected == 0 {
		return contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "user %d not found", userID)
	}

	s.logger.Info(ctx, "User password updated", map[string]interface{}{"user_id": userID})
	return nil
}

// IsModerator reports whether the principal may perform moderation actions.
func (s *UserService) IsModerator(ctx context.Context, userID int) (result0 bool, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "is_moderator",
		observability.AttributeUserID(userID))
	defer observability.FinishSpan(span, &err)

	var isModerator bool
	err = s.db.QueryRowContext(ctx, "SELECT is_moderator FROM users WHERE id = $1", userID).Scan(&isModerator)
	if err == sql.ErrNoRows {
		return false, contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "user %d not found", userID)
	}
	if err != nil {
		return false, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to check moderator flag: %w", err)
	}
	return isModerator, nil
}

// ListUsers returns all users, newest first.
func (s *UserService) ListUsers(ctx context.Context) (result0 []models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "list_users")
	defer observability.FinishSpan(span, &err)

	rows, err := s.db.QueryContext(ctx, "SELECT "+userSelectFields+" FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to list users: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close user rows", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	users := []models.User{}
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to scan user: %w", scanErr)
		}
		users = append(users, *user)
	}
	if err = rows.Err(); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to iterate users: %w", err)
	}
	return users, nil
}
