// Package chat creates and lists chats. Direct chats hold exactly two
// members and are unique per pair; group chats hold at least three members,
// carry a name and designate the creator as admin. Membership is immutable
// after creation.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lingochat/models"
)

var (
	ErrUserNotFound    = errors.New("one or more users not found")
	ErrDirectPair      = errors.New("personal chat must have exactly 2 participants")
	ErrDuplicateDirect = errors.New("chat already exists")
	ErrGroupTooSmall   = errors.New("group chat must have at least 3 participants")
	ErrGroupName       = errors.New("group chat must have a name")
)

// IsValidationError reports whether err belongs to the chat-creation
// validation family, for mapping to a 400 at the HTTP boundary.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrDirectPair) ||
		errors.Is(err, ErrDuplicateDirect) ||
		errors.Is(err, ErrGroupTooSmall) ||
		errors.Is(err, ErrGroupName)
}

type Store interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UsersByEmail(ctx context.Context, emails []string) ([]models.User, error)
	FindDirectChatBetween(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error)
	CreateChat(ctx context.Context, chat *models.Chat) error
	ChatsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates and persists a new chat. Participants are located by
// email; the creator is always included.
func (s *Service) Create(ctx context.Context, creatorID primitive.ObjectID, emails []string, name string, isGroup bool) (*models.Chat, error) {
	creator, err := s.store.UserByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("loading creator: %w", err)
	}

	unique := map[string]bool{creator.Email: true}
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			unique[email] = true
		}
	}
	all := make([]string, 0, len(unique))
	for email := range unique {
		all = append(all, email)
	}

	users, err := s.store.UsersByEmail(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("resolving participants: %w", err)
	}
	if len(users) != len(all) {
		return nil, ErrUserNotFound
	}

	memberIDs := make([]primitive.ObjectID, len(users))
	for i, u := range users {
		memberIDs[i] = u.ID
	}

	var newChat *models.Chat
	if isGroup {
		if len(memberIDs) < 3 {
			return nil, ErrGroupTooSmall
		}
		if strings.TrimSpace(name) == "" {
			return nil, ErrGroupName
		}
		newChat = &models.Chat{
			Name:        name,
			IsGroupChat: true,
			Users:       memberIDs,
			Admin:       creator.ID,
		}
	} else {
		if len(memberIDs) != 2 {
			return nil, ErrDirectPair
		}
		existing, err := s.store.FindDirectChatBetween(ctx, memberIDs[0], memberIDs[1])
		if err != nil {
			return nil, fmt.Errorf("checking for existing chat: %w", err)
		}
		if existing != nil {
			return nil, ErrDuplicateDirect
		}
		newChat = &models.Chat{Users: memberIDs}
	}

	if err := s.store.CreateChat(ctx, newChat); err != nil {
		return nil, fmt.Errorf("persisting chat: %w", err)
	}
	return newChat, nil
}

func (s *Service) List(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	return s.store.ChatsForUser(ctx, userID)
}
